package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/cwd-comments/cwd-backend/pkg/util"
)

const (
	// VisitPagesLimit 페이지별 방문 목록 최대 개수
	VisitPagesLimit = 20

	overviewDays = 30
	commentDays  = 7

	dateLayout = "2006-01-02"
)

// 페이지 정렬
const (
	VisitOrderPV     = "pv"
	VisitOrderLatest = "latest"
)

var ErrPostSlugMissing = errors.New("postSlug is required")

type AnalyticsService interface {
	TrackVisit(req model.TrackVisitRequest) error
	VisitOverview(domain string) (*model.VisitOverview, error)
	VisitPages(domain, order string) ([]model.VisitPageItem, error)
	CommentStats(domain string) (*model.CommentStats, error)
	Domains() ([]string, error)
	ExportStats() (*model.StatsBundle, error)
	ImportStats(bundle model.StatsBundle) error
}

type analyticsService struct {
	statsRepo   repository.StatsRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	now         func() time.Time
}

func NewAnalyticsService(
	statsRepo repository.StatsRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
) AnalyticsService {
	return &analyticsService{
		statsRepo:   statsRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		now:         time.Now,
	}
}

// TrackVisit pv+1, 오늘(UTC) 도메인별 방문 +1
func (s *analyticsService) TrackVisit(req model.TrackVisitRequest) error {
	slug := strings.TrimSpace(req.PostSlug)
	if slug == "" {
		return ErrPostSlugMissing
	}

	now := s.now().UTC()
	postURL := optionalTrimmed(req.PostURL)
	return s.statsRepo.RecordVisit(repository.VisitRecord{
		PostSlug:  slug,
		PostTitle: optionalTrimmed(req.PostTitle),
		PostURL:   postURL,
		Date:      now.Format(dateLayout),
		Domain:    visitDomain(slug, postURL),
		At:        now,
	})
}

// visitDomain post_url 호스트 우선, 없으면 post_slug
func visitDomain(slug string, postURL *string) string {
	if postURL != nil {
		if d := util.ExtractDomain(*postURL); d != "" {
			return d
		}
	}
	return util.ExtractDomain(slug)
}

// VisitOverview 전체 PV, 페이지 수, 최근 30일 일별 합계
func (s *analyticsService) VisitOverview(domain string) (*model.VisitOverview, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))

	stats, err := s.filteredPageStats(domain)
	if err != nil {
		return nil, err
	}

	overview := &model.VisitOverview{TotalPages: int64(len(stats))}
	for _, stat := range stats {
		overview.TotalPV += stat.PV
	}

	today := s.now().UTC()
	days := lastDays(today, overviewDays)
	rows, err := s.statsRepo.ListDailySince(days[0], domain)
	if err != nil {
		return nil, fmt.Errorf("visit overview: %w", err)
	}

	totals := make(map[string]int64, len(rows))
	for _, row := range rows {
		totals[row.Date] += row.Count
	}
	// 일별 기록이 없던 시기의 데이터는 오늘로 합산
	if len(rows) == 0 && overview.TotalPV > 0 {
		totals[days[len(days)-1]] = overview.TotalPV
	}

	overview.Last30Days = make([]model.DailyCount, 0, len(days))
	for i, day := range days {
		count := totals[day]
		overview.Last30Days = append(overview.Last30Days, model.DailyCount{Date: day, Total: count})
		overview.MonthPV += count
		if i >= len(days)-7 {
			overview.WeekPV += count
		}
		if i == len(days)-1 {
			overview.TodayPV = count
		}
	}
	return overview, nil
}

// VisitPages 상위 20개 페이지 (pv 또는 최근 방문순)
func (s *analyticsService) VisitPages(domain, order string) ([]model.VisitPageItem, error) {
	stats, err := s.filteredPageStats(strings.ToLower(strings.TrimSpace(domain)))
	if err != nil {
		return nil, err
	}

	if order == VisitOrderLatest {
		sort.SliceStable(stats, func(i, j int) bool {
			return lastVisit(stats[i]) > lastVisit(stats[j])
		})
	}
	if len(stats) > VisitPagesLimit {
		stats = stats[:VisitPagesLimit]
	}

	items := make([]model.VisitPageItem, 0, len(stats))
	for _, stat := range stats {
		items = append(items, model.VisitPageItem{
			PostSlug:    stat.PostSlug,
			PostTitle:   stat.PostTitle,
			PostURL:     stat.PostURL,
			PV:          stat.PV,
			LastVisitAt: stat.LastVisitAt,
		})
	}
	return items, nil
}

func (s *analyticsService) filteredPageStats(domain string) ([]model.PageStat, error) {
	stats, err := s.statsRepo.ListPageStats()
	if err != nil {
		return nil, fmt.Errorf("list page stats: %w", err)
	}
	if domain == "" {
		return stats, nil
	}

	filtered := make([]model.PageStat, 0, len(stats))
	for _, stat := range stats {
		if visitDomain(stat.PostSlug, stat.PostURL) == domain {
			filtered = append(filtered, stat)
		}
	}
	return filtered, nil
}

func lastVisit(stat model.PageStat) int64 {
	if stat.LastVisitAt == nil {
		return 0
	}
	return *stat.LastVisitAt
}

// CommentStats 상태별/도메인별 댓글 수, 최근 7일 작성 수
func (s *analyticsService) CommentStats(domain string) (*model.CommentStats, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))

	counts, err := s.commentRepo.CountBySlugAndStatus()
	if err != nil {
		return nil, fmt.Errorf("comment stats: %w", err)
	}

	stats := &model.CommentStats{Domains: []model.DomainSummary{}}
	byDomain := map[string]*model.DomainSummary{}
	for _, row := range counts {
		d := util.ExtractDomain(row.PostSlug)
		if d == "" {
			d = "unknown"
		}

		entry, ok := byDomain[d]
		if !ok {
			entry = &model.DomainSummary{Domain: d}
			byDomain[d] = entry
		}
		addStatusCount(&entry.StatusSummary, row.Status, row.Count)

		if domain == "" || d == domain {
			addStatusCount(&stats.Summary, row.Status, row.Count)
		}
	}

	for _, entry := range byDomain {
		stats.Domains = append(stats.Domains, *entry)
	}
	sort.Slice(stats.Domains, func(i, j int) bool {
		if stats.Domains[i].Total != stats.Domains[j].Total {
			return stats.Domains[i].Total > stats.Domains[j].Total
		}
		return stats.Domains[i].Domain < stats.Domains[j].Domain
	})

	today := s.now().UTC()
	days := lastDays(today, commentDays)
	start, _ := time.Parse(dateLayout, days[0])
	recent, err := s.commentRepo.CreatedSince(start.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("comment stats: %w", err)
	}

	totals := map[string]int64{}
	for _, c := range recent {
		if domain != "" && util.ExtractDomain(c.PostSlug) != domain {
			continue
		}
		totals[time.UnixMilli(c.Created).UTC().Format(dateLayout)]++
	}
	stats.Last7Days = make([]model.DailyCount, 0, len(days))
	for _, day := range days {
		stats.Last7Days = append(stats.Last7Days, model.DailyCount{Date: day, Total: totals[day]})
	}
	return stats, nil
}

func addStatusCount(summary *model.StatusSummary, status string, count int64) {
	summary.Total += count
	switch status {
	case model.CommentStatusApproved:
		summary.Approved += count
	case model.CommentStatusPending:
		summary.Pending += count
	case model.CommentStatusRejected:
		summary.Rejected += count
	}
}

// Domains 댓글이 달린 도메인 목록 (정렬)
func (s *analyticsService) Domains() ([]string, error) {
	slugs, err := s.commentRepo.DistinctSlugs()
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}

	seen := map[string]bool{}
	domains := []string{}
	for _, slug := range slugs {
		d := util.ExtractDomain(slug)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains, nil
}

func (s *analyticsService) ExportStats() (*model.StatsBundle, error) {
	pageStats, err := s.statsRepo.ListPageStats()
	if err != nil {
		return nil, fmt.Errorf("export stats: %w", err)
	}
	daily, err := s.statsRepo.ListDaily()
	if err != nil {
		return nil, fmt.Errorf("export stats: %w", err)
	}
	likes, err := s.likeRepo.ListAllPageLikes()
	if err != nil {
		return nil, fmt.Errorf("export stats: %w", err)
	}

	return &model.StatsBundle{
		PageStats:      pageStats,
		PageVisitDaily: daily,
		Likes:          likes,
	}, nil
}

// ImportStats 각 테이블을 유니크 키 기준으로 upsert
func (s *analyticsService) ImportStats(bundle model.StatsBundle) error {
	if err := s.statsRepo.ImportPageStats(bundle.PageStats); err != nil {
		return fmt.Errorf("import page stats: %w", err)
	}
	if err := s.statsRepo.ImportDaily(bundle.PageVisitDaily); err != nil {
		return fmt.Errorf("import daily visits: %w", err)
	}
	if err := s.likeRepo.ImportPageLikes(bundle.Likes); err != nil {
		return fmt.Errorf("import likes: %w", err)
	}

	logger.Info("Stats imported", map[string]interface{}{
		"page_stats": len(bundle.PageStats),
		"daily":      len(bundle.PageVisitDaily),
		"likes":      len(bundle.Likes),
	})
	return nil
}

// lastDays today 를 포함한 최근 n일 (오래된 날짜부터)
func lastDays(today time.Time, n int) []string {
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, today.AddDate(0, 0, -i).Format(dateLayout))
	}
	return days
}
