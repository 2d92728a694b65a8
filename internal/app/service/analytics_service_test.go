package service

import (
	"testing"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAnalyticsTest(t *testing.T) (*testRepos, *analyticsService, *fakeClock) {
	repos := setupRepos(t)
	clock := newFakeClock()
	svc := NewAnalyticsService(repos.stats, repos.comments, repos.likes).(*analyticsService)
	svc.now = clock.Now
	return repos, svc, clock
}

func TestAnalyticsService_TrackVisit(t *testing.T) {
	repos, svc, clock := setupAnalyticsTest(t)

	assert.ErrorIs(t, svc.TrackVisit(model.TrackVisitRequest{}), ErrPostSlugMissing)

	require.NoError(t, svc.TrackVisit(model.TrackVisitRequest{
		PostSlug:  "/hello",
		PostTitle: "Hello",
		PostURL:   "https://Blog.Example.com/hello",
	}))
	require.NoError(t, svc.TrackVisit(model.TrackVisitRequest{PostSlug: "/hello"}))

	stat, err := repos.stats.FindPageStat("/hello")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stat.PV)
	require.NotNil(t, stat.LastVisitAt)
	assert.Equal(t, clock.Now().UnixMilli(), *stat.LastVisitAt)

	daily, err := repos.stats.ListDaily()
	require.NoError(t, err)
	require.Len(t, daily, 2)
	domains := map[string]int64{}
	for _, d := range daily {
		assert.Equal(t, "2026-03-01", d.Date)
		domains[d.Domain] = d.Count
	}
	assert.Equal(t, int64(1), domains["blog.example.com"])
	assert.Equal(t, int64(1), domains[""])
}

func TestAnalyticsService_VisitOverview(t *testing.T) {
	_, svc, clock := setupAnalyticsTest(t)

	visit := func(slug, url string) {
		require.NoError(t, svc.TrackVisit(model.TrackVisitRequest{PostSlug: slug, PostURL: url}))
	}

	clock.Advance(-10 * 24 * time.Hour)
	visit("/a", "https://a.com/a")
	clock.Advance(8 * 24 * time.Hour)
	visit("/a", "https://a.com/a")
	clock.Advance(2 * 24 * time.Hour)
	visit("/a", "https://a.com/a")
	visit("/b", "https://b.com/b")

	overview, err := svc.VisitOverview("")
	require.NoError(t, err)
	assert.Equal(t, int64(4), overview.TotalPV)
	assert.Equal(t, int64(2), overview.TotalPages)
	assert.Equal(t, int64(2), overview.TodayPV)
	assert.Equal(t, int64(3), overview.WeekPV)
	assert.Equal(t, int64(4), overview.MonthPV)
	require.Len(t, overview.Last30Days, 30)
	assert.Equal(t, "2026-03-01", overview.Last30Days[29].Date)

	filtered, err := svc.VisitOverview("a.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), filtered.TotalPV)
	assert.Equal(t, int64(1), filtered.TotalPages)
	assert.Equal(t, int64(1), filtered.TodayPV)
}

func TestAnalyticsService_VisitPages(t *testing.T) {
	_, svc, clock := setupAnalyticsTest(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.TrackVisit(model.TrackVisitRequest{PostSlug: "/popular"}))
	}
	clock.Advance(time.Hour)
	require.NoError(t, svc.TrackVisit(model.TrackVisitRequest{PostSlug: "/recent"}))

	byPV, err := svc.VisitPages("", VisitOrderPV)
	require.NoError(t, err)
	require.Len(t, byPV, 2)
	assert.Equal(t, "/popular", byPV[0].PostSlug)
	assert.Equal(t, int64(3), byPV[0].PV)

	latest, err := svc.VisitPages("", VisitOrderLatest)
	require.NoError(t, err)
	assert.Equal(t, "/recent", latest[0].PostSlug)
}

func TestAnalyticsService_CommentStats(t *testing.T) {
	repos, svc, clock := setupAnalyticsTest(t)

	add := func(slug, status string, created time.Time) {
		require.NoError(t, repos.comments.Create(&model.Comment{
			Created: created.UnixMilli(), PostSlug: slug, Name: "n", Email: "n@example.com",
			ContentText: "x", ContentHTML: "x", Status: status, Priority: 1,
		}))
	}
	now := clock.Now()
	add("https://a.com/1", model.CommentStatusApproved, now)
	add("https://a.com/2", model.CommentStatusPending, now.Add(-24*time.Hour))
	add("https://b.com/1", model.CommentStatusRejected, now.Add(-30*24*time.Hour))
	add("/local", model.CommentStatusApproved, now)

	stats, err := svc.CommentStats("")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSummary{Total: 4, Approved: 2, Pending: 1, Rejected: 1}, stats.Summary)
	require.Len(t, stats.Domains, 3)
	assert.Equal(t, "a.com", stats.Domains[0].Domain)
	assert.Equal(t, int64(2), stats.Domains[0].Total)
	require.Len(t, stats.Last7Days, 7)
	assert.Equal(t, int64(2), stats.Last7Days[6].Total)
	assert.Equal(t, int64(1), stats.Last7Days[5].Total)

	filtered, err := svc.CommentStats("a.com")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSummary{Total: 2, Approved: 1, Pending: 1}, filtered.Summary)
	assert.Equal(t, int64(1), filtered.Last7Days[6].Total)

	domains, err := svc.Domains()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com"}, domains)
}

func TestAnalyticsService_ExportImport(t *testing.T) {
	repos, svc, _ := setupAnalyticsTest(t)

	require.NoError(t, svc.TrackVisit(model.TrackVisitRequest{PostSlug: "/x", PostURL: "https://x.com/x"}))
	_, err := repos.likes.AddPageLike("/x", "u1")
	require.NoError(t, err)

	bundle, err := svc.ExportStats()
	require.NoError(t, err)
	assert.Len(t, bundle.PageStats, 1)
	assert.Len(t, bundle.PageVisitDaily, 1)
	assert.Len(t, bundle.Likes, 1)

	other, otherSvc, _ := setupAnalyticsTest(t)
	require.NoError(t, otherSvc.ImportStats(*bundle))

	stat, err := other.stats.FindPageStat("/x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stat.PV)
	count, err := other.likes.CountPageLikes("/x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 같은 묶음을 다시 가져와도 중복 없음
	require.NoError(t, otherSvc.ImportStats(*bundle))
	count, err = other.likes.CountPageLikes("/x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
