package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/cwd-comments/cwd-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	// SubmissionWindow 같은 IP 의 연속 작성 최소 간격
	SubmissionWindow = 10 * time.Second

	DefaultCommentPageSize = 20
	MaxCommentPageSize     = 50

	MessageCommentSubmitted = "Comment submitted."
	MessageAwaitingReview   = "Comment submitted. Awaiting moderation."
	MessageRateLimited      = "Comments are too frequent, please wait 10s"
)

var (
	ErrPostSlugRequired   = errors.New("post_slug is required")
	ErrContentRequired    = errors.New("content is required")
	ErrAuthorRequired     = errors.New("author is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrBlocked            = errors.New("commenting is blocked for this ip or email")
	ErrDomainNotAllowed   = errors.New("domain is not allowed")
	ErrAdminKeyRequired   = errors.New("admin key required for the admin email")
	ErrAdminKeyInvalid    = errors.New("invalid admin key")
	ErrAdminKeyNotSet     = errors.New("admin key is not configured")
	ErrRateLimited        = errors.New("comment rate limited")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrFeatureDisabled    = errors.New("feature is disabled")
	ErrAdminTokenRequired = errors.New("adminToken is required")
)

// SubmissionLimiter 인스턴스 간 공유되는 작성 빈도 제한 (redis)
type SubmissionLimiter interface {
	Allow(ctx context.Context, ip string, window time.Duration) (bool, error)
}

// CommentNotifier 새 댓글 알림 (메일/텔레그램)
type CommentNotifier interface {
	NotifyNewComment(ctx context.Context, comment model.Comment, postTitle, postURL string)
}

// EventPublisher 관리자 실시간 피드
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

// 관리자 피드 이벤트
const (
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
)

// CommentListResult 공개 댓글 목록
type CommentListResult struct {
	Data       []model.CommentView `json:"data"`
	Pagination model.Pagination    `json:"pagination"`
}

type CommentService interface {
	ListComments(query model.CommentListQuery) (*CommentListResult, error)
	SubmitComment(ctx context.Context, req model.CreateCommentRequest, meta model.SubmissionMeta) (*model.CreateCommentResult, error)
	VerifyAdminKey(token string) error
	LikeComment(id uint, userID string) (*model.LikeCommentResult, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	settings    SettingsService
	limiter     SubmissionLimiter
	notifier    CommentNotifier
	events      EventPublisher
	now         func() time.Time
}

// CommentServiceOption 선택 의존성
type CommentServiceOption func(*commentService)

func WithSubmissionLimiter(l SubmissionLimiter) CommentServiceOption {
	return func(s *commentService) { s.limiter = l }
}

func WithNotifier(n CommentNotifier) CommentServiceOption {
	return func(s *commentService) { s.notifier = n }
}

func WithEventPublisher(p EventPublisher) CommentServiceOption {
	return func(s *commentService) { s.events = p }
}

func WithClock(now func() time.Time) CommentServiceOption {
	return func(s *commentService) { s.now = now }
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	settings SettingsService,
	opts ...CommentServiceOption,
) CommentService {
	s := &commentService{
		commentRepo: commentRepo,
		settings:    settings,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListComments 승인된 댓글을 스레드로 묶어 페이지 단위로 반환
func (s *commentService) ListComments(query model.CommentListQuery) (*CommentListResult, error) {
	slug := strings.TrimSpace(query.PostSlug)
	if slug == "" {
		return nil, ErrPostSlugRequired
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultCommentPageSize
	}
	if limit > MaxCommentPageSize {
		limit = MaxCommentPageSize
	}

	settings, err := s.settings.GetCommentSettings()
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimSpace(query.AvatarPrefix)
	if prefix == "" && settings.AvatarPrefix != nil {
		prefix = *settings.AvatarPrefix
	}
	adminEmail := ""
	if settings.AdminEnabled && settings.AdminEmail != nil {
		adminEmail = *settings.AdminEmail
	}

	comments, err := s.commentRepo.ListApprovedBySlug(slug)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	views := make([]model.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, toCommentView(&comments[i], prefix, adminEmail))
	}

	result := &CommentListResult{
		Pagination: model.Pagination{
			Page:       page,
			Limit:      limit,
			TotalCount: int64(len(views)),
		},
	}

	if query.Nested == "false" {
		result.Data = PaginateFlat(views, page, limit)
		result.Pagination.Total = TotalPages(len(views), limit)
		return result, nil
	}

	threaded := ThreadAndPaginate(views, page, limit)
	result.Data = threaded.Roots
	result.Pagination.Total = TotalPages(threaded.TotalRoots, limit)
	return result, nil
}

func toCommentView(c *model.Comment, avatarPrefix, adminEmail string) model.CommentView {
	return model.CommentView{
		ID:          c.ID,
		Created:     c.Created,
		PostSlug:    c.PostSlug,
		Name:        c.Name,
		URL:         c.URL,
		ContentText: c.ContentText,
		ContentHTML: c.ContentHTML,
		ParentID:    c.ParentID,
		Priority:    c.Priority,
		Likes:       c.Likes,
		Avatar:      util.AvatarURL(c.Email, avatarPrefix),
		IsAdmin:     adminEmail != "" && strings.EqualFold(c.Email, adminEmail),
		Replies:     []model.CommentView{},
	}
}

// SubmitComment 댓글 작성
// 순서: 스크립트 제거 -> 차단 목록 -> 허용 도메인 -> 관리자 키 -> 빈도 제한 -> 상태 결정 -> 저장 -> 비동기 알림
func (s *commentService) SubmitComment(ctx context.Context, req model.CreateCommentRequest, meta model.SubmissionMeta) (*model.CreateCommentResult, error) {
	postSlug := strings.TrimSpace(req.PostSlug)
	if postSlug == "" {
		return nil, ErrPostSlugRequired
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrContentRequired
	}
	if strings.TrimSpace(req.AuthorName()) == "" {
		return nil, ErrAuthorRequired
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !util.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	content := strings.TrimSpace(util.StripScripts(req.Content))
	author := strings.TrimSpace(util.StripScripts(req.AuthorName()))
	if content == "" {
		return nil, ErrContentRequired
	}
	if author == "" {
		return nil, ErrAuthorRequired
	}

	settings, err := s.settings.GetCommentSettings()
	if err != nil {
		return nil, err
	}

	if containsFold(settings.BlockedIPs, meta.IP) || containsFold(settings.BlockedEmails, email) {
		logger.Warn("Blocked comment submission", map[string]interface{}{
			"ip":        meta.IP,
			"post_slug": postSlug,
		})
		return nil, ErrBlocked
	}

	if len(settings.AllowedDomains) > 0 {
		host := util.ExtractDomain(meta.Origin)
		if host == "" {
			host = util.ExtractDomain(req.PostURL)
		}
		if !domainAllowed(settings.AllowedDomains, host) {
			logger.Warn("Comment from disallowed domain", map[string]interface{}{
				"host":      host,
				"post_slug": postSlug,
			})
			return nil, ErrDomainNotAllowed
		}
	}

	isAdmin := false
	if settings.AdminEnabled && settings.AdminEmail != nil && strings.EqualFold(email, *settings.AdminEmail) {
		if settings.AdminKey == nil {
			return nil, ErrAdminKeyNotSet
		}
		if strings.TrimSpace(req.AdminToken) == "" {
			return nil, ErrAdminKeyRequired
		}
		if !util.VerifyPassword(*settings.AdminKey, req.AdminToken) {
			return nil, ErrAdminKeyInvalid
		}
		isAdmin = true
	}

	now := s.now()
	if meta.IP != "" {
		if err := s.checkRate(ctx, meta.IP, now); err != nil {
			return nil, err
		}
	}

	status := model.CommentStatusApproved
	if settings.RequireReview && !isAdmin {
		status = model.CommentStatusPending
	}

	comment := &model.Comment{
		Created:     now.UnixMilli(),
		PostSlug:    postSlug,
		Name:        author,
		Email:       email,
		URL:         optionalTrimmed(req.URL),
		IPAddress:   optionalTrimmed(meta.IP),
		UA:          optionalTrimmed(meta.UserAgent),
		ContentText: content,
		ContentHTML: util.RenderContent(content),
		ParentID:    normalizeParentID(req.ParentID),
		Status:      status,
		Priority:    model.DefaultCommentPriority,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	logger.Info("Comment submitted", map[string]interface{}{
		"comment_id": comment.ID,
		"post_slug":  postSlug,
		"status":     status,
		"is_admin":   isAdmin,
	})

	s.afterSubmit(*comment, req.PostTitle, req.PostURL)

	message := MessageCommentSubmitted
	if status == model.CommentStatusPending {
		message = MessageAwaitingReview
	}
	return &model.CreateCommentResult{Comment: comment, Message: message}, nil
}

// checkRate 마지막 작성 시각 기준 10초 제한 + redis SET NX
func (s *commentService) checkRate(ctx context.Context, ip string, now time.Time) error {
	last, found, err := s.commentRepo.LastCreatedByIP(ip)
	if err != nil {
		return fmt.Errorf("check submission rate: %w", err)
	}
	if found && now.UnixMilli()-last < SubmissionWindow.Milliseconds() {
		return ErrRateLimited
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, ip, SubmissionWindow)
		if err != nil {
			// redis 장애 시 DB 기준 제한만 적용
			logger.Warn("Submission limiter unavailable", map[string]interface{}{
				"error": err.Error(),
			})
			return nil
		}
		if !allowed {
			return ErrRateLimited
		}
	}
	return nil
}

// afterSubmit 요청과 분리된 goroutine 에서 알림 발송, 관리자 피드에 이벤트 전송
func (s *commentService) afterSubmit(comment model.Comment, postTitle, postURL string) {
	if s.events != nil {
		s.events.Publish(EventCommentCreated, comment)
	}
	if s.notifier == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Comment notification panicked", fmt.Errorf("%v", r), map[string]interface{}{
					"comment_id": comment.ID,
				})
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.notifier.NotifyNewComment(ctx, comment, postTitle, postURL)
	}()
}

// VerifyAdminKey 위젯의 관리자 키 확인
func (s *commentService) VerifyAdminKey(token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrAdminTokenRequired
	}
	settings, err := s.settings.GetCommentSettings()
	if err != nil {
		return err
	}
	if settings.AdminKey == nil {
		return ErrAdminKeyNotSet
	}
	if !util.VerifyPassword(*settings.AdminKey, token) {
		return ErrAdminKeyInvalid
	}
	return nil
}

// LikeComment 댓글 좋아요 (취소 없음). userID 가 있으면 사용자당 1회
func (s *commentService) LikeComment(id uint, userID string) (*model.LikeCommentResult, error) {
	features, err := s.settings.GetFeatureSettings()
	if err != nil {
		return nil, err
	}
	if !features.EnableCommentLike {
		return nil, ErrFeatureDisabled
	}

	if _, err := s.commentRepo.FindApprovedByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	var likes int
	added := true
	if userID = strings.TrimSpace(userID); userID != "" {
		likes, added, err = s.commentRepo.LikeByUser(id, userID)
	} else {
		likes, err = s.commentRepo.IncrementLikes(id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	return &model.LikeCommentResult{ID: id, Likes: likes, AlreadyLiked: !added}, nil
}

func containsFold(items []string, value string) bool {
	if value == "" {
		return false
	}
	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}

// domainAllowed 정확히 일치하거나 하위 도메인이면 허용
func domainAllowed(allowed []string, host string) bool {
	if host == "" {
		return false
	}
	for _, domain := range allowed {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if d := util.ExtractDomain(domain); d != "" {
			domain = d
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func optionalTrimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func normalizeParentID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}
