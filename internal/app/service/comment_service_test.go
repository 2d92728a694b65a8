package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testRepos struct {
	db       *gorm.DB
	comments repository.CommentRepository
	likes    repository.LikeRepository
	stats    repository.StatsRepository
	emails   repository.EmailLogRepository
	settings SettingsService
}

func setupRepos(t *testing.T) *testRepos {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return &testRepos{
		db:       testDB,
		comments: repository.NewCommentRepository(testDB),
		likes:    repository.NewLikeRepository(testDB),
		stats:    repository.NewStatsRepository(testDB),
		emails:   repository.NewEmailLogRepository(testDB),
		settings: NewSettingsService(repository.NewSettingRepository(testDB)),
	}
}

// fakeClock 테스트용 시계
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (l stubLimiter) Allow(ctx context.Context, ip string, window time.Duration) (bool, error) {
	return l.allowed, l.err
}

func newCommentRequest(slug, name, content string) model.CreateCommentRequest {
	return model.CreateCommentRequest{
		PostSlug: slug,
		Name:     name,
		Email:    name + "@example.com",
		Content:  content,
	}
}

func TestCommentService_SubmitAndList(t *testing.T) {
	repos := setupRepos(t)
	clock := newFakeClock()
	events := &recordingPublisher{}
	svc := NewCommentService(repos.comments, repos.settings,
		WithClock(clock.Now), WithEventPublisher(events))

	result, err := svc.SubmitComment(context.Background(), newCommentRequest("/post", "alice", "**hello**"),
		model.SubmissionMeta{IP: "1.1.1.1", UserAgent: "test"})
	require.NoError(t, err)
	assert.Equal(t, MessageCommentSubmitted, result.Message)
	assert.Equal(t, model.CommentStatusApproved, result.Comment.Status)
	assert.Contains(t, result.Comment.ContentHTML, "<strong>hello</strong>")
	assert.Equal(t, clock.Now().UnixMilli(), result.Comment.Created)

	clock.Advance(time.Minute)
	req := newCommentRequest("/post", "bob", "reply")
	req.ParentID = &result.Comment.ID
	_, err = svc.SubmitComment(context.Background(), req, model.SubmissionMeta{IP: "1.1.1.1"})
	require.NoError(t, err)

	list, err := svc.ListComments(model.CommentListQuery{PostSlug: "/post"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, int64(2), list.Pagination.TotalCount)
	assert.Equal(t, 1, list.Pagination.Total)
	assert.Equal(t, DefaultCommentPageSize, list.Pagination.Limit)

	root := list.Data[0]
	assert.Equal(t, "alice", root.Name)
	require.Len(t, root.Replies, 1)
	require.NotNil(t, root.Replies[0].ReplyToAuthor)
	assert.Equal(t, "alice", *root.Replies[0].ReplyToAuthor)

	assert.Equal(t, []string{EventCommentCreated, EventCommentCreated}, events.events)
}

func TestCommentService_ListValidation(t *testing.T) {
	repos := setupRepos(t)
	svc := NewCommentService(repos.comments, repos.settings)

	_, err := svc.ListComments(model.CommentListQuery{})
	assert.ErrorIs(t, err, ErrPostSlugRequired)

	list, err := svc.ListComments(model.CommentListQuery{PostSlug: "/none", Limit: 500})
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	assert.Equal(t, MaxCommentPageSize, list.Pagination.Limit)
}

func TestCommentService_SubmitValidation(t *testing.T) {
	repos := setupRepos(t)
	svc := NewCommentService(repos.comments, repos.settings)

	tests := []struct {
		name    string
		req     model.CreateCommentRequest
		wantErr error
	}{
		{"Missing slug", model.CreateCommentRequest{Name: "a", Email: "a@b.co", Content: "x"}, ErrPostSlugRequired},
		{"Missing content", model.CreateCommentRequest{PostSlug: "/p", Name: "a", Email: "a@b.co"}, ErrContentRequired},
		{"Missing author", model.CreateCommentRequest{PostSlug: "/p", Email: "a@b.co", Content: "x"}, ErrAuthorRequired},
		{"Missing email", model.CreateCommentRequest{PostSlug: "/p", Name: "a", Content: "x"}, ErrEmailRequired},
		{"Invalid email", model.CreateCommentRequest{PostSlug: "/p", Name: "a", Email: "nope", Content: "x"}, ErrInvalidEmail},
		{"Only script content", model.CreateCommentRequest{PostSlug: "/p", Name: "a", Email: "a@b.co", Content: "<script>alert(1)</script>"}, ErrContentRequired},
		{"Only script author", model.CreateCommentRequest{PostSlug: "/p", Author: "<SCRIPT>x</SCRIPT>", Email: "a@b.co", Content: "x"}, ErrAuthorRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitComment(context.Background(), tt.req, model.SubmissionMeta{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCommentService_RateLimit(t *testing.T) {
	repos := setupRepos(t)
	clock := newFakeClock()
	svc := NewCommentService(repos.comments, repos.settings, WithClock(clock.Now))
	meta := model.SubmissionMeta{IP: "2.2.2.2"}

	_, err := svc.SubmitComment(context.Background(), newCommentRequest("/p", "a", "first"), meta)
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	_, err = svc.SubmitComment(context.Background(), newCommentRequest("/p", "a", "second"), meta)
	assert.ErrorIs(t, err, ErrRateLimited)

	// 다른 IP 는 영향 없음
	_, err = svc.SubmitComment(context.Background(), newCommentRequest("/p", "b", "other"), model.SubmissionMeta{IP: "3.3.3.3"})
	require.NoError(t, err)

	clock.Advance(6 * time.Second)
	_, err = svc.SubmitComment(context.Background(), newCommentRequest("/p", "a", "third"), meta)
	assert.NoError(t, err)
}

func TestCommentService_SubmissionLimiter(t *testing.T) {
	repos := setupRepos(t)

	denied := NewCommentService(repos.comments, repos.settings,
		WithSubmissionLimiter(stubLimiter{allowed: false}))
	_, err := denied.SubmitComment(context.Background(), newCommentRequest("/p", "a", "x"), model.SubmissionMeta{IP: "4.4.4.4"})
	assert.ErrorIs(t, err, ErrRateLimited)

	broken := NewCommentService(repos.comments, repos.settings,
		WithSubmissionLimiter(stubLimiter{err: errors.New("redis down")}))
	_, err = broken.SubmitComment(context.Background(), newCommentRequest("/p", "a", "x"), model.SubmissionMeta{IP: "4.4.4.4"})
	assert.NoError(t, err)
}

func TestCommentService_BlockAndDomain(t *testing.T) {
	repos := setupRepos(t)
	svc := NewCommentService(repos.comments, repos.settings)

	require.NoError(t, repos.settings.BlockIP("9.9.9.9"))
	require.NoError(t, repos.settings.BlockEmail("spam@example.com"))

	_, err := svc.SubmitComment(context.Background(), newCommentRequest("/p", "a", "x"), model.SubmissionMeta{IP: "9.9.9.9"})
	assert.ErrorIs(t, err, ErrBlocked)

	_, err = svc.SubmitComment(context.Background(), newCommentRequest("/p", "spam", "x"), model.SubmissionMeta{IP: "8.8.8.8"})
	assert.ErrorIs(t, err, ErrBlocked)

	require.NoError(t, repos.settings.UpdateCommentSettings(model.UpdateCommentSettingsRequest{
		AllowedDomains: &[]string{"example.com"},
	}))

	tests := []struct {
		name    string
		origin  string
		wantErr error
	}{
		{"Exact host", "https://example.com", nil},
		{"Subdomain", "https://blog.example.com/post", nil},
		{"Other host", "https://evil.com", ErrDomainNotAllowed},
		{"No origin", "", ErrDomainNotAllowed},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := model.SubmissionMeta{IP: fmt.Sprintf("10.0.0.%d", i+1), Origin: tt.origin}
			_, err := svc.SubmitComment(context.Background(), newCommentRequest("/p", "c", "x"), meta)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommentService_AdminKeyAndReview(t *testing.T) {
	repos := setupRepos(t)
	svc := NewCommentService(repos.comments, repos.settings)

	require.NoError(t, repos.settings.UpdateCommentSettings(model.UpdateCommentSettingsRequest{
		AdminEmail:    strPtr("owner@example.com"),
		AdminEnabled:  boolPtr(true),
		RequireReview: boolPtr(true),
	}))

	adminReq := newCommentRequest("/p", "owner", "hi")

	_, err := svc.SubmitComment(context.Background(), adminReq, model.SubmissionMeta{IP: "5.5.5.1"})
	assert.ErrorIs(t, err, ErrAdminKeyNotSet)

	require.NoError(t, repos.settings.UpdateCommentSettings(model.UpdateCommentSettingsRequest{
		AdminKey: strPtr("s3cret"),
	}))

	_, err = svc.SubmitComment(context.Background(), adminReq, model.SubmissionMeta{IP: "5.5.5.2"})
	assert.ErrorIs(t, err, ErrAdminKeyRequired)

	adminReq.AdminToken = "wrong"
	_, err = svc.SubmitComment(context.Background(), adminReq, model.SubmissionMeta{IP: "5.5.5.3"})
	assert.ErrorIs(t, err, ErrAdminKeyInvalid)

	adminReq.AdminToken = "s3cret"
	adminReq.Email = "OWNER@example.com"
	result, err := svc.SubmitComment(context.Background(), adminReq, model.SubmissionMeta{IP: "5.5.5.4"})
	require.NoError(t, err)
	assert.Equal(t, model.CommentStatusApproved, result.Comment.Status)

	result, err = svc.SubmitComment(context.Background(), newCommentRequest("/p", "guest", "hello"), model.SubmissionMeta{IP: "5.5.5.5"})
	require.NoError(t, err)
	assert.Equal(t, model.CommentStatusPending, result.Comment.Status)
	assert.Equal(t, MessageAwaitingReview, result.Message)

	// 승인 대기 댓글은 공개 목록에 없음, 관리자 댓글은 배지 표시
	list, err := svc.ListComments(model.CommentListQuery{PostSlug: "/p"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.True(t, list.Data[0].IsAdmin)

	assert.NoError(t, svc.VerifyAdminKey("s3cret"))
	assert.ErrorIs(t, svc.VerifyAdminKey("bad"), ErrAdminKeyInvalid)
	assert.ErrorIs(t, svc.VerifyAdminKey(""), ErrAdminTokenRequired)
}

func TestCommentService_LikeComment(t *testing.T) {
	repos := setupRepos(t)
	svc := NewCommentService(repos.comments, repos.settings)

	result, err := svc.SubmitComment(context.Background(), newCommentRequest("/p", "a", "x"), model.SubmissionMeta{})
	require.NoError(t, err)
	id := result.Comment.ID

	liked, err := svc.LikeComment(id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)
	assert.False(t, liked.AlreadyLiked)

	again, err := svc.LikeComment(id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Likes)
	assert.True(t, again.AlreadyLiked)

	// 토큰 없으면 카운터만 증가
	anon, err := svc.LikeComment(id, "")
	require.NoError(t, err)
	assert.Equal(t, 2, anon.Likes)

	_, err = svc.LikeComment(9999, "user-1")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	require.NoError(t, repos.settings.UpdateFeatureSettings(model.UpdateFeatureSettingsRequest{
		EnableCommentLike: boolPtr(false),
	}))
	_, err = svc.LikeComment(id, "user-2")
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

type notifierFunc func(ctx context.Context, comment model.Comment, postTitle, postURL string)

func (f notifierFunc) NotifyNewComment(ctx context.Context, comment model.Comment, postTitle, postURL string) {
	f(ctx, comment, postTitle, postURL)
}

func TestCommentService_NotifiesAsynchronously(t *testing.T) {
	repos := setupRepos(t)
	done := make(chan model.Comment, 1)
	svc := NewCommentService(repos.comments, repos.settings,
		WithNotifier(notifierFunc(func(ctx context.Context, c model.Comment, title, url string) {
			done <- c
		})))

	req := newCommentRequest("/p", "a", "x")
	req.PostTitle = "Post"
	result, err := svc.SubmitComment(context.Background(), req, model.SubmissionMeta{})
	require.NoError(t, err)

	select {
	case c := <-done:
		assert.Equal(t, result.Comment.ID, c.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}
}
