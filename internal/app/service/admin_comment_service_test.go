package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	name string
	body []byte
	err  error
}

func (u *fakeUploader) UploadBackup(ctx context.Context, name, contentType string, body []byte) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	u.name = name
	u.body = body
	return &storage.UploadResult{Key: "backups/" + name, URL: "https://s3.example.com/backups/" + name}, nil
}

func TestAdminCommentService_List(t *testing.T) {
	repos := setupRepos(t)
	svc := NewAdminCommentService(repos.comments, repos.settings, nil, nil)

	for i := 0; i < 12; i++ {
		c := &model.Comment{
			Created: int64(1000 + i), PostSlug: fmt.Sprintf("https://a.com/post-%d", i%2), Name: "n", Email: "n@example.com",
			ContentText: "x", ContentHTML: "x", Status: model.CommentStatusApproved, Priority: 1,
		}
		if i%3 == 0 {
			c.Status = model.CommentStatusPending
		}
		require.NoError(t, repos.comments.Create(c))
	}
	require.NoError(t, repos.comments.Create(&model.Comment{
		Created: 5000, PostSlug: "https://b.com/x", Name: "m", Email: "m@example.com",
		ContentText: "y", ContentHTML: "y", Status: model.CommentStatusApproved, Priority: 1,
	}))

	page1, err := svc.ListComments(model.AdminCommentListQuery{})
	require.NoError(t, err)
	assert.Len(t, page1.Data, AdminCommentPageSize)
	assert.Equal(t, int64(13), page1.Pagination.TotalCount)
	assert.Equal(t, 2, page1.Pagination.Total)
	assert.NotEmpty(t, page1.Data[0].Avatar)

	byDomain, err := svc.ListComments(model.AdminCommentListQuery{Domain: "b.com"})
	require.NoError(t, err)
	require.Len(t, byDomain.Data, 1)
	assert.Equal(t, "m", byDomain.Data[0].Name)

	pending, err := svc.ListComments(model.AdminCommentListQuery{Status: model.CommentStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(4), pending.Pagination.TotalCount)
}

func TestAdminCommentService_Update(t *testing.T) {
	repos := setupRepos(t)
	events := &recordingPublisher{}
	svc := NewAdminCommentService(repos.comments, repos.settings, nil, events)

	c := createComment(t, repos, "grace", nil)

	tests := []struct {
		name    string
		req     model.UpdateCommentRequest
		wantErr error
	}{
		{"Missing id", model.UpdateCommentRequest{Name: "a", Email: "a@b.co", Content: "x"}, ErrInvalidCommentID},
		{"Unknown id", model.UpdateCommentRequest{ID: 999, Name: "a", Email: "a@b.co", Content: "x"}, ErrCommentNotFound},
		{"Missing name", model.UpdateCommentRequest{ID: c.ID, Email: "a@b.co", Content: "x"}, ErrNameRequired},
		{"Missing email", model.UpdateCommentRequest{ID: c.ID, Name: "a", Content: "x"}, ErrEmailRequired},
		{"Missing content", model.UpdateCommentRequest{ID: c.ID, Name: "a", Email: "a@b.co"}, ErrContentRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateComment(tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	updated, err := svc.UpdateComment(model.UpdateCommentRequest{
		ID:          c.ID,
		Name:        "Grace H",
		Email:       "grace@example.com",
		PostSlugAlt: "/moved",
		ContentText: "_edited_",
		Status:      "spam",
		Priority:    intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace H", updated.Name)
	assert.Equal(t, "/moved", updated.PostSlug)
	assert.Equal(t, "spam", updated.Status)
	assert.Equal(t, 1, updated.Priority)
	assert.Contains(t, updated.ContentHTML, "<em>edited</em>")

	updated, err = svc.UpdateComment(model.UpdateCommentRequest{
		ID: c.ID, Name: "Grace H", Email: "grace@example.com", Content: "pinned", ContentText: "ignored", Priority: intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Priority)
	assert.Equal(t, "pinned", updated.ContentText)
	assert.Equal(t, "/moved", updated.PostSlug)

	assert.Equal(t, []string{EventCommentUpdated, EventCommentUpdated}, events.events)
}

func TestAdminCommentService_StatusAndDelete(t *testing.T) {
	repos := setupRepos(t)
	svc := NewAdminCommentService(repos.comments, repos.settings, nil, nil)
	c := createComment(t, repos, "heidi", nil)

	assert.ErrorIs(t, svc.UpdateStatus(c.ID, " "), ErrStatusRequired)
	assert.ErrorIs(t, svc.UpdateStatus(999, "approved"), ErrCommentNotFound)
	require.NoError(t, svc.UpdateStatus(c.ID, "rejected"))

	stored, err := repos.comments.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", stored.Status)

	require.NoError(t, svc.DeleteComment(c.ID))
	assert.ErrorIs(t, svc.DeleteComment(c.ID), ErrCommentNotFound)
}

func TestAdminCommentService_Backup(t *testing.T) {
	repos := setupRepos(t)

	disabled := NewAdminCommentService(repos.comments, repos.settings, nil, nil)
	_, err := disabled.Backup(context.Background())
	assert.ErrorIs(t, err, ErrBackupDisabled)

	createComment(t, repos, "ivan", nil)
	uploader := &fakeUploader{}
	svc := NewAdminCommentService(repos.comments, repos.settings, uploader, nil).(*adminCommentService)
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }

	result, err := svc.Backup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "comments-20260203-040506.json", uploader.name)
	assert.Equal(t, "backups/comments-20260203-040506.json", result.Key)

	var records []model.CommentRecord
	require.NoError(t, json.Unmarshal(uploader.body, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "ivan", records[0].Name)

	failing := NewAdminCommentService(repos.comments, repos.settings, &fakeUploader{err: errors.New("denied")}, nil)
	_, err = failing.Backup(context.Background())
	assert.Error(t, err)
}

func TestAdminCommentService_ExportXLSX(t *testing.T) {
	repos := setupRepos(t)
	svc := NewAdminCommentService(repos.comments, repos.settings, nil, nil)
	createComment(t, repos, "judy", nil)

	data, err := svc.ExportCommentsXLSX()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx 는 zip 컨테이너
	assert.Equal(t, "PK", string(data[:2]))
}
