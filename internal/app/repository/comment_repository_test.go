package repository

import (
	"testing"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCommentTest(t *testing.T) (*gorm.DB, CommentRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCommentRepository(testDB)
	return testDB, repo
}

func newComment(slug, status string, created int64, priority int) *model.Comment {
	return &model.Comment{
		Created:     created,
		PostSlug:    slug,
		Name:        "tester",
		Email:       "tester@example.com",
		ContentText: "hello",
		ContentHTML: "<p>hello</p>",
		Status:      status,
		Priority:    priority,
	}
}

func TestCommentRepository_ListApprovedBySlug(t *testing.T) {
	testDB, repo := setupCommentTest(t)
	defer db.CleanupTestDB(testDB)

	old := newComment("/a", model.CommentStatusApproved, 1000, 1)
	recent := newComment("/a", model.CommentStatusApproved, 3000, 1)
	pinned := newComment("/a", model.CommentStatusApproved, 500, 5)
	pending := newComment("/a", model.CommentStatusPending, 4000, 1)
	other := newComment("/b", model.CommentStatusApproved, 2000, 1)
	for _, c := range []*model.Comment{old, recent, pinned, pending, other} {
		require.NoError(t, repo.Create(c))
	}

	comments, err := repo.ListApprovedBySlug("/a")
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.Equal(t, pinned.ID, comments[0].ID)
	assert.Equal(t, recent.ID, comments[1].ID)
	assert.Equal(t, old.ID, comments[2].ID)
}

func TestCommentRepository_LastCreatedByIP(t *testing.T) {
	testDB, repo := setupCommentTest(t)
	defer db.CleanupTestDB(testDB)

	_, found, err := repo.LastCreatedByIP("1.2.3.4")
	require.NoError(t, err)
	assert.False(t, found)

	ip := "1.2.3.4"
	for _, created := range []int64{1000, 5000, 3000} {
		c := newComment("/a", model.CommentStatusApproved, created, 1)
		c.IPAddress = &ip
		require.NoError(t, repo.Create(c))
	}

	last, found, err := repo.LastCreatedByIP(ip)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(5000), last)
}

func TestCommentRepository_UpdateStatusAndDelete(t *testing.T) {
	testDB, repo := setupCommentTest(t)
	defer db.CleanupTestDB(testDB)

	c := newComment("/a", model.CommentStatusPending, 1000, 1)
	require.NoError(t, repo.Create(c))

	tests := []struct {
		name    string
		id      uint
		wantErr error
	}{
		{name: "existing comment", id: c.ID},
		{name: "unknown comment", id: 9999, wantErr: gorm.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateStatus(tt.id, "spam")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, repo.Delete(tt.id), tt.wantErr)
				return
			}
			require.NoError(t, err)

			found, err := repo.FindByID(tt.id)
			require.NoError(t, err)
			assert.Equal(t, "spam", found.Status)

			require.NoError(t, repo.Delete(tt.id))
			_, err = repo.FindByID(tt.id)
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		})
	}
}

func TestCommentRepository_IncrementLikes(t *testing.T) {
	testDB, repo := setupCommentTest(t)
	defer db.CleanupTestDB(testDB)

	approved := newComment("/a", model.CommentStatusApproved, 1000, 1)
	pending := newComment("/a", model.CommentStatusPending, 1000, 1)
	require.NoError(t, repo.Create(approved))
	require.NoError(t, repo.Create(pending))

	likes, err := repo.IncrementLikes(approved.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	likes, err = repo.IncrementLikes(approved.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, likes)

	_, err = repo.IncrementLikes(pending.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommentRepository_LikeByUser(t *testing.T) {
	testDB, repo := setupCommentTest(t)
	defer db.CleanupTestDB(testDB)

	comment := newComment("/a", model.CommentStatusPending, 1000, 1)
	require.NoError(t, repo.Create(comment))

	// 미승인 댓글이면 좋아요 기록도 롤백
	_, _, err := repo.LikeByUser(comment.ID, "user-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var rows int64
	require.NoError(t, testDB.Model(&model.CommentLike{}).Count(&rows).Error)
	assert.Zero(t, rows)

	require.NoError(t, repo.UpdateStatus(comment.ID, model.CommentStatusApproved))

	likes, added, err := repo.LikeByUser(comment.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, likes)

	likes, added, err = repo.LikeByUser(comment.ID, "user-1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, likes)

	likes, added, err = repo.LikeByUser(comment.ID, "user-2")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 2, likes)

	require.NoError(t, testDB.Model(&model.CommentLike{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}

func TestCommentRepository_ListWithDomainFilter(t *testing.T) {
	testDB, repo := setupCommentTest(t)
	defer db.CleanupTestDB(testDB)

	a := newComment("https://blog.example.com/posts/1", model.CommentStatusApproved, 1000, 1)
	b := newComment("https://other.dev/x", model.CommentStatusPending, 2000, 1)
	c := newComment("/local", model.CommentStatusPending, 3000, 1)
	site := "https://blog.example.com/about"
	c.URL = &site
	for _, cm := range []*model.Comment{a, b, c} {
		require.NoError(t, repo.Create(cm))
	}

	comments, total, err := repo.List(CommentFilter{Domain: "blog.example.com"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, comments, 2)

	comments, total, err = repo.List(CommentFilter{Status: model.CommentStatusPending}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, comments, 1)
	assert.Equal(t, c.ID, comments[0].ID)
}

func TestCommentRepository_UpsertBatch(t *testing.T) {
	testDB, repo := setupCommentTest(t)
	defer db.CleanupTestDB(testDB)

	existing := newComment("/a", model.CommentStatusApproved, 1000, 1)
	existing.ID = 3
	require.NoError(t, repo.Create(existing))

	var batch []*model.Comment
	for i := 1; i <= ImportBatchSize+5; i++ {
		c := newComment("/imported", model.CommentStatusApproved, int64(i), 1)
		c.ID = uint(i)
		batch = append(batch, c)
	}

	require.NoError(t, repo.UpsertBatch(batch))

	all, err := repo.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, ImportBatchSize+5)

	replaced, err := repo.FindByID(3)
	require.NoError(t, err)
	assert.Equal(t, "/imported", replaced.PostSlug)

	// sqlite 에서는 no-op
	assert.NoError(t, repo.SyncIDSequence())
}

func TestCommentRepository_CountBySlugAndStatus(t *testing.T) {
	testDB, repo := setupCommentTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(newComment("/a", model.CommentStatusApproved, 1, 1)))
	require.NoError(t, repo.Create(newComment("/a", model.CommentStatusApproved, 2, 1)))
	require.NoError(t, repo.Create(newComment("/a", model.CommentStatusPending, 3, 1)))

	rows, err := repo.CountBySlugAndStatus()
	require.NoError(t, err)

	counts := map[string]int64{}
	for _, row := range rows {
		counts[row.PostSlug+"|"+row.Status] = row.Count
	}
	assert.Equal(t, int64(2), counts["/a|approved"])
	assert.Equal(t, int64(1), counts["/a|pending"])

	slugs, err := repo.DistinctSlugs()
	require.NoError(t, err)
	assert.Equal(t, []string{"/a"}, slugs)
}
