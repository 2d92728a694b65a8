package repository

import (
	"fmt"
	"strings"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImportBatchSize 가져오기 시 트랜잭션 하나에 들어가는 레코드 수
const ImportBatchSize = 50

// CommentFilter 관리자 목록 필터
type CommentFilter struct {
	Domain string
	Status string
}

// SlugStatusCount post_slug + status 별 댓글 수
type SlugStatusCount struct {
	PostSlug string
	Status   string
	Count    int64
}

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id uint) (*model.Comment, error)
	FindApprovedByID(id uint) (*model.Comment, error)
	ListApprovedBySlug(postSlug string) ([]model.Comment, error)
	LastCreatedByIP(ip string) (int64, bool, error)
	Update(comment *model.Comment) error
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
	IncrementLikes(id uint) (int, error)
	LikeByUser(id uint, userID string) (likes int, added bool, err error)
	List(filter CommentFilter, offset, limit int) ([]model.Comment, int64, error)
	ListAll() ([]model.Comment, error)
	UpsertBatch(comments []*model.Comment) error
	SyncIDSequence() error
	CountBySlugAndStatus() ([]SlugStatusCount, error)
	CreatedSince(since int64) ([]model.Comment, error)
	DistinctSlugs() ([]string, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	logger.Debug("Creating comment in database", map[string]interface{}{
		"post_slug": comment.PostSlug,
		"parent_id": comment.ParentID,
	})

	if err := r.db.Create(comment).Error; err != nil {
		logger.Error("Failed to create comment in database", err, map[string]interface{}{
			"post_slug": comment.PostSlug,
		})
		return err
	}

	logger.Debug("Comment created in database", map[string]interface{}{
		"comment_id": comment.ID,
		"status":     comment.Status,
	})
	return nil
}

func (r *commentRepository) FindByID(id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find comment by ID", err, map[string]interface{}{
				"comment_id": id,
			})
		}
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindApprovedByID(id uint) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ? AND status = ?", id, model.CommentStatusApproved).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListApprovedBySlug 공개 노출용 승인 댓글 (고정 우선, 최신순)
func (r *commentRepository) ListApprovedBySlug(postSlug string) ([]model.Comment, error) {
	logger.Debug("Listing approved comments", map[string]interface{}{
		"post_slug": postSlug,
	})

	var comments []model.Comment
	err := r.db.
		Where("post_slug = ? AND status = ?", postSlug, model.CommentStatusApproved).
		Order("priority DESC, created DESC").
		Find(&comments).Error
	if err != nil {
		logger.Error("Failed to list approved comments", err, map[string]interface{}{
			"post_slug": postSlug,
		})
		return nil, err
	}

	logger.Debug("Approved comments listed", map[string]interface{}{
		"post_slug": postSlug,
		"count":     len(comments),
	})
	return comments, nil
}

// LastCreatedByIP 같은 IP 의 마지막 작성 시각 (unix ms)
func (r *commentRepository) LastCreatedByIP(ip string) (int64, bool, error) {
	var comment model.Comment
	err := r.db.Select("created").
		Where("ip_address = ?", ip).
		Order("created DESC").
		Limit(1).
		Find(&comment).Error
	if err != nil {
		logger.Error("Failed to find last comment by IP", err, map[string]interface{}{
			"ip": ip,
		})
		return 0, false, err
	}
	if comment.Created == 0 {
		return 0, false, nil
	}
	return comment.Created, true, nil
}

func (r *commentRepository) Update(comment *model.Comment) error {
	logger.Debug("Updating comment in database", map[string]interface{}{
		"comment_id": comment.ID,
	})

	if err := r.db.Save(comment).Error; err != nil {
		logger.Error("Failed to update comment in database", err, map[string]interface{}{
			"comment_id": comment.ID,
		})
		return err
	}
	return nil
}

func (r *commentRepository) UpdateStatus(id uint, status string) error {
	result := r.db.Model(&model.Comment{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update comment status", result.Error, map[string]interface{}{
			"comment_id": id,
			"status":     status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Info("Comment status updated", map[string]interface{}{
		"comment_id": id,
		"status":     status,
	})
	return nil
}

func (r *commentRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Comment{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete comment", result.Error, map[string]interface{}{
			"comment_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Info("Comment deleted", map[string]interface{}{
		"comment_id": id,
	})
	return nil
}

// IncrementLikes 승인된 댓글의 좋아요 +1, 갱신된 값 반환
func (r *commentRepository) IncrementLikes(id uint) (int, error) {
	var likes int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		likes, err = incrementLikes(tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return likes, nil
}

// LikeByUser comment_likes 기록과 좋아요 +1 을 한 트랜잭션으로 처리
// 이미 누른 사용자면 added=false 와 현재 값을 반환
func (r *commentRepository) LikeByUser(id uint, userID string) (likes int, added bool, err error) {
	err = r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.CommentLike{CommentID: id, UserID: userID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			likes, err = currentLikes(tx, id)
			return err
		}
		added = true
		likes, err = incrementLikes(tx, id)
		return err
	})
	if err != nil {
		logger.Error("Failed to like comment", err, map[string]interface{}{
			"comment_id": id,
		})
		return 0, false, err
	}
	return likes, added, nil
}

func incrementLikes(tx *gorm.DB, id uint) (int, error) {
	result := tx.Model(&model.Comment{}).
		Where("id = ? AND status = ?", id, model.CommentStatusApproved).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return currentLikes(tx, id)
}

func currentLikes(tx *gorm.DB, id uint) (int, error) {
	var values []int
	if err := tx.Model(&model.Comment{}).Where("id = ?", id).Pluck("likes", &values).Error; err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return values[0], nil
}

// List 관리자 목록 (도메인/상태 필터)
func (r *commentRepository) List(filter CommentFilter, offset, limit int) ([]model.Comment, int64, error) {
	logger.Debug("Listing comments for admin", map[string]interface{}{
		"domain": filter.Domain,
		"status": filter.Status,
		"offset": offset,
	})

	query := r.db.Model(&model.Comment{})
	if domain := strings.TrimSpace(filter.Domain); domain != "" {
		pattern := fmt.Sprintf("%%://%s/%%", domain)
		query = query.Where("post_slug LIKE ? OR url LIKE ?", pattern, pattern)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count comments", err, nil)
		return nil, 0, err
	}

	var comments []model.Comment
	err := query.Order("priority DESC, created DESC").Offset(offset).Limit(limit).Find(&comments).Error
	if err != nil {
		logger.Error("Failed to list comments", err, nil)
		return nil, 0, err
	}

	return comments, total, nil
}

func (r *commentRepository) ListAll() ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.Order("priority DESC, created DESC").Find(&comments).Error; err != nil {
		logger.Error("Failed to list all comments", err, nil)
		return nil, err
	}
	return comments, nil
}

// UpsertBatch ImportBatchSize 단위로 트랜잭션을 나눠 id 기준 insert-or-replace
// 앞선 배치는 뒤 배치가 실패해도 커밋된 상태로 남음
func (r *commentRepository) UpsertBatch(comments []*model.Comment) error {
	for start := 0; start < len(comments); start += ImportBatchSize {
		batch := comments[start:min(start+ImportBatchSize, len(comments))]

		err := r.db.Transaction(func(tx *gorm.DB) error {
			for _, c := range batch {
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					UpdateAll: true,
				}).Create(c).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			logger.Error("Failed to import comment batch", err, map[string]interface{}{
				"batch_start": start,
				"batch_size":  len(batch),
			})
			return fmt.Errorf("batch starting at %d: %w", start, err)
		}

		logger.Debug("Comment batch imported", map[string]interface{}{
			"batch_start": start,
			"batch_size":  len(batch),
		})
	}
	return nil
}

// SyncIDSequence 명시적 id 로 가져온 뒤 postgres 시퀀스를 MAX(id) 로 맞춤
func (r *commentRepository) SyncIDSequence() error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	err := r.db.Exec(
		"SELECT setval(pg_get_serial_sequence('comments', 'id'), COALESCE((SELECT MAX(id) FROM comments), 0) + 1, false)",
	).Error
	if err != nil {
		logger.Error("Failed to sync comment id sequence", err, nil)
	}
	return err
}

func (r *commentRepository) CountBySlugAndStatus() ([]SlugStatusCount, error) {
	var rows []SlugStatusCount
	err := r.db.Model(&model.Comment{}).
		Select("post_slug, status, COUNT(*) AS count").
		Group("post_slug, status").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to count comments by slug and status", err, nil)
		return nil, err
	}
	return rows, nil
}

// CreatedSince since(ms) 이후 댓글의 post_slug, created 만 조회
func (r *commentRepository) CreatedSince(since int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.Select("id, post_slug, created").
		Where("created >= ?", since).
		Find(&comments).Error
	if err != nil {
		logger.Error("Failed to list recent comments", err, nil)
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) DistinctSlugs() ([]string, error) {
	var slugs []string
	if err := r.db.Model(&model.Comment{}).Distinct().Pluck("post_slug", &slugs).Error; err != nil {
		logger.Error("Failed to list comment slugs", err, nil)
		return nil, err
	}
	return slugs, nil
}
