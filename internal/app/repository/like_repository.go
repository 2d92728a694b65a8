package repository

import (
	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository interface {
	// 페이지 좋아요
	AddPageLike(pageSlug, userID string) (bool, error)
	RemovePageLike(pageSlug, userID string) error
	HasPageLike(pageSlug, userID string) (bool, error)
	CountPageLikes(pageSlug string) (int64, error)
	ListPageLikes(offset, limit int) ([]model.PageLike, int64, error)
	ListAllPageLikes() ([]model.PageLike, error)
	PageLikeStats() ([]model.LikeStatsItem, error)
	ImportPageLikes(likes []model.PageLike) error

	// 댓글 좋아요
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// AddPageLike (page_slug, user_id) 유니크 인덱스로 중복 무시. 새로 추가되면 true
func (r *likeRepository) AddPageLike(pageSlug, userID string) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PageLike{PageSlug: pageSlug, UserID: userID})
	if result.Error != nil {
		logger.Error("Failed to add page like", result.Error, map[string]interface{}{
			"page_slug": pageSlug,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) RemovePageLike(pageSlug, userID string) error {
	err := r.db.Where("page_slug = ? AND user_id = ?", pageSlug, userID).Delete(&model.PageLike{}).Error
	if err != nil {
		logger.Error("Failed to remove page like", err, map[string]interface{}{
			"page_slug": pageSlug,
		})
	}
	return err
}

func (r *likeRepository) HasPageLike(pageSlug, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.PageLike{}).
		Where("page_slug = ? AND user_id = ?", pageSlug, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) CountPageLikes(pageSlug string) (int64, error) {
	var count int64
	err := r.db.Model(&model.PageLike{}).Where("page_slug = ?", pageSlug).Count(&count).Error
	if err != nil {
		logger.Error("Failed to count page likes", err, map[string]interface{}{
			"page_slug": pageSlug,
		})
		return 0, err
	}
	return count, nil
}

func (r *likeRepository) ListPageLikes(offset, limit int) ([]model.PageLike, int64, error) {
	var total int64
	if err := r.db.Model(&model.PageLike{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count likes", err, nil)
		return nil, 0, err
	}

	var likes []model.PageLike
	err := r.db.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&likes).Error
	if err != nil {
		logger.Error("Failed to list likes", err, nil)
		return nil, 0, err
	}
	return likes, total, nil
}

func (r *likeRepository) ListAllPageLikes() ([]model.PageLike, error) {
	var likes []model.PageLike
	if err := r.db.Order("id ASC").Find(&likes).Error; err != nil {
		logger.Error("Failed to list all likes", err, nil)
		return nil, err
	}
	return likes, nil
}

// PageLikeStats 페이지별 좋아요 수 (page_stats 의 제목/URL 포함), 많은 순
func (r *likeRepository) PageLikeStats() ([]model.LikeStatsItem, error) {
	var items []model.LikeStatsItem
	err := r.db.Table("likes").
		Select("likes.page_slug AS page_slug, page_stats.post_title AS page_title, page_stats.post_url AS page_url, COUNT(likes.id) AS likes").
		Joins("LEFT JOIN page_stats ON page_stats.post_slug = likes.page_slug").
		Group("likes.page_slug, page_stats.post_title, page_stats.post_url").
		Order("likes DESC, likes.page_slug ASC").
		Scan(&items).Error
	if err != nil {
		logger.Error("Failed to aggregate like stats", err, nil)
		return nil, err
	}
	return items, nil
}

// ImportPageLikes (page_slug, user_id) 중복은 무시
func (r *likeRepository) ImportPageLikes(likes []model.PageLike) error {
	for start := 0; start < len(likes); start += ImportBatchSize {
		end := min(start+ImportBatchSize, len(likes))
		err := r.db.Transaction(func(tx *gorm.DB) error {
			for i := start; i < end; i++ {
				like := likes[i]
				like.ID = 0
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			logger.Error("Failed to import likes batch", err, map[string]interface{}{
				"batch_start": start,
			})
			return err
		}
	}
	return nil
}
