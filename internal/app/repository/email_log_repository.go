package repository

import (
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"gorm.io/gorm"
)

type EmailLogRepository interface {
	Create(log *model.EmailLog) error
	LastSentAt(emailType, recipient string) (*time.Time, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type emailLogRepository struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) Create(log *model.EmailLog) error {
	if err := r.db.Create(log).Error; err != nil {
		logger.Error("Failed to create email log", err, map[string]interface{}{
			"type": log.Type,
		})
		return err
	}
	return nil
}

// LastSentAt 최근 발송 시각. recipient 가 비어 있으면 타입 전체 기준
func (r *emailLogRepository) LastSentAt(emailType, recipient string) (*time.Time, error) {
	query := r.db.Where("type = ?", emailType)
	if recipient != "" {
		query = query.Where("recipient = ?", recipient)
	}

	var entry model.EmailLog
	err := query.Order("created_at DESC").Limit(1).Find(&entry).Error
	if err != nil {
		logger.Error("Failed to load last email log", err, map[string]interface{}{
			"type": emailType,
		})
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry.CreatedAt, nil
}

func (r *emailLogRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&model.EmailLog{})
	if result.Error != nil {
		logger.Error("Failed to prune email logs", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
