package repository

import (
	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	GetMany(keys []string) (map[string]string, error)
	Upsert(key, value string) error
	Delete(key string) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// GetMany 한 번의 IN 쿼리로 설정을 읽음. 행이 없는 키는 맵에 없음
func (r *settingRepository) GetMany(keys []string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	var rows []model.Setting
	if err := r.db.Where("key IN ?", keys).Find(&rows).Error; err != nil {
		logger.Error("Failed to load settings", err, map[string]interface{}{
			"keys": keys,
		})
		return nil, err
	}

	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

func (r *settingRepository) Upsert(key, value string) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&model.Setting{Key: key, Value: value}).Error
	if err != nil {
		logger.Error("Failed to save setting", err, map[string]interface{}{
			"key": key,
		})
		return err
	}

	logger.Debug("Setting saved", map[string]interface{}{
		"key": key,
	})
	return nil
}

func (r *settingRepository) Delete(key string) error {
	if err := r.db.Where("key = ?", key).Delete(&model.Setting{}).Error; err != nil {
		logger.Error("Failed to delete setting", err, map[string]interface{}{
			"key": key,
		})
		return err
	}

	logger.Debug("Setting deleted", map[string]interface{}{
		"key": key,
	})
	return nil
}
