package db

import (
	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models returns every model managed by AutoMigrate
func Models() []interface{} {
	return []interface{}{
		&model.Comment{},
		&model.Setting{},
		&model.PageStat{},
		&model.PageVisitDaily{},
		&model.PageLike{},
		&model.CommentLike{},
		&model.EmailLog{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs migrations against the given connection
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
