package service

import (
	"context"
	"errors"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
)

// MaintenanceService 스케줄러에서 호출하는 정리/백업 작업
type MaintenanceService interface {
	PruneEmailLogs(retention time.Duration) (int64, error)
	BackupComments(ctx context.Context) error
}

type maintenanceService struct {
	emailLogRepo repository.EmailLogRepository
	comments     AdminCommentService
	now          func() time.Time
}

func NewMaintenanceService(emailLogRepo repository.EmailLogRepository, comments AdminCommentService) MaintenanceService {
	return &maintenanceService{
		emailLogRepo: emailLogRepo,
		comments:     comments,
		now:          time.Now,
	}
}

// PruneEmailLogs 보관 기간이 지난 발송 기록 삭제
func (s *maintenanceService) PruneEmailLogs(retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	deleted, err := s.emailLogRepo.DeleteOlderThan(s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	logger.Info("Email logs pruned", map[string]interface{}{
		"deleted":   deleted,
		"retention": retention.String(),
	})
	return deleted, nil
}

// BackupComments 백업 저장소가 없으면 건너뜀
func (s *maintenanceService) BackupComments(ctx context.Context) error {
	result, err := s.comments.Backup(ctx)
	if err != nil {
		if errors.Is(err, ErrBackupDisabled) {
			logger.Debug("Comment backup skipped: storage not configured", nil)
			return nil
		}
		return err
	}
	logger.Info("Comment backup completed", map[string]interface{}{
		"key": result.Key,
	})
	return nil
}
