package scheduler

import (
	"context"
	"time"

	"github.com/cwd-comments/cwd-backend/config"
	"github.com/cwd-comments/cwd-backend/internal/app/service"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	// 매일 04:30 발송 기록 정리
	pruneSpec = "30 4 * * *"

	backupTimeout = 2 * time.Minute
)

// MaintenanceScheduler 발송 기록 정리 + 댓글 백업 스케줄러
type MaintenanceScheduler struct {
	cron        *cron.Cron
	maintenance service.MaintenanceService
	cfg         config.SchedulerConfig
}

// NewMaintenanceScheduler 스케줄러 생성
func NewMaintenanceScheduler(maintenance service.MaintenanceService, cfg config.SchedulerConfig) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:        cron.New(),
		maintenance: maintenance,
		cfg:         cfg,
	}
}

// Start 작업 등록 후 스케줄러 시작
func (s *MaintenanceScheduler) Start() error {
	if _, err := s.cron.AddFunc(pruneSpec, s.pruneEmailLogs); err != nil {
		logger.Error("Failed to add cron job for email log pruning", err)
		return err
	}

	if s.cfg.BackupCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.BackupCron, s.backupComments); err != nil {
			logger.Error("Failed to add cron job for comment backup", err, map[string]interface{}{
				"spec": s.cfg.BackupCron,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"prune_spec":  pruneSpec,
		"backup_spec": s.cfg.BackupCron,
		"jobs":        len(s.cron.Entries()),
	})
	return nil
}

// Stop 실행 중인 작업이 끝날 때까지 대기
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped", nil)
}

func (s *MaintenanceScheduler) pruneEmailLogs() {
	if _, err := s.maintenance.PruneEmailLogs(s.cfg.EmailLogRetention); err != nil {
		logger.Error("Failed to prune email logs from scheduler", err)
	}
}

func (s *MaintenanceScheduler) backupComments() {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	if err := s.maintenance.BackupComments(ctx); err != nil {
		logger.Error("Failed to back up comments from scheduler", err)
	}
}
