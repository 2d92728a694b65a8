package repository

import (
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VisitRecord 방문 1건
type VisitRecord struct {
	PostSlug  string
	PostTitle *string
	PostURL   *string
	Date      string // YYYY-MM-DD (UTC)
	Domain    string
	At        time.Time
}

type StatsRepository interface {
	RecordVisit(visit VisitRecord) error
	ListPageStats() ([]model.PageStat, error)
	ListDailySince(startDate, domain string) ([]model.PageVisitDaily, error)
	ListDaily() ([]model.PageVisitDaily, error)
	FindPageStat(postSlug string) (*model.PageStat, error)
	ImportPageStats(stats []model.PageStat) error
	ImportDaily(rows []model.PageVisitDaily) error
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// RecordVisit page_stats pv+1 과 page_visit_daily count+1 을 한 트랜잭션에서 처리
func (r *statsRepository) RecordVisit(visit VisitRecord) error {
	lastVisit := visit.At.UnixMilli()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		stat := model.PageStat{
			PostSlug:    visit.PostSlug,
			PostTitle:   visit.PostTitle,
			PostURL:     visit.PostURL,
			PV:          1,
			LastVisitAt: &lastVisit,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "post_slug"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"pv":            gorm.Expr("page_stats.pv + 1"),
				"post_title":    visit.PostTitle,
				"post_url":      visit.PostURL,
				"last_visit_at": lastVisit,
				"updated_at":    visit.At,
			}),
		}).Create(&stat).Error
		if err != nil {
			return err
		}

		daily := model.PageVisitDaily{
			Date:   visit.Date,
			Domain: visit.Domain,
			Count:  1,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}, {Name: "domain"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":      gorm.Expr("page_visit_daily.count + 1"),
				"updated_at": visit.At,
			}),
		}).Create(&daily).Error
	})
	if err != nil {
		logger.Error("Failed to record visit", err, map[string]interface{}{
			"post_slug": visit.PostSlug,
			"domain":    visit.Domain,
		})
		return err
	}

	logger.Debug("Visit recorded", map[string]interface{}{
		"post_slug": visit.PostSlug,
		"date":      visit.Date,
	})
	return nil
}

func (r *statsRepository) ListPageStats() ([]model.PageStat, error) {
	var stats []model.PageStat
	if err := r.db.Order("pv DESC, last_visit_at DESC").Find(&stats).Error; err != nil {
		logger.Error("Failed to list page stats", err, nil)
		return nil, err
	}
	return stats, nil
}

func (r *statsRepository) ListDailySince(startDate, domain string) ([]model.PageVisitDaily, error) {
	query := r.db.Where("date >= ?", startDate)
	if domain != "" {
		query = query.Where("domain = ?", domain)
	}

	var rows []model.PageVisitDaily
	if err := query.Order("date ASC").Find(&rows).Error; err != nil {
		logger.Error("Failed to list daily visits", err, map[string]interface{}{
			"start_date": startDate,
			"domain":     domain,
		})
		return nil, err
	}
	return rows, nil
}

func (r *statsRepository) ListDaily() ([]model.PageVisitDaily, error) {
	var rows []model.PageVisitDaily
	if err := r.db.Order("date ASC, domain ASC").Find(&rows).Error; err != nil {
		logger.Error("Failed to list daily visits", err, nil)
		return nil, err
	}
	return rows, nil
}

func (r *statsRepository) FindPageStat(postSlug string) (*model.PageStat, error) {
	var stat model.PageStat
	if err := r.db.Where("post_slug = ?", postSlug).First(&stat).Error; err != nil {
		return nil, err
	}
	return &stat, nil
}

// ImportPageStats post_slug 기준 upsert (ImportBatchSize 단위 트랜잭션)
func (r *statsRepository) ImportPageStats(stats []model.PageStat) error {
	for start := 0; start < len(stats); start += ImportBatchSize {
		end := min(start+ImportBatchSize, len(stats))
		err := r.db.Transaction(func(tx *gorm.DB) error {
			for i := start; i < end; i++ {
				s := stats[i]
				s.ID = 0
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "post_slug"}},
					DoUpdates: clause.AssignmentColumns([]string{"post_title", "post_url", "pv", "last_visit_at", "updated_at"}),
				}).Create(&s).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			logger.Error("Failed to import page stats batch", err, map[string]interface{}{
				"batch_start": start,
			})
			return err
		}
	}
	return nil
}

// ImportDaily (date, domain) 기준 upsert
func (r *statsRepository) ImportDaily(rows []model.PageVisitDaily) error {
	for start := 0; start < len(rows); start += ImportBatchSize {
		end := min(start+ImportBatchSize, len(rows))
		err := r.db.Transaction(func(tx *gorm.DB) error {
			for i := start; i < end; i++ {
				row := rows[i]
				row.ID = 0
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "date"}, {Name: "domain"}},
					DoUpdates: clause.AssignmentColumns([]string{"count", "updated_at"}),
				}).Create(&row).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			logger.Error("Failed to import daily visits batch", err, map[string]interface{}{
				"batch_start": start,
			})
			return err
		}
	}
	return nil
}
