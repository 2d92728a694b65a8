package controller

import (
	"errors"
	"net/http"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/service"
	apperrors "github.com/cwd-comments/cwd-backend/internal/errors"
	"github.com/cwd-comments/cwd-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		analyticsService: analyticsService,
	}
}

// TrackVisit 페이지 방문 기록
// POST /api/analytics/visit
func (ctrl *AnalyticsController) TrackVisit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.TrackVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	if err := ctrl.analyticsService.TrackVisit(req); err != nil {
		if errors.Is(err, service.ErrPostSlugMissing) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
			return
		}
		log.Error("Failed to track visit", err, map[string]interface{}{
			"post_slug": req.PostSlug,
		})
		apperrors.RespondWithParsedError(c, err, "track visit")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Overview 방문 통계 요약
// GET /admin/analytics/overview?domain=
func (ctrl *AnalyticsController) Overview(c *gin.Context) {
	overview, err := ctrl.analyticsService.VisitOverview(c.Query("domain"))
	if err != nil {
		ctrl.internal(c, err, "visit overview")
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Pages 방문 상위 페이지
// GET /admin/analytics/pages?domain=&order=pv|latest
func (ctrl *AnalyticsController) Pages(c *gin.Context) {
	order := c.DefaultQuery("order", service.VisitOrderPV)
	if order != service.VisitOrderPV && order != service.VisitOrderLatest {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "order must be pv or latest")
		return
	}

	items, err := ctrl.analyticsService.VisitPages(c.Query("domain"), order)
	if err != nil {
		ctrl.internal(c, err, "visit pages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CommentStats 상태별 댓글 통계
// GET /admin/stats/comments?domain=
func (ctrl *AnalyticsController) CommentStats(c *gin.Context) {
	stats, err := ctrl.analyticsService.CommentStats(c.Query("domain"))
	if err != nil {
		ctrl.internal(c, err, "comment stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Domains 댓글이 있는 도메인 목록
// GET /admin/stats/domains
func (ctrl *AnalyticsController) Domains(c *gin.Context) {
	domains, err := ctrl.analyticsService.Domains()
	if err != nil {
		ctrl.internal(c, err, "list domains")
		return
	}
	c.JSON(http.StatusOK, gin.H{"domains": domains})
}

// ExportStats 통계 내보내기
// GET /admin/stats/export
func (ctrl *AnalyticsController) ExportStats(c *gin.Context) {
	bundle, err := ctrl.analyticsService.ExportStats()
	if err != nil {
		ctrl.internal(c, err, "export stats")
		return
	}
	c.JSON(http.StatusOK, bundle)
}

// ImportStats 통계 가져오기
// POST /admin/stats/import
func (ctrl *AnalyticsController) ImportStats(c *gin.Context) {
	var bundle model.StatsBundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid stats bundle")
		return
	}

	if err := ctrl.analyticsService.ImportStats(bundle); err != nil {
		ctrl.internal(c, err, "import stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Stats imported",
		"pageStats":      len(bundle.PageStats),
		"pageVisitDaily": len(bundle.PageVisitDaily),
		"likes":          len(bundle.Likes),
	})
}

func (ctrl *AnalyticsController) internal(c *gin.Context, err error, action string) {
	middleware.GetLoggerFromContext(c).Error("Analytics request failed", err, map[string]interface{}{
		"action": action,
	})
	apperrors.RespondWithParsedError(c, err, action)
}
