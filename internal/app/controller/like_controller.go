package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/service"
	apperrors "github.com/cwd-comments/cwd-backend/internal/errors"
	"github.com/cwd-comments/cwd-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type LikeController struct {
	likeService service.LikeService
}

func NewLikeController(likeService service.LikeService) *LikeController {
	return &LikeController{
		likeService: likeService,
	}
}

// GetStatus 페이지 좋아요 상태
// GET /api/like?post_slug=
func (ctrl *LikeController) GetStatus(c *gin.Context) {
	status, err := ctrl.likeService.GetStatus(c.Query("post_slug"), likeUser(c))
	if err != nil {
		ctrl.respondError(c, err, "get like status")
		return
	}
	c.JSON(http.StatusOK, status)
}

// Like 페이지 좋아요
// POST /api/like
func (ctrl *LikeController) Like(c *gin.Context) {
	var req model.PageLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	status, err := ctrl.likeService.Like(req.PostSlug, likeUser(c))
	if err != nil {
		ctrl.respondError(c, err, "like page")
		return
	}
	c.JSON(http.StatusOK, status)
}

// Unlike 페이지 좋아요 취소
// DELETE /api/like?post_slug=
func (ctrl *LikeController) Unlike(c *gin.Context) {
	status, err := ctrl.likeService.Unlike(c.Query("post_slug"), likeUser(c))
	if err != nil {
		ctrl.respondError(c, err, "unlike page")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"liked":      false,
		"totalLikes": status.TotalLikes,
	})
}

// ListLikes 관리자 좋아요 목록
// GET /admin/likes/list?page=
func (ctrl *LikeController) ListLikes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := ctrl.likeService.ListLikes(page)
	if err != nil {
		ctrl.respondError(c, err, "list likes")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Stats 페이지별 좋아요 수
// GET /admin/likes/stats
func (ctrl *LikeController) Stats(c *gin.Context) {
	items, err := ctrl.likeService.Stats()
	if err != nil {
		ctrl.respondError(c, err, "like stats")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctrl *LikeController) respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrPostSlugRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
	case errors.Is(err, service.ErrLikeUserRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, LikeUserHeader+" header is required")
	case errors.Is(err, service.ErrFeatureDisabled):
		apperrors.Forbidden(c, apperrors.AuthzFeatureOff, "Article likes are disabled")
	default:
		middleware.GetLoggerFromContext(c).Error("Like request failed", err, map[string]interface{}{
			"action": action,
		})
		apperrors.RespondWithParsedError(c, err, action)
	}
}

func likeUser(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(LikeUserHeader))
}
