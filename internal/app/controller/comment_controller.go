package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/service"
	apperrors "github.com/cwd-comments/cwd-backend/internal/errors"
	"github.com/cwd-comments/cwd-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// LikeUserHeader 위젯이 보내는 익명 사용자 토큰
const LikeUserHeader = "X-CWD-Like-User"

type CommentController struct {
	commentService  service.CommentService
	settingsService service.SettingsService
}

func NewCommentController(commentService service.CommentService, settingsService service.SettingsService) *CommentController {
	return &CommentController{
		commentService:  commentService,
		settingsService: settingsService,
	}
}

// ListComments 승인된 댓글 목록
// GET /api/comments?post_slug=&page=&limit=&nested=&avatar_prefix=
func (ctrl *CommentController) ListComments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var query model.CommentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.Warn("Invalid comment list query", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid query parameters")
		return
	}

	result, err := ctrl.commentService.ListComments(query)
	if err != nil {
		if errors.Is(err, service.ErrPostSlugRequired) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
			return
		}
		log.Error("Failed to list comments", err, map[string]interface{}{
			"post_slug": query.PostSlug,
		})
		apperrors.RespondWithParsedError(c, err, "list comments")
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitComment 댓글 작성
// POST /api/comments
func (ctrl *CommentController) SubmitComment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid comment request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = c.GetHeader("Referer")
	}
	meta := model.SubmissionMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Origin:    origin,
	}

	result, err := ctrl.commentService.SubmitComment(c.Request.Context(), req, meta)
	if err != nil {
		ctrl.respondSubmitError(c, err, req)
		return
	}

	log.Info("Comment submitted", map[string]interface{}{
		"comment_id": result.Comment.ID,
		"post_slug":  result.Comment.PostSlug,
		"status":     result.Comment.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": result.Message,
		"id":      result.Comment.ID,
		"status":  result.Comment.Status,
	})
}

func (ctrl *CommentController) respondSubmitError(c *gin.Context, err error, req model.CreateCommentRequest) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrPostSlugRequired),
		errors.Is(err, service.ErrContentRequired),
		errors.Is(err, service.ErrAuthorRequired),
		errors.Is(err, service.ErrEmailRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
	case errors.Is(err, service.ErrInvalidEmail):
		apperrors.BadRequest(c, apperrors.ValidationInvalidEmail, "Invalid email address")
	case errors.Is(err, service.ErrBlocked):
		log.Warn("Blocked commenter", map[string]interface{}{
			"email": req.Email,
			"ip":    c.ClientIP(),
		})
		apperrors.Forbidden(c, apperrors.AuthzBlocked, "You are not allowed to comment")
	case errors.Is(err, service.ErrDomainNotAllowed):
		apperrors.Forbidden(c, apperrors.AuthzDomain, "Comments are not allowed from this domain")
	case errors.Is(err, service.ErrAdminKeyRequired),
		errors.Is(err, service.ErrAdminKeyInvalid),
		errors.Is(err, service.ErrAdminKeyNotSet):
		apperrors.Forbidden(c, apperrors.AuthAdminKeyInvalid, "Admin verification failed")
	case errors.Is(err, service.ErrRateLimited):
		apperrors.TooManyRequests(c, apperrors.CommentRateLimited, service.MessageRateLimited)
	default:
		log.Error("Failed to submit comment", err, map[string]interface{}{
			"post_slug": req.PostSlug,
		})
		apperrors.RespondWithParsedError(c, err, "submit comment")
	}
}

// VerifyAdmin 관리자 키 확인
// POST /api/verify-admin
func (ctrl *CommentController) VerifyAdmin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.VerifyAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	if err := ctrl.commentService.VerifyAdminKey(req.AdminToken); err != nil {
		switch {
		case errors.Is(err, service.ErrAdminTokenRequired):
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
		case errors.Is(err, service.ErrAdminKeyNotSet):
			apperrors.BadRequest(c, apperrors.AuthAdminKeyNotSet, "Admin key is not configured")
		case errors.Is(err, service.ErrAdminKeyInvalid):
			log.Warn("Admin key verification failed", map[string]interface{}{
				"ip": c.ClientIP(),
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthAdminKeyInvalid, "Invalid admin key")
		default:
			log.Error("Failed to verify admin key", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verified"})
}

// LikeComment 댓글 좋아요
// POST /api/comments/like
func (ctrl *CommentController) LikeComment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.LikeCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "id is required")
		return
	}

	userID := strings.TrimSpace(c.GetHeader(LikeUserHeader))
	result, err := ctrl.commentService.LikeComment(req.ID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFeatureDisabled):
			apperrors.Forbidden(c, apperrors.AuthzFeatureOff, "Comment likes are disabled")
		case errors.Is(err, service.ErrCommentNotFound):
			apperrors.NotFound(c, apperrors.CommentNotFound, "Comment not found")
		default:
			log.Error("Failed to like comment", err, map[string]interface{}{
				"comment_id": req.ID,
			})
			apperrors.RespondWithParsedError(c, err, "like comment")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPublicConfig 위젯용 공개 설정
// GET /api/config/comments
func (ctrl *CommentController) GetPublicConfig(c *gin.Context) {
	cfg, err := ctrl.settingsService.GetPublicConfig()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load public config", err)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, cfg)
}
