package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/service"
	apperrors "github.com/cwd-comments/cwd-backend/internal/errors"
	"github.com/cwd-comments/cwd-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminCommentController 관리자 댓글 관리
type AdminCommentController struct {
	adminService    service.AdminCommentService
	settingsService service.SettingsService
}

func NewAdminCommentController(adminService service.AdminCommentService, settingsService service.SettingsService) *AdminCommentController {
	return &AdminCommentController{
		adminService:    adminService,
		settingsService: settingsService,
	}
}

// ListComments 전체 댓글 목록 (10개씩)
// GET /admin/comments/list?page=&domain=&status=
func (ctrl *AdminCommentController) ListComments(c *gin.Context) {
	var query model.AdminCommentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid query parameters")
		return
	}

	result, err := ctrl.adminService.ListComments(query)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list admin comments", err)
		apperrors.RespondWithParsedError(c, err, "list comments")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteComment 댓글 삭제
// DELETE /admin/comments/delete?id=
func (ctrl *AdminCommentController) DeleteComment(c *gin.Context) {
	id, ok := commentIDQuery(c)
	if !ok {
		return
	}

	if err := ctrl.adminService.DeleteComment(id); err != nil {
		ctrl.respondError(c, err, "delete comment")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Comment deleted", map[string]interface{}{
		"comment_id": id,
	})
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Comment deleted, id: %d.", id)})
}

// UpdateStatus 댓글 상태 변경
// PUT /admin/comments/status?id=&status=
func (ctrl *AdminCommentController) UpdateStatus(c *gin.Context) {
	id, ok := commentIDQuery(c)
	if !ok {
		return
	}
	status := c.Query("status")

	if err := ctrl.adminService.UpdateStatus(id, status); err != nil {
		ctrl.respondError(c, err, "update status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Comment status updated, id: %d, status: %s.", id, status)})
}

// UpdateComment 댓글 내용 수정
// PUT /admin/comments/update
func (ctrl *AdminCommentController) UpdateComment(c *gin.Context) {
	var req model.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	comment, err := ctrl.adminService.UpdateComment(req)
	if err != nil {
		ctrl.respondError(c, err, "update comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Comment updated, id: %d.", comment.ID),
		"data":    comment,
	})
}

// ExportComments 전체 댓글 내보내기 (format=xlsx 이면 엑셀)
// GET /admin/comments/export?format=json|xlsx
func (ctrl *AdminCommentController) ExportComments(c *gin.Context) {
	stamp := time.Now().UTC().Format("20060102")

	if c.Query("format") == "xlsx" {
		data, err := ctrl.adminService.ExportCommentsXLSX()
		if err != nil {
			ctrl.respondError(c, err, "export comments")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="comments-%s.xlsx"`, stamp))
		c.Data(http.StatusOK, xlsxContentType, data)
		return
	}

	records, err := ctrl.adminService.ExportComments()
	if err != nil {
		ctrl.respondError(c, err, "export comments")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="comments-%s.json"`, stamp))
	c.JSON(http.StatusOK, records)
}

// ImportComments native / Twikoo / Artalk JSON 가져오기 (xlsx 는 내보내기 형식만)
// POST /admin/comments/import
func (ctrl *AdminCommentController) ImportComments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := c.GetRawData()
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Failed to read request body")
		return
	}

	var result *model.ImportResult
	if strings.HasPrefix(c.ContentType(), xlsxContentType) {
		comments, parseErr := service.ReadCommentsXLSX(bytes.NewReader(data), time.Now())
		if parseErr != nil {
			apperrors.BadRequest(c, apperrors.CommentImportFailed, parseErr.Error())
			return
		}
		result, err = ctrl.adminService.ImportParsed(comments)
	} else {
		result, err = ctrl.adminService.ImportComments(data)
	}
	if err != nil {
		if errors.Is(err, service.ErrEmptyImport) || errors.Is(err, service.ErrInvalidImport) {
			log.Warn("Rejected comment import", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.CommentImportFailed, err.Error())
			return
		}
		log.Error("Failed to import comments", err)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.CommentImportFailed, "Import failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Backup 댓글을 S3 에 백업
// POST /admin/comments/backup
func (ctrl *AdminCommentController) Backup(c *gin.Context) {
	result, err := ctrl.adminService.Backup(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrBackupDisabled) {
			apperrors.ServiceUnavailable(c, apperrors.IntegrationNotConfigured, "Backup storage is not configured")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Comment backup failed", err)
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI, "Backup upload failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key": result.Key,
		"url": result.URL,
	})
}

// BlockIP IP 차단 목록에 추가
// POST /admin/comments/block-ip
func (ctrl *AdminCommentController) BlockIP(c *gin.Context) {
	var req model.BlockIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	if err := ctrl.settingsService.BlockIP(req.IP); err != nil {
		ctrl.respondError(c, err, "block ip")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "IP blocked"})
}

// BlockEmail 이메일 차단 목록에 추가
// POST /admin/comments/block-email
func (ctrl *AdminCommentController) BlockEmail(c *gin.Context) {
	var req model.BlockEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	if err := ctrl.settingsService.BlockEmail(req.Email); err != nil {
		ctrl.respondError(c, err, "block email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email blocked"})
}

func (ctrl *AdminCommentController) respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrCommentNotFound):
		apperrors.NotFound(c, apperrors.CommentNotFound, "Comment not found")
	case errors.Is(err, service.ErrInvalidCommentID):
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, err.Error())
	case errors.Is(err, service.ErrStatusRequired),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrContentRequired),
		errors.Is(err, service.ErrEmptyValue):
		apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
	case errors.Is(err, service.ErrInvalidEmail):
		apperrors.BadRequest(c, apperrors.ValidationInvalidEmail, "Invalid email address")
	default:
		middleware.GetLoggerFromContext(c).Error("Admin comment request failed", err, map[string]interface{}{
			"action": action,
		})
		apperrors.RespondWithParsedError(c, err, action)
	}
}

// commentIDQuery ?id= 파싱, 실패 시 400 응답 후 false
func commentIDQuery(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid comment id")
		return 0, false
	}
	return uint(id), true
}
