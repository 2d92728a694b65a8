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

// SettingsController 관리자 설정 화면
type SettingsController struct {
	settingsService     service.SettingsService
	notificationService service.NotificationService
}

func NewSettingsController(settingsService service.SettingsService, notificationService service.NotificationService) *SettingsController {
	return &SettingsController{
		settingsService:     settingsService,
		notificationService: notificationService,
	}
}

// ==================== 댓글 설정 ====================

// GetCommentSettings GET /admin/settings/comments
func (ctrl *SettingsController) GetCommentSettings(c *gin.Context) {
	settings, err := ctrl.settingsService.GetCommentSettings()
	if err != nil {
		ctrl.respondError(c, err, "get comment settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateCommentSettings PUT /admin/settings/comments
func (ctrl *SettingsController) UpdateCommentSettings(c *gin.Context) {
	var req model.UpdateCommentSettingsRequest
	if !bindSettings(c, &req) {
		return
	}
	if err := ctrl.settingsService.UpdateCommentSettings(req); err != nil {
		ctrl.respondError(c, err, "update comment settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved"})
}

// ==================== 기능 토글 ====================

// GetFeatureSettings GET /admin/settings/features
func (ctrl *SettingsController) GetFeatureSettings(c *gin.Context) {
	settings, err := ctrl.settingsService.GetFeatureSettings()
	if err != nil {
		ctrl.respondError(c, err, "get feature settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateFeatureSettings PUT /admin/settings/features
func (ctrl *SettingsController) UpdateFeatureSettings(c *gin.Context) {
	var req model.UpdateFeatureSettingsRequest
	if !bindSettings(c, &req) {
		return
	}
	if err := ctrl.settingsService.UpdateFeatureSettings(req); err != nil {
		ctrl.respondError(c, err, "update feature settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved"})
}

// ==================== 관리자 알림 메일 ====================

// GetAdminEmail GET /admin/settings/email
func (ctrl *SettingsController) GetAdminEmail(c *gin.Context) {
	email, err := ctrl.settingsService.GetAdminNotifyEmail()
	if err != nil {
		ctrl.respondError(c, err, "get admin email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": email})
}

// UpdateAdminEmail PUT /admin/settings/email
func (ctrl *SettingsController) UpdateAdminEmail(c *gin.Context) {
	var req model.AdminEmailRequest
	if !bindSettings(c, &req) {
		return
	}
	if err := ctrl.settingsService.SetAdminNotifyEmail(req.Email); err != nil {
		ctrl.respondError(c, err, "update admin email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved"})
}

// ==================== 메일 알림 ====================

// GetEmailNotify GET /admin/settings/email-notify
func (ctrl *SettingsController) GetEmailNotify(c *gin.Context) {
	settings, err := ctrl.settingsService.GetEmailNotifySettings()
	if err != nil {
		ctrl.respondError(c, err, "get email notify settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateEmailNotify PUT /admin/settings/email-notify
func (ctrl *SettingsController) UpdateEmailNotify(c *gin.Context) {
	var req model.UpdateEmailNotifyRequest
	if !bindSettings(c, &req) {
		return
	}
	if err := ctrl.settingsService.UpdateEmailNotifySettings(req); err != nil {
		ctrl.respondError(c, err, "update email notify settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved"})
}

// SendTestEmail POST /admin/settings/email-test
func (ctrl *SettingsController) SendTestEmail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.TestEmailRequest
	if !bindSettings(c, &req) {
		return
	}

	if err := ctrl.notificationService.SendTestEmail(c.Request.Context(), req.ToEmail); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			apperrors.BadRequest(c, apperrors.ValidationInvalidEmail, "Invalid email address")
		case errors.Is(err, service.ErrMailNotConfigured):
			apperrors.BadRequest(c, apperrors.MailNotConfigured, "SMTP is not configured")
		default:
			log.Error("Test email failed", err, map[string]interface{}{
				"to": req.ToEmail,
			})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.MailSendFailed, "Failed to send test email: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test email sent"})
}

// ==================== 텔레그램 ====================

// GetTelegram GET /admin/settings/telegram
func (ctrl *SettingsController) GetTelegram(c *gin.Context) {
	settings, err := ctrl.settingsService.GetTelegramSettings()
	if err != nil {
		ctrl.respondError(c, err, "get telegram settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateTelegram PUT /admin/settings/telegram
func (ctrl *SettingsController) UpdateTelegram(c *gin.Context) {
	var req model.UpdateTelegramSettingsRequest
	if !bindSettings(c, &req) {
		return
	}
	if err := ctrl.settingsService.UpdateTelegramSettings(req); err != nil {
		ctrl.respondError(c, err, "update telegram settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved"})
}

func (ctrl *SettingsController) respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		apperrors.BadRequest(c, apperrors.ValidationInvalidEmail, "Invalid email address")
	case errors.Is(err, service.ErrEmptyValue):
		apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
	default:
		middleware.GetLoggerFromContext(c).Error("Settings request failed", err, map[string]interface{}{
			"action": action,
		})
		apperrors.InternalError(c, "")
	}
}

func bindSettings(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid settings request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return false
	}
	return true
}
