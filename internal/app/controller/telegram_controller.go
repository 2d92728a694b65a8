package controller

import (
	"errors"
	"net/http"

	"github.com/cwd-comments/cwd-backend/internal/app/service"
	apperrors "github.com/cwd-comments/cwd-backend/internal/errors"
	"github.com/cwd-comments/cwd-backend/internal/middleware"
	"github.com/cwd-comments/cwd-backend/pkg/telegram"
	"github.com/gin-gonic/gin"
)

// TelegramSecretHeader 웹훅 등록 시 지정한 secret_token
const TelegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type TelegramController struct {
	moderationService service.ModerationService
}

func NewTelegramController(moderationService service.ModerationService) *TelegramController {
	return &TelegramController{
		moderationService: moderationService,
	}
}

// Webhook 텔레그램 봇 업데이트 수신 (승인 버튼)
// POST /api/telegram/webhook
func (ctrl *TelegramController) Webhook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid update payload")
		return
	}

	err := ctrl.moderationService.HandleUpdate(c.Request.Context(), c.GetHeader(TelegramSecretHeader), update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBotNotConfigured):
			apperrors.BadRequest(c, apperrors.IntegrationNotConfigured, "Telegram bot is not configured")
		case errors.Is(err, service.ErrInvalidWebhookSecret):
			log.Warn("Telegram webhook with invalid secret", map[string]interface{}{
				"ip": c.ClientIP(),
			})
			apperrors.Unauthorized(c, "Invalid webhook secret")
		default:
			log.Error("Telegram update failed", err, map[string]interface{}{
				"update_id": update.UpdateID,
			})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI, "Telegram request failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
