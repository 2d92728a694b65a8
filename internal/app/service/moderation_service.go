package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/cwd-comments/cwd-backend/pkg/telegram"
)

const (
	// ApproveCallbackPrefix 승인 버튼 callback_data 접두사
	ApproveCallbackPrefix = "approve:"

	approveAction = "approve"

	MessageApprovedSuffix   = "\n\n✅ Approved"
	MessageCommentApproved  = "Comment approved"
	MessageOnlyApproval     = "Only approval is supported"
	MessageInvalidCommentID = "Invalid comment id"
)

var (
	ErrBotNotConfigured     = errors.New("telegram bot token is not configured")
	ErrInvalidWebhookSecret = errors.New("invalid webhook secret")
)

// ModerationService 텔레그램 봇 승인 처리
type ModerationService interface {
	HandleUpdate(ctx context.Context, secret string, update telegram.Update) error
}

type moderationService struct {
	settings SettingsService
	comments AdminCommentService
	bot      TelegramSender
}

func NewModerationService(settings SettingsService, comments AdminCommentService, bot TelegramSender) ModerationService {
	return &moderationService{
		settings: settings,
		comments: comments,
		bot:      bot,
	}
}

// HandleUpdate 웹훅 시크릿 확인 후 callback_query 처리. 그 외 업데이트는 무시
func (s *moderationService) HandleUpdate(ctx context.Context, secret string, update telegram.Update) error {
	settings, err := s.settings.GetTelegramSettings()
	if err != nil {
		return err
	}
	if settings.BotToken == "" {
		return ErrBotNotConfigured
	}
	if settings.WebhookSecret != "" &&
		subtle.ConstantTimeCompare([]byte(settings.WebhookSecret), []byte(secret)) != 1 {
		return ErrInvalidWebhookSecret
	}

	query := update.CallbackQuery
	if query == nil || query.Data == "" {
		return nil
	}
	token := settings.BotToken

	action, rawID := telegram.ParseCallbackData(query.Data)
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return s.answer(ctx, token, query.ID, MessageInvalidCommentID)
	}
	if action != approveAction {
		return s.answer(ctx, token, query.ID, MessageOnlyApproval)
	}

	if err := s.comments.UpdateStatus(uint(id), model.CommentStatusApproved); err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return s.answer(ctx, token, query.ID, ErrCommentNotFound.Error())
		}
		return err
	}

	logger.Info("Comment approved via telegram", map[string]interface{}{
		"comment_id": id,
	})

	if msg := query.Message; msg != nil {
		if err := s.bot.EditMessageText(ctx, token, msg.Chat.ID, msg.MessageID, msg.Text+MessageApprovedSuffix); err != nil {
			logger.Warn("Failed to edit telegram message", map[string]interface{}{
				"comment_id": id,
				"error":      err.Error(),
			})
		}
	}
	return s.answer(ctx, token, query.ID, MessageCommentApproved)
}

func (s *moderationService) answer(ctx context.Context, token, callbackID, text string) error {
	if err := s.bot.AnswerCallbackQuery(ctx, token, callbackID, text); err != nil {
		logger.Warn("Failed to answer telegram callback", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}
