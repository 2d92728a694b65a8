package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBot struct {
	answers []string
	edits   []string
}

func (b *recordingBot) SendMessage(ctx context.Context, token string, req telegram.SendMessageRequest) error {
	return nil
}

func (b *recordingBot) EditMessageText(ctx context.Context, token string, chatID, messageID int64, text string) error {
	b.edits = append(b.edits, text)
	return nil
}

func (b *recordingBot) AnswerCallbackQuery(ctx context.Context, token, callbackID, text string) error {
	b.answers = append(b.answers, text)
	return nil
}

func setupModerationTest(t *testing.T) (*testRepos, ModerationService, *recordingBot) {
	repos := setupRepos(t)
	bot := &recordingBot{}
	admin := NewAdminCommentService(repos.comments, repos.settings, nil, nil)
	return repos, NewModerationService(repos.settings, admin, bot), bot
}

func callbackUpdate(data string) telegram.Update {
	return telegram.Update{
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb",
			Data: data,
			Message: &telegram.Message{
				MessageID: 10,
				Chat:      telegram.Chat{ID: 100},
				Text:      "New comment",
			},
		},
	}
}

func TestModerationService_NotConfigured(t *testing.T) {
	_, svc, _ := setupModerationTest(t)

	err := svc.HandleUpdate(context.Background(), "", callbackUpdate("approve:1"))
	assert.ErrorIs(t, err, ErrBotNotConfigured)
}

func TestModerationService_Approve(t *testing.T) {
	repos, svc, bot := setupModerationTest(t)
	require.NoError(t, repos.settings.UpdateTelegramSettings(model.UpdateTelegramSettingsRequest{
		BotToken:      strPtr("BOT"),
		WebhookSecret: strPtr("hook-secret"),
	}))

	c := createComment(t, repos, "frank", nil)
	require.NoError(t, repos.comments.UpdateStatus(c.ID, model.CommentStatusPending))

	err := svc.HandleUpdate(context.Background(), "wrong", callbackUpdate(fmt.Sprintf("approve:%d", c.ID)))
	assert.ErrorIs(t, err, ErrInvalidWebhookSecret)

	err = svc.HandleUpdate(context.Background(), "hook-secret", callbackUpdate(fmt.Sprintf("approve:%d", c.ID)))
	require.NoError(t, err)

	stored, err := repos.comments.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CommentStatusApproved, stored.Status)
	assert.Equal(t, []string{"New comment" + MessageApprovedSuffix}, bot.edits)
	assert.Equal(t, []string{MessageCommentApproved}, bot.answers)
}

func TestModerationService_OtherCallbacks(t *testing.T) {
	repos, svc, bot := setupModerationTest(t)
	require.NoError(t, repos.settings.UpdateTelegramSettings(model.UpdateTelegramSettingsRequest{
		BotToken: strPtr("BOT"),
	}))

	tests := []struct {
		name   string
		data   string
		answer string
	}{
		{"Reject is unsupported", "reject:1", MessageOnlyApproval},
		{"Non numeric id", "approve:abc", MessageInvalidCommentID},
		{"Missing id", "approve", MessageInvalidCommentID},
		{"Unknown comment", "approve:999", ErrCommentNotFound.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot.answers = nil
			require.NoError(t, svc.HandleUpdate(context.Background(), "", callbackUpdate(tt.data)))
			assert.Equal(t, []string{tt.answer}, bot.answers)
		})
	}

	// callback_query 가 없는 업데이트는 무시
	bot.answers = nil
	require.NoError(t, svc.HandleUpdate(context.Background(), "", telegram.Update{UpdateID: 1}))
	assert.Empty(t, bot.answers)
	assert.Empty(t, bot.edits)
}
