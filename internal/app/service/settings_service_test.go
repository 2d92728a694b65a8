package service

import (
	"testing"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/internal/db"
	"github.com/cwd-comments/cwd-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSettingsServiceTest(t *testing.T) (SettingsService, repository.SettingRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	repo := repository.NewSettingRepository(testDB)
	return NewSettingsService(repo), repo
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func TestSettingsService_Defaults(t *testing.T) {
	svc, _ := setupSettingsServiceTest(t)

	comment, err := svc.GetCommentSettings()
	require.NoError(t, err)
	assert.Nil(t, comment.AdminEmail)
	assert.Nil(t, comment.AdminBadge)
	assert.False(t, comment.AdminEnabled)
	assert.False(t, comment.RequireReview)
	assert.Empty(t, comment.AllowedDomains)
	assert.NotNil(t, comment.AllowedDomains)
	assert.False(t, comment.AdminKeySet)

	features, err := svc.GetFeatureSettings()
	require.NoError(t, err)
	assert.True(t, features.EnableCommentLike)
	assert.True(t, features.EnableArticleLike)

	notify, err := svc.GetEmailNotifySettings()
	require.NoError(t, err)
	assert.False(t, notify.GlobalEnabled)
	assert.Equal(t, DefaultSMTPPort, notify.SMTP.Port)
	assert.True(t, notify.SMTP.Secure)
}

func TestSettingsService_DecodeRules(t *testing.T) {
	svc, repo := setupSettingsServiceTest(t)

	require.NoError(t, repo.Upsert(KeyCommentAdminEnabled, "true"))
	require.NoError(t, repo.Upsert(KeyCommentRequireReview, "1"))
	require.NoError(t, repo.Upsert(KeyCommentAllowedDomains, " a.com, ,b.com ,"))
	require.NoError(t, repo.Upsert(KeyFeatureCommentLike, "0"))
	require.NoError(t, repo.Upsert(KeyFeatureArticleLike, "false"))
	require.NoError(t, repo.Upsert(KeySMTPPort, "not-a-number"))

	comment, err := svc.GetCommentSettings()
	require.NoError(t, err)
	assert.False(t, comment.AdminEnabled, "only \"1\" enables a flag")
	assert.True(t, comment.RequireReview)
	assert.Equal(t, []string{"a.com", "b.com"}, comment.AllowedDomains)

	features, err := svc.GetFeatureSettings()
	require.NoError(t, err)
	assert.False(t, features.EnableCommentLike)
	assert.True(t, features.EnableArticleLike, "only \"0\" disables a default-on toggle")

	notify, err := svc.GetEmailNotifySettings()
	require.NoError(t, err)
	assert.Equal(t, DefaultSMTPPort, notify.SMTP.Port)
}

func TestSettingsService_PartialUpdate(t *testing.T) {
	svc, _ := setupSettingsServiceTest(t)

	err := svc.UpdateCommentSettings(model.UpdateCommentSettingsRequest{
		AdminEmail: strPtr("admin@example.com"),
		AdminBadge: strPtr("Author"),
	})
	require.NoError(t, err)

	// 빈 값은 삭제, 나머지 필드는 유지
	err = svc.UpdateCommentSettings(model.UpdateCommentSettingsRequest{
		AdminBadge:   strPtr("   "),
		AdminEnabled: boolPtr(true),
	})
	require.NoError(t, err)

	settings, err := svc.GetCommentSettings()
	require.NoError(t, err)
	assert.Nil(t, settings.AdminBadge)
	require.NotNil(t, settings.AdminEmail)
	assert.Equal(t, "admin@example.com", *settings.AdminEmail)
	assert.True(t, settings.AdminEnabled)
}

func TestSettingsService_InvalidAdminEmail(t *testing.T) {
	svc, _ := setupSettingsServiceTest(t)

	err := svc.UpdateCommentSettings(model.UpdateCommentSettingsRequest{AdminEmail: strPtr("nope")})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	assert.ErrorIs(t, svc.SetAdminNotifyEmail("bad@"), ErrInvalidEmail)
	require.NoError(t, svc.SetAdminNotifyEmail("ops@example.com"))

	email, err := svc.GetAdminNotifyEmail()
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", email)
}

func TestSettingsService_AdminKeyIsHashed(t *testing.T) {
	svc, _ := setupSettingsServiceTest(t)

	require.NoError(t, svc.UpdateCommentSettings(model.UpdateCommentSettingsRequest{AdminKey: strPtr("s3cret")}))

	settings, err := svc.GetCommentSettings()
	require.NoError(t, err)
	assert.True(t, settings.AdminKeySet)
	require.NotNil(t, settings.AdminKey)
	assert.NotEqual(t, "s3cret", *settings.AdminKey)
	assert.True(t, util.VerifyPassword(*settings.AdminKey, "s3cret"))

	public, err := svc.GetPublicConfig()
	require.NoError(t, err)
	assert.True(t, public.AdminKeySet)
	assert.True(t, public.EnableCommentLike)

	require.NoError(t, svc.UpdateCommentSettings(model.UpdateCommentSettingsRequest{AdminKey: strPtr("")}))
	settings, err = svc.GetCommentSettings()
	require.NoError(t, err)
	assert.False(t, settings.AdminKeySet)
}

func TestSettingsService_BlockLists(t *testing.T) {
	svc, _ := setupSettingsServiceTest(t)

	require.NoError(t, svc.BlockIP("10.0.0.1"))
	require.NoError(t, svc.BlockIP("10.0.0.1"))
	require.NoError(t, svc.BlockIP("10.0.0.2"))
	assert.ErrorIs(t, svc.BlockIP(" "), ErrEmptyValue)

	require.NoError(t, svc.BlockEmail("Spam@Example.com"))
	require.NoError(t, svc.BlockEmail("spam@example.com"))
	assert.ErrorIs(t, svc.BlockEmail("invalid"), ErrInvalidEmail)

	settings, err := svc.GetCommentSettings()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, settings.BlockedIPs)
	assert.Equal(t, []string{"Spam@Example.com"}, settings.BlockedEmails)
}

func TestSettingsService_EmailNotifyAndTelegram(t *testing.T) {
	svc, _ := setupSettingsServiceTest(t)

	err := svc.UpdateEmailNotifySettings(model.UpdateEmailNotifyRequest{
		GlobalEnabled: boolPtr(true),
		SMTP: &model.UpdateSMTPSettings{
			Host:   strPtr("smtp.example.com"),
			Port:   intPtr(587),
			Secure: boolPtr(false),
		},
		Templates: &model.UpdateEmailTemplates{Reply: strPtr("<p>{{.ReplyContent}}</p>")},
	})
	require.NoError(t, err)

	notify, err := svc.GetEmailNotifySettings()
	require.NoError(t, err)
	assert.True(t, notify.GlobalEnabled)
	assert.Equal(t, "smtp.example.com", notify.SMTP.Host)
	assert.Equal(t, 587, notify.SMTP.Port)
	assert.False(t, notify.SMTP.Secure)
	assert.Equal(t, "<p>{{.ReplyContent}}</p>", notify.Templates.Reply)
	assert.Empty(t, notify.Templates.Admin)

	err = svc.UpdateTelegramSettings(model.UpdateTelegramSettingsRequest{
		BotToken:      strPtr("123:abc"),
		ChatID:        strPtr("-100"),
		NotifyEnabled: boolPtr(true),
	})
	require.NoError(t, err)

	tg, err := svc.GetTelegramSettings()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", tg.BotToken)
	assert.Equal(t, "-100", tg.ChatID)
	assert.True(t, tg.NotifyEnabled)
	assert.Empty(t, tg.WebhookSecret)
}
