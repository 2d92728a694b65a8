package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/cwd-comments/cwd-backend/pkg/util"
)

// 설정 키
const (
	KeyCommentAdminEmail     = "comment_admin_email"
	KeyCommentAdminBadge     = "comment_admin_badge"
	KeyCommentAvatarPrefix   = "comment_avatar_prefix"
	KeyCommentAdminEnabled   = "comment_admin_enabled"
	KeyCommentAllowedDomains = "comment_allowed_domains"
	KeyCommentAdminKeyHash   = "comment_admin_key_hash"
	KeyCommentRequireReview  = "comment_require_review"
	KeyCommentBlockedIPs     = "comment_blocked_ips"
	KeyCommentBlockedEmails  = "comment_blocked_emails"

	KeyFeatureCommentLike = "comment_feature_comment_like"
	KeyFeatureArticleLike = "comment_feature_article_like"

	KeyEmailGlobalEnabled = "email_notify_global_enabled"
	KeySMTPHost           = "email_smtp_host"
	KeySMTPPort           = "email_smtp_port"
	KeySMTPUser           = "email_smtp_user"
	KeySMTPPass           = "email_smtp_pass"
	KeySMTPSecure         = "email_smtp_secure"
	KeySMTPFrom           = "email_smtp_from"
	KeyTemplateReply      = "email_template_reply"
	KeyTemplateAdmin      = "email_template_admin"

	KeyAdminNotifyEmail = "admin_notify_email"

	KeyTelegramBotToken      = "telegram_bot_token"
	KeyTelegramChatID        = "telegram_chat_id"
	KeyTelegramNotifyEnabled = "telegram_notify_enabled"
	KeyTelegramWebhookSecret = "telegram_webhook_secret"
)

// DefaultSMTPPort implicit TLS
const DefaultSMTPPort = 465

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrEmptyValue   = errors.New("value is required")
)

var (
	commentSettingKeys = []string{
		KeyCommentAdminEmail, KeyCommentAdminBadge, KeyCommentAvatarPrefix,
		KeyCommentAdminEnabled, KeyCommentAllowedDomains, KeyCommentAdminKeyHash,
		KeyCommentRequireReview, KeyCommentBlockedIPs, KeyCommentBlockedEmails,
	}
	featureSettingKeys     = []string{KeyFeatureCommentLike, KeyFeatureArticleLike}
	emailNotifySettingKeys = []string{
		KeyEmailGlobalEnabled, KeySMTPHost, KeySMTPPort, KeySMTPUser, KeySMTPPass,
		KeySMTPSecure, KeySMTPFrom, KeyTemplateReply, KeyTemplateAdmin,
	}
	telegramSettingKeys = []string{
		KeyTelegramBotToken, KeyTelegramChatID, KeyTelegramNotifyEnabled, KeyTelegramWebhookSecret,
	}
)

type SettingsService interface {
	GetCommentSettings() (*model.CommentSettings, error)
	UpdateCommentSettings(req model.UpdateCommentSettingsRequest) error
	GetFeatureSettings() (*model.FeatureSettings, error)
	UpdateFeatureSettings(req model.UpdateFeatureSettingsRequest) error
	GetPublicConfig() (*model.PublicConfig, error)
	GetAdminNotifyEmail() (string, error)
	SetAdminNotifyEmail(email string) error
	GetEmailNotifySettings() (*model.EmailNotifySettings, error)
	UpdateEmailNotifySettings(req model.UpdateEmailNotifyRequest) error
	GetTelegramSettings() (*model.TelegramSettings, error)
	UpdateTelegramSettings(req model.UpdateTelegramSettingsRequest) error
	BlockIP(ip string) error
	BlockEmail(email string) error
}

type settingsService struct {
	settingRepo repository.SettingRepository
}

func NewSettingsService(settingRepo repository.SettingRepository) SettingsService {
	return &settingsService{settingRepo: settingRepo}
}

// ==================== 디코딩 규칙 ====================

// optionalString 행이 없거나 빈 값이면 nil
func optionalString(values map[string]string, key string) *string {
	v, ok := values[key]
	if !ok || v == "" {
		return nil
	}
	return &v
}

// flagOn "1" 일 때만 true (기본 false)
func flagOn(values map[string]string, key string) bool {
	return values[key] == "1"
}

// flagNotOff "0" 일 때만 false (기본 true)
func flagNotOff(values map[string]string, key string) bool {
	v, ok := values[key]
	return !ok || v != "0"
}

// splitList 콤마 구분, 공백 제거, 빈 항목 제외
func splitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ==================== 쓰기 ====================

// write 트림 후 비어 있으면 삭제, 아니면 upsert
func (s *settingsService) write(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.settingRepo.Delete(key)
	}
	return s.settingRepo.Upsert(key, value)
}

func (s *settingsService) writeList(key string, items []string) error {
	return s.write(key, strings.Join(splitList(strings.Join(items, ",")), ","))
}

// ==================== 댓글 설정 ====================

// GetCommentSettings 댓글 설정 조회 (관리자용)
func (s *settingsService) GetCommentSettings() (*model.CommentSettings, error) {
	values, err := s.settingRepo.GetMany(commentSettingKeys)
	if err != nil {
		return nil, fmt.Errorf("load comment settings: %w", err)
	}

	keyHash := optionalString(values, KeyCommentAdminKeyHash)
	return &model.CommentSettings{
		AdminEmail:     optionalString(values, KeyCommentAdminEmail),
		AdminBadge:     optionalString(values, KeyCommentAdminBadge),
		AvatarPrefix:   optionalString(values, KeyCommentAvatarPrefix),
		AdminEnabled:   flagOn(values, KeyCommentAdminEnabled),
		AllowedDomains: splitList(values[KeyCommentAllowedDomains]),
		RequireReview:  flagOn(values, KeyCommentRequireReview),
		BlockedIPs:     splitList(values[KeyCommentBlockedIPs]),
		BlockedEmails:  splitList(values[KeyCommentBlockedEmails]),
		AdminKey:       keyHash,
		AdminKeySet:    keyHash != nil,
	}, nil
}

// UpdateCommentSettings 요청에 포함된 필드만 반영
func (s *settingsService) UpdateCommentSettings(req model.UpdateCommentSettingsRequest) error {
	if req.AdminEmail != nil {
		email := strings.TrimSpace(*req.AdminEmail)
		if email != "" && !util.IsValidEmail(email) {
			return ErrInvalidEmail
		}
		if err := s.write(KeyCommentAdminEmail, email); err != nil {
			return err
		}
	}
	if req.AdminBadge != nil {
		if err := s.write(KeyCommentAdminBadge, *req.AdminBadge); err != nil {
			return err
		}
	}
	if req.AvatarPrefix != nil {
		if err := s.write(KeyCommentAvatarPrefix, *req.AvatarPrefix); err != nil {
			return err
		}
	}
	if req.AdminEnabled != nil {
		if err := s.write(KeyCommentAdminEnabled, boolValue(*req.AdminEnabled)); err != nil {
			return err
		}
	}
	if req.AllowedDomains != nil {
		if err := s.writeList(KeyCommentAllowedDomains, *req.AllowedDomains); err != nil {
			return err
		}
	}
	if req.AdminKey != nil {
		key := strings.TrimSpace(*req.AdminKey)
		if key == "" {
			if err := s.settingRepo.Delete(KeyCommentAdminKeyHash); err != nil {
				return err
			}
		} else {
			hash, err := util.HashPassword(key)
			if err != nil {
				return fmt.Errorf("hash admin key: %w", err)
			}
			if err := s.settingRepo.Upsert(KeyCommentAdminKeyHash, hash); err != nil {
				return err
			}
		}
	}
	if req.RequireReview != nil {
		if err := s.write(KeyCommentRequireReview, boolValue(*req.RequireReview)); err != nil {
			return err
		}
	}
	if req.BlockedIPs != nil {
		if err := s.writeList(KeyCommentBlockedIPs, *req.BlockedIPs); err != nil {
			return err
		}
	}
	if req.BlockedEmails != nil {
		if err := s.writeList(KeyCommentBlockedEmails, *req.BlockedEmails); err != nil {
			return err
		}
	}

	logger.Info("Comment settings updated", nil)
	return nil
}

// ==================== 기능 토글 ====================

func (s *settingsService) GetFeatureSettings() (*model.FeatureSettings, error) {
	values, err := s.settingRepo.GetMany(featureSettingKeys)
	if err != nil {
		return nil, fmt.Errorf("load feature settings: %w", err)
	}
	return &model.FeatureSettings{
		EnableCommentLike: flagNotOff(values, KeyFeatureCommentLike),
		EnableArticleLike: flagNotOff(values, KeyFeatureArticleLike),
	}, nil
}

func (s *settingsService) UpdateFeatureSettings(req model.UpdateFeatureSettingsRequest) error {
	if req.EnableCommentLike != nil {
		if err := s.write(KeyFeatureCommentLike, boolValue(*req.EnableCommentLike)); err != nil {
			return err
		}
	}
	if req.EnableArticleLike != nil {
		if err := s.write(KeyFeatureArticleLike, boolValue(*req.EnableArticleLike)); err != nil {
			return err
		}
	}
	return nil
}

// GetPublicConfig 위젯용 공개 설정 (키 해시, 차단 목록 제외)
func (s *settingsService) GetPublicConfig() (*model.PublicConfig, error) {
	comment, err := s.GetCommentSettings()
	if err != nil {
		return nil, err
	}
	features, err := s.GetFeatureSettings()
	if err != nil {
		return nil, err
	}

	return &model.PublicConfig{
		AdminEmail:        comment.AdminEmail,
		AdminBadge:        comment.AdminBadge,
		AvatarPrefix:      comment.AvatarPrefix,
		AdminEnabled:      comment.AdminEnabled,
		AllowedDomains:    comment.AllowedDomains,
		RequireReview:     comment.RequireReview,
		AdminKeySet:       comment.AdminKeySet,
		EnableCommentLike: features.EnableCommentLike,
		EnableArticleLike: features.EnableArticleLike,
	}, nil
}

// ==================== 관리자 알림 메일 ====================

func (s *settingsService) GetAdminNotifyEmail() (string, error) {
	values, err := s.settingRepo.GetMany([]string{KeyAdminNotifyEmail})
	if err != nil {
		return "", fmt.Errorf("load admin notify email: %w", err)
	}
	return values[KeyAdminNotifyEmail], nil
}

func (s *settingsService) SetAdminNotifyEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !util.IsValidEmail(email) {
		return ErrInvalidEmail
	}
	return s.settingRepo.Upsert(KeyAdminNotifyEmail, email)
}

// ==================== 메일 알림 ====================

func (s *settingsService) GetEmailNotifySettings() (*model.EmailNotifySettings, error) {
	values, err := s.settingRepo.GetMany(emailNotifySettingKeys)
	if err != nil {
		return nil, fmt.Errorf("load email notify settings: %w", err)
	}

	port := DefaultSMTPPort
	if raw, ok := values[KeySMTPPort]; ok {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			port = p
		}
	}

	return &model.EmailNotifySettings{
		GlobalEnabled: flagOn(values, KeyEmailGlobalEnabled),
		SMTP: model.SMTPSettings{
			Host:   values[KeySMTPHost],
			Port:   port,
			User:   values[KeySMTPUser],
			Pass:   values[KeySMTPPass],
			Secure: flagNotOff(values, KeySMTPSecure),
			From:   values[KeySMTPFrom],
		},
		Templates: model.EmailTemplates{
			Reply: values[KeyTemplateReply],
			Admin: values[KeyTemplateAdmin],
		},
	}, nil
}

func (s *settingsService) UpdateEmailNotifySettings(req model.UpdateEmailNotifyRequest) error {
	if req.GlobalEnabled != nil {
		if err := s.write(KeyEmailGlobalEnabled, boolValue(*req.GlobalEnabled)); err != nil {
			return err
		}
	}

	if smtp := req.SMTP; smtp != nil {
		writes := map[string]*string{
			KeySMTPHost: smtp.Host,
			KeySMTPUser: smtp.User,
			KeySMTPPass: smtp.Pass,
			KeySMTPFrom: smtp.From,
		}
		for key, value := range writes {
			if value == nil {
				continue
			}
			if err := s.write(key, *value); err != nil {
				return err
			}
		}
		if smtp.Port != nil {
			port := ""
			if *smtp.Port > 0 {
				port = strconv.Itoa(*smtp.Port)
			}
			if err := s.write(KeySMTPPort, port); err != nil {
				return err
			}
		}
		if smtp.Secure != nil {
			if err := s.write(KeySMTPSecure, boolValue(*smtp.Secure)); err != nil {
				return err
			}
		}
	}

	if tpl := req.Templates; tpl != nil {
		if tpl.Reply != nil {
			if err := s.write(KeyTemplateReply, *tpl.Reply); err != nil {
				return err
			}
		}
		if tpl.Admin != nil {
			if err := s.write(KeyTemplateAdmin, *tpl.Admin); err != nil {
				return err
			}
		}
	}

	logger.Info("Email notify settings updated", nil)
	return nil
}

// ==================== 텔레그램 ====================

func (s *settingsService) GetTelegramSettings() (*model.TelegramSettings, error) {
	values, err := s.settingRepo.GetMany(telegramSettingKeys)
	if err != nil {
		return nil, fmt.Errorf("load telegram settings: %w", err)
	}
	return &model.TelegramSettings{
		BotToken:      values[KeyTelegramBotToken],
		ChatID:        values[KeyTelegramChatID],
		NotifyEnabled: flagOn(values, KeyTelegramNotifyEnabled),
		WebhookSecret: values[KeyTelegramWebhookSecret],
	}, nil
}

func (s *settingsService) UpdateTelegramSettings(req model.UpdateTelegramSettingsRequest) error {
	writes := map[string]*string{
		KeyTelegramBotToken:      req.BotToken,
		KeyTelegramChatID:        req.ChatID,
		KeyTelegramWebhookSecret: req.WebhookSecret,
	}
	for key, value := range writes {
		if value == nil {
			continue
		}
		if err := s.write(key, *value); err != nil {
			return err
		}
	}
	if req.NotifyEnabled != nil {
		if err := s.write(KeyTelegramNotifyEnabled, boolValue(*req.NotifyEnabled)); err != nil {
			return err
		}
	}
	return nil
}

// ==================== 차단 목록 ====================

// BlockIP 차단 목록에 없으면 추가
func (s *settingsService) BlockIP(ip string) error {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ErrEmptyValue
	}
	return s.appendToList(KeyCommentBlockedIPs, ip, false)
}

// BlockEmail 차단 목록에 없으면 추가 (대소문자 무시)
func (s *settingsService) BlockEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyValue
	}
	if !util.IsValidEmail(email) {
		return ErrInvalidEmail
	}
	return s.appendToList(KeyCommentBlockedEmails, email, true)
}

func (s *settingsService) appendToList(key, item string, foldCase bool) error {
	values, err := s.settingRepo.GetMany([]string{key})
	if err != nil {
		return err
	}

	items := splitList(values[key])
	for _, existing := range items {
		if existing == item || (foldCase && strings.EqualFold(existing, item)) {
			return nil
		}
	}

	logger.Info("Adding entry to block list", map[string]interface{}{
		"key": key,
	})
	return s.writeList(key, append(items, item))
}
