package model

// Setting 키-값 설정 (행이 없으면 기본값 적용)
type Setting struct {
	Key   string `gorm:"primaryKey;size:128" json:"key"`
	Value string `gorm:"type:text;not null" json:"value"`
}

func (Setting) TableName() string {
	return "settings"
}

// CommentSettings 댓글 설정 (관리자용, adminKey 는 해시)
type CommentSettings struct {
	AdminEmail     *string  `json:"adminEmail"`
	AdminBadge     *string  `json:"adminBadge"`
	AvatarPrefix   *string  `json:"avatarPrefix"`
	AdminEnabled   bool     `json:"adminEnabled"`
	AllowedDomains []string `json:"allowedDomains"`
	RequireReview  bool     `json:"requireReview"`
	BlockedIPs     []string `json:"blockedIps"`
	BlockedEmails  []string `json:"blockedEmails"`
	AdminKey       *string  `json:"adminKey"`
	AdminKeySet    bool     `json:"adminKeySet"`
}

// UpdateCommentSettingsRequest 댓글 설정 부분 수정 (nil 필드는 변경하지 않음)
type UpdateCommentSettingsRequest struct {
	AdminEmail     *string   `json:"adminEmail"`
	AdminBadge     *string   `json:"adminBadge"`
	AvatarPrefix   *string   `json:"avatarPrefix"`
	AdminEnabled   *bool     `json:"adminEnabled"`
	AllowedDomains *[]string `json:"allowedDomains"`
	AdminKey       *string   `json:"adminKey"`
	RequireReview  *bool     `json:"requireReview"`
	BlockedIPs     *[]string `json:"blockedIps"`
	BlockedEmails  *[]string `json:"blockedEmails"`
}

// FeatureSettings 기능 토글 (기본값 true, "0" 일 때만 비활성)
type FeatureSettings struct {
	EnableCommentLike bool `json:"enableCommentLike"`
	EnableArticleLike bool `json:"enableArticleLike"`
}

// UpdateFeatureSettingsRequest 기능 토글 부분 수정
type UpdateFeatureSettingsRequest struct {
	EnableCommentLike *bool `json:"enableCommentLike"`
	EnableArticleLike *bool `json:"enableArticleLike"`
}

// PublicConfig 공개 설정 (해시, 차단 목록 제외)
type PublicConfig struct {
	AdminEmail        *string  `json:"adminEmail"`
	AdminBadge        *string  `json:"adminBadge"`
	AvatarPrefix      *string  `json:"avatarPrefix"`
	AdminEnabled      bool     `json:"adminEnabled"`
	AllowedDomains    []string `json:"allowedDomains"`
	RequireReview     bool     `json:"requireReview"`
	AdminKeySet       bool     `json:"adminKeySet"`
	EnableCommentLike bool     `json:"enableCommentLike"`
	EnableArticleLike bool     `json:"enableArticleLike"`
}

// SMTPSettings SMTP 설정
type SMTPSettings struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	User   string `json:"user"`
	Pass   string `json:"pass"`
	Secure bool   `json:"secure"`
	From   string `json:"from"`
}

// EmailTemplates 메일 템플릿 (html/template)
type EmailTemplates struct {
	Reply string `json:"reply"`
	Admin string `json:"admin"`
}

// EmailNotifySettings 메일 알림 설정
type EmailNotifySettings struct {
	GlobalEnabled bool           `json:"globalEnabled"`
	SMTP          SMTPSettings   `json:"smtp"`
	Templates     EmailTemplates `json:"templates"`
}

// UpdateSMTPSettings SMTP 부분 수정
type UpdateSMTPSettings struct {
	Host   *string `json:"host"`
	Port   *int    `json:"port"`
	User   *string `json:"user"`
	Pass   *string `json:"pass"`
	Secure *bool   `json:"secure"`
	From   *string `json:"from"`
}

// UpdateEmailTemplates 템플릿 부분 수정
type UpdateEmailTemplates struct {
	Reply *string `json:"reply"`
	Admin *string `json:"admin"`
}

// UpdateEmailNotifyRequest 메일 알림 설정 부분 수정
type UpdateEmailNotifyRequest struct {
	GlobalEnabled *bool                 `json:"globalEnabled"`
	SMTP          *UpdateSMTPSettings   `json:"smtp"`
	Templates     *UpdateEmailTemplates `json:"templates"`
}

// TelegramSettings 텔레그램 봇 설정
type TelegramSettings struct {
	BotToken      string `json:"botToken"`
	ChatID        string `json:"chatId"`
	NotifyEnabled bool   `json:"notifyEnabled"`
	WebhookSecret string `json:"webhookSecret"`
}

// UpdateTelegramSettingsRequest 텔레그램 설정 부분 수정
type UpdateTelegramSettingsRequest struct {
	BotToken      *string `json:"botToken"`
	ChatID        *string `json:"chatId"`
	NotifyEnabled *bool   `json:"notifyEnabled"`
	WebhookSecret *string `json:"webhookSecret"`
}

// AdminEmailRequest 관리자 알림 메일 설정
type AdminEmailRequest struct {
	Email string `json:"email"`
}

// BlockIPRequest IP 차단 요청
type BlockIPRequest struct {
	IP string `json:"ip"`
}

// BlockEmailRequest 이메일 차단 요청
type BlockEmailRequest struct {
	Email string `json:"email"`
}

// VerifyAdminRequest 관리자 키 확인 요청
type VerifyAdminRequest struct {
	AdminToken string `json:"adminToken"`
}

// TestEmailRequest 테스트 메일 요청
type TestEmailRequest struct {
	ToEmail string `json:"toEmail"`
}
