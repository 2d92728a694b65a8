package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/cwd-comments/cwd-backend/config"
	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/cwd-comments/cwd-backend/pkg/mailer"
	"github.com/cwd-comments/cwd-backend/pkg/telegram"
	"github.com/cwd-comments/cwd-backend/pkg/util"
)

const (
	// 같은 수신자에게 답글 알림을 다시 보내기까지의 최소 간격
	ReplyMailInterval = 60 * time.Second
	// 관리자 알림 전체 최소 간격
	AdminMailInterval = 15 * time.Second

	telegramPreviewLength = 300
)

var ErrMailNotConfigured = errors.New("smtp is not configured")

const defaultReplyTemplate = `<div style="font-family: sans-serif; line-height: 1.6; color: #333;">
  <p>Hi <b>{{.ToName}}</b>,</p>
  <p>{{.ReplyAuthor}} replied to your comment on <b>{{.PostTitle}}</b>:</p>
  <blockquote style="margin: 10px 0; padding: 10px; border-left: 4px solid #e2e8f0; background: #f8fafc;">{{.ParentComment}}</blockquote>
  <p>New reply:</p>
  <blockquote style="margin: 10px 0; padding: 10px; border-left: 4px solid #3b82f6; background: #eff6ff;">{{.ReplyContent}}</blockquote>
  {{if .PostURL}}<p><a href="{{.PostURL}}">View the conversation</a></p>{{end}}
  <hr style="border: none; border-top: 1px solid #eee;">
  <p style="font-size: 12px; color: #999;">Sent automatically by {{.SiteName}}.</p>
</div>`

const defaultAdminTemplate = `<div style="font-family: sans-serif;">
  <p><b>{{.CommentAuthor}}</b> commented on <b>{{.PostTitle}}</b> ({{.Status}}):</p>
  <div style="padding: 15px; border: 1px solid #ddd; border-radius: 8px;">{{.CommentContent}}</div>
  {{if .PostURL}}<p><a href="{{.PostURL}}">Open the post</a></p>{{end}}
</div>`

// ReplyMailData 답글 알림 템플릿 데이터
type ReplyMailData struct {
	SiteName      string
	ToName        string
	PostTitle     string
	PostURL       string
	ParentComment string
	ReplyAuthor   string
	ReplyContent  string
}

// AdminMailData 관리자 알림 템플릿 데이터
type AdminMailData struct {
	SiteName       string
	PostTitle      string
	PostURL        string
	CommentAuthor  string
	CommentContent string
	Status         string
}

// TelegramSender 텔레그램 봇 API 중 사용하는 부분
type TelegramSender interface {
	SendMessage(ctx context.Context, token string, req telegram.SendMessageRequest) error
	EditMessageText(ctx context.Context, token string, chatID, messageID int64, text string) error
	AnswerCallbackQuery(ctx context.Context, token, callbackID, text string) error
}

type NotificationService interface {
	CommentNotifier
	SendTestEmail(ctx context.Context, to string) error
}

type notificationService struct {
	commentRepo  repository.CommentRepository
	emailLogRepo repository.EmailLogRepository
	settings     SettingsService
	mailer       mailer.Mailer
	telegram     TelegramSender
	mailCfg      config.MailConfig
	now          func() time.Time
}

func NewNotificationService(
	commentRepo repository.CommentRepository,
	emailLogRepo repository.EmailLogRepository,
	settings SettingsService,
	m mailer.Mailer,
	tg TelegramSender,
	mailCfg config.MailConfig,
) NotificationService {
	return &notificationService{
		commentRepo:  commentRepo,
		emailLogRepo: emailLogRepo,
		settings:     settings,
		mailer:       m,
		telegram:     tg,
		mailCfg:      mailCfg,
		now:          time.Now,
	}
}

// NotifyNewComment 메일/텔레그램 알림. 실패는 로그만 남김
func (s *notificationService) NotifyNewComment(ctx context.Context, comment model.Comment, postTitle, postURL string) {
	if postTitle == "" {
		postTitle = comment.PostSlug
	}
	if postURL == "" && util.ExtractDomain(comment.PostSlug) != "" {
		postURL = comment.PostSlug
	}

	if err := s.notifyByMail(ctx, comment, postTitle, postURL); err != nil {
		logger.Error("Mail notification failed", err, map[string]interface{}{
			"comment_id": comment.ID,
		})
	}
	if err := s.notifyByTelegram(ctx, comment, postTitle, postURL); err != nil {
		logger.Error("Telegram notification failed", err, map[string]interface{}{
			"comment_id": comment.ID,
		})
	}
}

func (s *notificationService) notifyByMail(ctx context.Context, comment model.Comment, postTitle, postURL string) error {
	notify, err := s.settings.GetEmailNotifySettings()
	if err != nil {
		return err
	}
	if !notify.GlobalEnabled {
		logger.Debug("Mail notification disabled", nil)
		return nil
	}
	if notify.SMTP.Host == "" {
		logger.Debug("Mail notification skipped: smtp host not set", nil)
		return nil
	}

	if !comment.IsRoot() {
		return s.sendReplyMail(ctx, notify, comment, postTitle, postURL)
	}
	return s.sendAdminMail(ctx, notify, comment, postTitle, postURL)
}

// sendReplyMail 부모 댓글 작성자에게 답글 알림 (수신자별 60초 제한)
func (s *notificationService) sendReplyMail(ctx context.Context, notify *model.EmailNotifySettings, comment model.Comment, postTitle, postURL string) error {
	parent, err := s.commentRepo.FindByID(*comment.ParentID)
	if err != nil {
		logger.Warn("Reply notification skipped: parent not found", map[string]interface{}{
			"comment_id": comment.ID,
			"parent_id":  *comment.ParentID,
		})
		return nil
	}
	if strings.EqualFold(parent.Email, comment.Email) || !util.IsValidEmail(parent.Email) {
		return nil
	}

	last, err := s.emailLogRepo.LastSentAt(model.EmailTypeUserReply, parent.Email)
	if err != nil {
		return err
	}
	if last != nil && s.now().Sub(*last) <= ReplyMailInterval {
		logger.Info("Reply notification skipped by rate limit", map[string]interface{}{
			"comment_id": comment.ID,
		})
		return nil
	}

	html, err := renderTemplate(notify.Templates.Reply, defaultReplyTemplate, ReplyMailData{
		SiteName:      s.mailCfg.SiteName,
		ToName:        parent.Name,
		PostTitle:     postTitle,
		PostURL:       postURL,
		ParentComment: parent.ContentText,
		ReplyAuthor:   comment.Name,
		ReplyContent:  comment.ContentText,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("New reply to your comment on %s", s.mailCfg.SiteName)
	if err := s.send(ctx, notify.SMTP, parent.Email, subject, html); err != nil {
		return err
	}

	return s.emailLogRepo.Create(&model.EmailLog{
		Recipient: parent.Email,
		Type:      model.EmailTypeUserReply,
		IPAddress: comment.IPAddress,
		CreatedAt: s.now(),
	})
}

// sendAdminMail 새 루트 댓글 관리자 알림 (전체 15초 제한)
func (s *notificationService) sendAdminMail(ctx context.Context, notify *model.EmailNotifySettings, comment model.Comment, postTitle, postURL string) error {
	recipient, err := s.adminRecipient()
	if err != nil {
		return err
	}
	if recipient == "" {
		logger.Warn("Admin notification skipped: no admin email configured", nil)
		return nil
	}

	last, err := s.emailLogRepo.LastSentAt(model.EmailTypeAdminNotify, "")
	if err != nil {
		return err
	}
	if last != nil && s.now().Sub(*last) <= AdminMailInterval {
		logger.Info("Admin notification skipped by rate limit", map[string]interface{}{
			"comment_id": comment.ID,
		})
		return nil
	}

	html, err := renderTemplate(notify.Templates.Admin, defaultAdminTemplate, AdminMailData{
		SiteName:       s.mailCfg.SiteName,
		PostTitle:      postTitle,
		PostURL:        postURL,
		CommentAuthor:  comment.Name,
		CommentContent: comment.ContentText,
		Status:         comment.Status,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("New comment: %s", postTitle)
	if err := s.send(ctx, notify.SMTP, recipient, subject, html); err != nil {
		return err
	}

	return s.emailLogRepo.Create(&model.EmailLog{
		Recipient: recipient,
		Type:      model.EmailTypeAdminNotify,
		IPAddress: comment.IPAddress,
		CreatedAt: s.now(),
	})
}

// adminRecipient admin_notify_email -> comment_admin_email -> MAIL_ADMIN_EMAIL
func (s *notificationService) adminRecipient() (string, error) {
	notifyEmail, err := s.settings.GetAdminNotifyEmail()
	if err != nil {
		return "", err
	}
	if util.IsValidEmail(notifyEmail) {
		return notifyEmail, nil
	}

	comment, err := s.settings.GetCommentSettings()
	if err != nil {
		return "", err
	}
	if comment.AdminEmail != nil && util.IsValidEmail(*comment.AdminEmail) {
		return *comment.AdminEmail, nil
	}

	if util.IsValidEmail(s.mailCfg.AdminEmail) {
		return s.mailCfg.AdminEmail, nil
	}
	return "", nil
}

func (s *notificationService) send(ctx context.Context, smtp model.SMTPSettings, to, subject, html string) error {
	from := smtp.From
	if from == "" {
		from = s.mailCfg.From
	}
	if from == "" {
		from = smtp.User
	}

	err := s.mailer.Send(ctx, mailer.SMTPConfig{
		Host:     smtp.Host,
		Port:     smtp.Port,
		Username: smtp.User,
		Password: smtp.Pass,
		Secure:   smtp.Secure,
	}, mailer.Message{
		From:    from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	logger.Info("Notification mail sent", map[string]interface{}{
		"subject": subject,
	})
	return nil
}

// notifyByTelegram 승인 대기 댓글이면 승인 버튼 포함
func (s *notificationService) notifyByTelegram(ctx context.Context, comment model.Comment, postTitle, postURL string) error {
	if s.telegram == nil {
		return nil
	}
	tg, err := s.settings.GetTelegramSettings()
	if err != nil {
		return err
	}
	if !tg.NotifyEnabled || tg.BotToken == "" || tg.ChatID == "" {
		return nil
	}

	req := telegram.SendMessageRequest{
		ChatID:                tg.ChatID,
		Text:                  TelegramCommentText(comment, postTitle, postURL),
		DisableWebPagePreview: true,
	}
	if comment.Status != model.CommentStatusApproved {
		req.ReplyMarkup = &telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{{
				{Text: "Approve", CallbackData: fmt.Sprintf("%s%d", ApproveCallbackPrefix, comment.ID)},
			}},
		}
	}

	return s.telegram.SendMessage(ctx, tg.BotToken, req)
}

// TelegramCommentText 텔레그램 알림 본문
func TelegramCommentText(comment model.Comment, postTitle, postURL string) string {
	content := []rune(comment.ContentText)
	preview := string(content)
	if len(content) > telegramPreviewLength {
		preview = string(content[:telegramPreviewLength]) + "…"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💬 New comment #%d on %s\n", comment.ID, postTitle)
	fmt.Fprintf(&b, "%s <%s>\n", comment.Name, comment.Email)
	fmt.Fprintf(&b, "Status: %s\n\n", comment.Status)
	b.WriteString(preview)
	if postURL != "" {
		fmt.Fprintf(&b, "\n\n%s", postURL)
	}
	return b.String()
}

// SendTestEmail 현재 SMTP 설정으로 테스트 메일 발송
func (s *notificationService) SendTestEmail(ctx context.Context, to string) error {
	to = strings.TrimSpace(to)
	if !util.IsValidEmail(to) {
		return ErrInvalidEmail
	}

	notify, err := s.settings.GetEmailNotifySettings()
	if err != nil {
		return err
	}
	if notify.SMTP.Host == "" {
		return ErrMailNotConfigured
	}

	html := fmt.Sprintf("<p>This is a test mail from %s. SMTP settings are working.</p>",
		template.HTMLEscapeString(s.mailCfg.SiteName))
	return s.send(ctx, notify.SMTP, to, fmt.Sprintf("%s test mail", s.mailCfg.SiteName), html)
}

// renderTemplate 사용자 템플릿이 비어 있거나 파싱에 실패하면 기본 템플릿 사용
func renderTemplate(custom, fallback string, data interface{}) (string, error) {
	source := fallback
	if strings.TrimSpace(custom) != "" {
		if _, err := template.New("custom").Parse(custom); err == nil {
			source = custom
		} else {
			logger.Warn("Invalid mail template, using default", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	tpl, err := template.New("mail").Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse mail template: %w", err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}
	return buf.String(), nil
}
