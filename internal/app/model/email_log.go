package model

import "time"

// 메일 로그 타입
const (
	EmailTypeUserReply   = "user-reply"
	EmailTypeAdminNotify = "admin-notify"
)

// EmailLog 메일 발송 기록 (발송 빈도 제한용, append-only)
type EmailLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Recipient string    `gorm:"size:255;not null;index" json:"recipient"`
	Type      string    `gorm:"size:32;not null;index" json:"type"`
	IPAddress *string   `gorm:"size:64" json:"ipAddress"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}
