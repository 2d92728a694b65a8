package model

import "time"

// PageStat 페이지별 누적 방문 통계
type PageStat struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PostSlug    string    `gorm:"size:1024;not null;uniqueIndex" json:"postSlug"`
	PostTitle   *string   `gorm:"size:1024" json:"postTitle"`
	PostURL     *string   `gorm:"size:1024" json:"postUrl"`
	PV          int64     `gorm:"column:pv;not null;default:0" json:"pv"`
	LastVisitAt *int64    `json:"lastVisitAt"` // unix ms
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (PageStat) TableName() string {
	return "page_stats"
}

// PageVisitDaily 일별/도메인별 방문 수
type PageVisitDaily struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Date      string    `gorm:"size:10;not null;uniqueIndex:idx_visit_daily_date_domain" json:"date"` // YYYY-MM-DD
	Domain    string    `gorm:"size:255;not null;default:'';uniqueIndex:idx_visit_daily_date_domain" json:"domain"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PageVisitDaily) TableName() string {
	return "page_visit_daily"
}

// TrackVisitRequest 방문 기록 요청
type TrackVisitRequest struct {
	PostSlug  string `json:"postSlug"`
	PostTitle string `json:"postTitle"`
	PostURL   string `json:"postUrl"`
}

// DailyCount 일별 합계
type DailyCount struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

// VisitOverview 방문 통계 요약
type VisitOverview struct {
	TotalPV    int64        `json:"totalPv"`
	TotalPages int64        `json:"totalPages"`
	TodayPV    int64        `json:"todayPv"`
	WeekPV     int64        `json:"weekPv"`
	MonthPV    int64        `json:"monthPv"`
	Last30Days []DailyCount `json:"last30Days"`
}

// VisitPageItem 페이지별 방문 항목
type VisitPageItem struct {
	PostSlug    string  `json:"postSlug"`
	PostTitle   *string `json:"postTitle"`
	PostURL     *string `json:"postUrl"`
	PV          int64   `json:"pv"`
	LastVisitAt *int64  `json:"lastVisitAt"`
}

// StatusSummary 상태별 댓글 수
type StatusSummary struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}

// DomainSummary 도메인별 댓글 수
type DomainSummary struct {
	Domain string `json:"domain"`
	StatusSummary
}

// CommentStats 댓글 통계
type CommentStats struct {
	Summary   StatusSummary   `json:"summary"`
	Domains   []DomainSummary `json:"domains"`
	Last7Days []DailyCount    `json:"last7Days"`
}

// StatsBundle 통계 내보내기/가져오기 묶음
type StatsBundle struct {
	PageStats      []PageStat       `json:"pageStats"`
	PageVisitDaily []PageVisitDaily `json:"pageVisitDaily"`
	Likes          []PageLike       `json:"likes"`
}
