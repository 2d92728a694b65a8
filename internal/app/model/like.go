package model

// PageLike 페이지 좋아요 (page_slug + user_id 유니크)
type PageLike struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	PageSlug  string `gorm:"size:1024;not null;uniqueIndex:idx_page_user_like" json:"pageSlug"`
	UserID    string `gorm:"size:128;not null;uniqueIndex:idx_page_user_like" json:"userId"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
}

func (PageLike) TableName() string {
	return "likes"
}

// CommentLike 댓글 좋아요 (토큰이 있을 때만 기록)
type CommentLike struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CommentID uint   `gorm:"not null;uniqueIndex:idx_comment_user_like" json:"commentId"`
	UserID    string `gorm:"size:128;not null;uniqueIndex:idx_comment_user_like" json:"userId"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}

// PageLikeRequest 페이지 좋아요 요청
type PageLikeRequest struct {
	PostSlug  string `json:"postSlug"`
	PostTitle string `json:"postTitle"`
	PostURL   string `json:"postUrl"`
}

// LikeStatus 페이지 좋아요 상태
type LikeStatus struct {
	Liked        bool  `json:"liked"`
	AlreadyLiked bool  `json:"alreadyLiked"`
	TotalLikes   int64 `json:"totalLikes"`
}

// LikeStatsItem 페이지별 좋아요 집계
type LikeStatsItem struct {
	PageSlug  string  `json:"pageSlug"`
	PageTitle *string `json:"pageTitle"`
	PageURL   *string `json:"pageUrl"`
	Likes     int64   `json:"likes"`
}
