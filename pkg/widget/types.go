package widget

// Comment mirrors a comment in the public list response
type Comment struct {
	ID            uint      `json:"id"`
	Created       int64     `json:"created"`
	PostSlug      string    `json:"postSlug"`
	Name          string    `json:"name"`
	URL           *string   `json:"url"`
	ContentText   string    `json:"contentText"`
	ContentHTML   string    `json:"contentHtml"`
	ParentID      *uint     `json:"parentId"`
	Priority      int       `json:"priority"`
	Likes         int       `json:"likes"`
	Avatar        string    `json:"avatar"`
	IsAdmin       bool      `json:"isAdmin"`
	ReplyToAuthor *string   `json:"replyToAuthor,omitempty"`
	Replies       []Comment `json:"replies"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int   `json:"total"`
	TotalCount int64 `json:"totalCount"`
}

// CommentPage is one page of root comments with their replies
type CommentPage struct {
	Data       []Comment  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// SubmitRequest is the body of POST /api/comments
type SubmitRequest struct {
	PostSlug   string `json:"post_slug"`
	PostTitle  string `json:"post_title,omitempty"`
	PostURL    string `json:"post_url,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	URL        string `json:"url,omitempty"`
	Content    string `json:"content"`
	ParentID   *uint  `json:"parent_id,omitempty"`
	AdminToken string `json:"adminToken,omitempty"`
}

type SubmitResult struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
	Status  string `json:"status"`
}

type LikeStatus struct {
	Liked        bool  `json:"liked"`
	AlreadyLiked bool  `json:"alreadyLiked"`
	TotalLikes   int64 `json:"totalLikes"`
}

type CommentLikeResult struct {
	ID           uint `json:"id"`
	Likes        int  `json:"likes"`
	AlreadyLiked bool `json:"alreadyLiked"`
}

// PublicConfig is the widget-visible subset of the comment settings
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
