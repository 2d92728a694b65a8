package model

// 댓글 상태 (저장 시에는 자유 문자열, 아래 값은 관례)
const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
)

// DefaultCommentPriority 기본 우선순위 (1보다 크면 상단 고정)
const DefaultCommentPriority = 1

// Comment 댓글 모델
type Comment struct {
	ID      uint  `gorm:"primarykey" json:"id"`
	Created int64 `gorm:"not null;index" json:"created"` // unix ms

	PostSlug string `gorm:"size:1024;not null;index" json:"postSlug"` // 페이지 식별자

	// 작성자 정보
	Name      string  `gorm:"size:255;not null" json:"name"`
	Email     string  `gorm:"size:255;not null;index" json:"email"`
	URL       *string `gorm:"size:1024" json:"url"`
	IPAddress *string `gorm:"size:64;index" json:"ipAddress"`
	UA        *string `gorm:"type:text" json:"ua"`

	ContentText string `gorm:"type:text;not null" json:"contentText"`
	ContentHTML string `gorm:"type:text;not null" json:"contentHtml"` // sanitize 된 렌더링 결과

	// 대댓글 (직계 부모 ID, null 이면 루트)
	ParentID *uint `gorm:"index" json:"parentId"`

	Status   string `gorm:"size:32;not null;default:approved;index" json:"status"`
	Priority int    `gorm:"not null;default:1" json:"priority"`
	Likes    int    `gorm:"not null;default:0" json:"likes"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsRoot 루트 댓글 여부
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == 0
}

// CommentView 공개 API 응답용 댓글 (이메일, IP 제외)
type CommentView struct {
	ID            uint          `json:"id"`
	Created       int64         `json:"created"`
	PostSlug      string        `json:"postSlug"`
	Name          string        `json:"name"`
	URL           *string       `json:"url"`
	ContentText   string        `json:"contentText"`
	ContentHTML   string        `json:"contentHtml"`
	ParentID      *uint         `json:"parentId"`
	Priority      int           `json:"priority"`
	Likes         int           `json:"likes"`
	Avatar        string        `json:"avatar"`
	IsAdmin       bool          `json:"isAdmin"`
	ReplyToAuthor *string       `json:"replyToAuthor,omitempty"`
	Replies       []CommentView `json:"replies"`
}

// IsRoot 루트 댓글 여부
func (v *CommentView) IsRoot() bool {
	return v.ParentID == nil || *v.ParentID == 0
}

// AdminCommentView 관리자 목록 응답용 댓글
type AdminCommentView struct {
	Comment
	Avatar string `json:"avatar"`
}

// Pagination 페이지네이션 정보
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int   `json:"total"`      // 전체 페이지 수
	TotalCount int64 `json:"totalCount"` // 전체 댓글 수 (대댓글 포함)
}

// CreateCommentRequest 댓글 작성 요청
// author 와 name 은 같은 의미 (위젯은 name 을 보냄)
type CreateCommentRequest struct {
	PostSlug   string `json:"post_slug"`
	Content    string `json:"content"`
	Author     string `json:"author"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	URL        string `json:"url"`
	ParentID   *uint  `json:"parent_id"`
	PostTitle  string `json:"post_title"`
	PostURL    string `json:"post_url"`
	AdminToken string `json:"adminToken"`
}

// AuthorName author 가 비어 있으면 name 사용
func (r *CreateCommentRequest) AuthorName() string {
	if r.Author != "" {
		return r.Author
	}
	return r.Name
}

// SubmissionMeta 요청에서 추출한 부가 정보
type SubmissionMeta struct {
	IP        string
	UserAgent string
	Origin    string // Origin 또는 Referer
}

// CreateCommentResult 댓글 작성 결과
type CreateCommentResult struct {
	Comment *Comment
	Message string
}

// CommentListQuery 공개 댓글 목록 조회 쿼리
type CommentListQuery struct {
	PostSlug     string `form:"post_slug"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
	Nested       string `form:"nested"`
	AvatarPrefix string `form:"avatar_prefix"`
}

// AdminCommentListQuery 관리자 댓글 목록 조회 쿼리
type AdminCommentListQuery struct {
	Page   int    `form:"page"`
	Domain string `form:"domain"`
	Status string `form:"status"`
}

// UpdateCommentRequest 관리자 댓글 수정 요청
// postSlug/post_slug, contentText/content 둘 다 허용
type UpdateCommentRequest struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	URL         *string `json:"url"`
	PostSlug    string  `json:"postSlug"`
	PostSlugAlt string  `json:"post_slug"`
	ContentText string  `json:"contentText"`
	Content     string  `json:"content"`
	Status      string  `json:"status"`
	Priority    *int    `json:"priority"`
}

// Slug postSlug 우선
func (r *UpdateCommentRequest) Slug() string {
	if r.PostSlug != "" {
		return r.PostSlug
	}
	return r.PostSlugAlt
}

// Text content 우선
func (r *UpdateCommentRequest) Text() string {
	if r.Content != "" {
		return r.Content
	}
	return r.ContentText
}

// LikeCommentRequest 댓글 좋아요 요청
type LikeCommentRequest struct {
	ID uint `json:"id" binding:"required"`
}

// LikeCommentResult 댓글 좋아요 결과
type LikeCommentResult struct {
	ID           uint `json:"id"`
	Likes        int  `json:"likes"`
	AlreadyLiked bool `json:"alreadyLiked"`
}
