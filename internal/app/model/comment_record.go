package model

// CommentRecord 내보내기/가져오기용 댓글 레코드 (snake_case, 테이블 컬럼과 동일)
type CommentRecord struct {
	ID          uint    `json:"id"`
	Created     int64   `json:"created"`
	PostSlug    string  `json:"post_slug"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	URL         *string `json:"url"`
	IPAddress   *string `json:"ip_address"`
	UA          *string `json:"ua"`
	ContentText string  `json:"content_text"`
	ContentHTML string  `json:"content_html"`
	ParentID    *uint   `json:"parent_id"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	Likes       int     `json:"likes"`
}

// ToRecord 댓글을 내보내기 레코드로 변환
func (c *Comment) ToRecord() CommentRecord {
	return CommentRecord{
		ID:          c.ID,
		Created:     c.Created,
		PostSlug:    c.PostSlug,
		Name:        c.Name,
		Email:       c.Email,
		URL:         c.URL,
		IPAddress:   c.IPAddress,
		UA:          c.UA,
		ContentText: c.ContentText,
		ContentHTML: c.ContentHTML,
		ParentID:    c.ParentID,
		Status:      c.Status,
		Priority:    c.Priority,
		Likes:       c.Likes,
	}
}

// ToComment 레코드를 댓글 모델로 변환
func (r *CommentRecord) ToComment() *Comment {
	return &Comment{
		ID:          r.ID,
		Created:     r.Created,
		PostSlug:    r.PostSlug,
		Name:        r.Name,
		Email:       r.Email,
		URL:         r.URL,
		IPAddress:   r.IPAddress,
		UA:          r.UA,
		ContentText: r.ContentText,
		ContentHTML: r.ContentHTML,
		ParentID:    r.ParentID,
		Status:      r.Status,
		Priority:    r.Priority,
		Likes:       r.Likes,
	}
}

// ImportResult 가져오기 결과
type ImportResult struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}
