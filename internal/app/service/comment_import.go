package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/pkg/util"
)

// 가져오기 형식
const (
	ImportFormatNative = "native"
	ImportFormatTwikoo = "twikoo"
	ImportFormatArtalk = "artalk"
)

const defaultImportName = "Anonymous"

var (
	ErrEmptyImport   = errors.New("import data is empty")
	ErrInvalidImport = errors.New("invalid import json")
)

type importItem map[string]interface{}

// DetectImportFormat 레코드 단위 형식 판별
// Artalk: page_key + content, Twikoo: href/nick/comment 중 하나, 그 외 native
func DetectImportFormat(item map[string]interface{}) string {
	_, hasPageKey := item["page_key"]
	_, hasContent := item["content"]
	if hasPageKey && hasContent {
		return ImportFormatArtalk
	}
	for _, key := range []string{"href", "nick", "comment"} {
		if _, ok := item[key]; ok {
			return ImportFormatTwikoo
		}
	}
	return ImportFormatNative
}

// ParseImport JSON 배열(또는 단일 객체)을 댓글 모델로 변환하고 id 오름차순 정렬
func ParseImport(data []byte, now time.Time) ([]*model.Comment, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyImport
	}

	var items []importItem
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if data[0] == '{' {
		var single importItem
		if err := decoder.Decode(&single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		items = []importItem{single}
	} else if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyImport
	}

	comments := make([]*model.Comment, 0, len(items))
	for _, item := range items {
		var c *model.Comment
		switch DetectImportFormat(item) {
		case ImportFormatArtalk:
			c = fromArtalk(item)
		case ImportFormatTwikoo:
			c = fromTwikoo(item)
		default:
			c = fromNative(item)
		}
		applyImportDefaults(c, now)
		comments = append(comments, c)
	}

	// 부모가 자식보다 먼저 들어가도록 id 순 정렬 (id 없는 레코드는 앞쪽)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func fromArtalk(item importItem) *model.Comment {
	c := &model.Comment{
		ID:          item.uintValue("id"),
		Created:     item.timeValue("created_at"),
		PostSlug:    item.stringValue("page_key"),
		Name:        item.stringValue("nick"),
		Email:       item.stringValue("email"),
		URL:         item.optionalString("link"),
		IPAddress:   item.optionalString("ip"),
		UA:          item.optionalString("ua"),
		ContentText: item.stringValue("content"),
	}
	if rid := item.uintValue("rid"); rid != 0 {
		c.ParentID = &rid
	}
	return c
}

func fromTwikoo(item importItem) *model.Comment {
	return &model.Comment{
		ID:          item.uintValue("_id"),
		Created:     item.timeValue("created"),
		PostSlug:    item.stringValue("href"),
		Name:        item.stringValue("nick"),
		Email:       item.stringValue("mail"),
		URL:         item.optionalString("link"),
		IPAddress:   item.optionalString("ip"),
		UA:          item.optionalString("ua"),
		ContentText: item.stringValue("comment"),
	}
}

// fromNative 내보내기 레코드(snake_case) 형식
func fromNative(item importItem) *model.Comment {
	c := &model.Comment{
		ID:          item.uintValue("id"),
		Created:     item.timeValue("created"),
		PostSlug:    item.stringValue("post_slug"),
		Name:        item.stringValue("name"),
		Email:       item.stringValue("email"),
		URL:         item.optionalString("url"),
		IPAddress:   item.optionalString("ip_address"),
		UA:          item.optionalString("ua"),
		ContentText: item.stringValue("content_text"),
		ContentHTML: item.stringValue("content_html"),
		Status:      item.stringValue("status"),
		Priority:    int(item.intValue("priority")),
		Likes:       int(item.intValue("likes")),
	}
	if parent := item.uintValue("parent_id"); parent != 0 {
		c.ParentID = &parent
	}
	return c
}

func applyImportDefaults(c *model.Comment, now time.Time) {
	c.ContentText = util.StripScripts(c.ContentText)
	if strings.TrimSpace(c.Name) == "" {
		c.Name = defaultImportName
	}
	if c.Status == "" {
		c.Status = model.CommentStatusApproved
	}
	if c.Priority < 1 {
		c.Priority = model.DefaultCommentPriority
	}
	if c.Likes < 0 {
		c.Likes = 0
	}
	if c.Created <= 0 {
		c.Created = now.UnixMilli()
	}
	if c.ContentHTML == "" {
		c.ContentHTML = util.RenderContent(c.ContentText)
	}
}

func (m importItem) stringValue(key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func (m importItem) optionalString(key string) *string {
	v := m.stringValue(key)
	if v == "" {
		return nil
	}
	return &v
}

func (m importItem) intValue(key string) int64 {
	switch v := m[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// uintValue 숫자 또는 숫자 문자열만 id 로 인정 (ObjectId 등은 0)
func (m importItem) uintValue(key string) uint {
	n := m.intValue(key)
	if n <= 0 {
		return 0
	}
	return uint(n)
}

// timeValue unix ms 숫자 또는 RFC3339 문자열
func (m importItem) timeValue(key string) int64 {
	switch v := m[key].(type) {
	case json.Number:
		return m.intValue(key)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UnixMilli()
			}
		}
	}
	return 0
}
