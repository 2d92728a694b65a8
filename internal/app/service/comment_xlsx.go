package service

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const commentSheet = "comments"

// 엑셀 컬럼 순서 (내보내기 레코드와 동일)
var commentColumns = []string{
	"id", "created", "post_slug", "name", "email", "url", "ip_address", "ua",
	"content_text", "content_html", "parent_id", "status", "priority", "likes",
}

// WriteCommentsXLSX 댓글 레코드를 엑셀 파일로 변환
func WriteCommentsXLSX(records []model.CommentRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), commentSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(commentColumns))
	for i, col := range commentColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(commentSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		row := []interface{}{
			strconv.FormatUint(uint64(r.ID), 10), strconv.FormatInt(r.Created, 10), r.PostSlug, r.Name, r.Email, deref(r.URL), deref(r.IPAddress), deref(r.UA),
			r.ContentText, r.ContentHTML, parentCell(r.ParentID), r.Status, r.Priority, r.Likes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(commentSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadCommentsXLSX WriteCommentsXLSX 로 만든 파일을 다시 댓글 모델로 읽음
func ReadCommentsXLSX(r io.Reader, now time.Time) ([]*model.Comment, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets found in xlsx")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyImport
	}

	index := map[string]int{}
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	get := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	comments := make([]*model.Comment, 0, len(rows)-1)
	for _, row := range rows[1:] {
		item := importItem{}
		for _, col := range commentColumns {
			if v := get(row, col); v != "" {
				item[col] = v
			}
		}
		if len(item) == 0 {
			continue
		}
		c := fromNative(item)
		applyImportDefaults(c, now)
		comments = append(comments, c)
	}
	return comments, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parentCell(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}
