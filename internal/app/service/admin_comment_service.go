package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/internal/storage"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
	"github.com/cwd-comments/cwd-backend/pkg/util"
	"gorm.io/gorm"
)

// AdminCommentPageSize 관리자 목록 페이지 크기
const AdminCommentPageSize = 10

var (
	ErrStatusRequired   = errors.New("status is required")
	ErrNameRequired     = errors.New("name is required")
	ErrBackupDisabled   = errors.New("backup storage is not configured")
	ErrInvalidCommentID = errors.New("invalid comment id")
)

// BackupUploader 내보내기 백업 업로드 (S3)
type BackupUploader interface {
	UploadBackup(ctx context.Context, name, contentType string, body []byte) (*storage.UploadResult, error)
}

// AdminCommentList 관리자 댓글 목록
type AdminCommentList struct {
	Data       []model.AdminCommentView `json:"data"`
	Pagination model.Pagination         `json:"pagination"`
}

type AdminCommentService interface {
	ListComments(query model.AdminCommentListQuery) (*AdminCommentList, error)
	UpdateComment(req model.UpdateCommentRequest) (*model.Comment, error)
	UpdateStatus(id uint, status string) error
	DeleteComment(id uint) error
	ExportComments() ([]model.CommentRecord, error)
	ExportCommentsXLSX() ([]byte, error)
	ImportComments(data []byte) (*model.ImportResult, error)
	ImportParsed(comments []*model.Comment) (*model.ImportResult, error)
	Backup(ctx context.Context) (*storage.UploadResult, error)
}

type adminCommentService struct {
	commentRepo repository.CommentRepository
	settings    SettingsService
	backup      BackupUploader
	events      EventPublisher
	now         func() time.Time
}

func NewAdminCommentService(
	commentRepo repository.CommentRepository,
	settings SettingsService,
	backup BackupUploader,
	events EventPublisher,
) AdminCommentService {
	return &adminCommentService{
		commentRepo: commentRepo,
		settings:    settings,
		backup:      backup,
		events:      events,
		now:         time.Now,
	}
}

// ListComments 전체 상태의 댓글 (도메인/상태 필터, 10개씩)
func (s *adminCommentService) ListComments(query model.AdminCommentListQuery) (*AdminCommentList, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}

	comments, total, err := s.commentRepo.List(repository.CommentFilter{
		Domain: query.Domain,
		Status: query.Status,
	}, (page-1)*AdminCommentPageSize, AdminCommentPageSize)
	if err != nil {
		return nil, fmt.Errorf("list admin comments: %w", err)
	}

	settings, err := s.settings.GetCommentSettings()
	if err != nil {
		return nil, err
	}
	prefix := ""
	if settings.AvatarPrefix != nil {
		prefix = *settings.AvatarPrefix
	}

	views := make([]model.AdminCommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, model.AdminCommentView{
			Comment: c,
			Avatar:  util.AvatarURL(c.Email, prefix),
		})
	}

	return &AdminCommentList{
		Data: views,
		Pagination: model.Pagination{
			Page:       page,
			Limit:      AdminCommentPageSize,
			Total:      TotalPages(int(total), AdminCommentPageSize),
			TotalCount: total,
		},
	}, nil
}

// UpdateComment 관리자 수정. 이름/이메일/내용 필수, priority 는 1 이상일 때만 반영
func (s *adminCommentService) UpdateComment(req model.UpdateCommentRequest) (*model.Comment, error) {
	if req.ID == 0 {
		return nil, ErrInvalidCommentID
	}

	comment, err := s.commentRepo.FindByID(req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	content := strings.TrimSpace(util.StripScripts(req.Text()))
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if content == "" {
		return nil, ErrContentRequired
	}

	comment.Name = name
	comment.Email = email
	if req.URL != nil {
		comment.URL = optionalTrimmed(*req.URL)
	}
	if slug := strings.TrimSpace(req.Slug()); slug != "" {
		comment.PostSlug = slug
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		comment.Status = status
	}
	if req.Priority != nil && *req.Priority >= 1 {
		comment.Priority = *req.Priority
	}
	comment.ContentText = content
	comment.ContentHTML = util.RenderContent(content)

	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	logger.Info("Comment updated by admin", map[string]interface{}{
		"comment_id": comment.ID,
	})
	s.publish(EventCommentUpdated, comment)
	return comment, nil
}

func (s *adminCommentService) UpdateStatus(id uint, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return ErrStatusRequired
	}
	if err := s.commentRepo.UpdateStatus(id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	s.publish(EventCommentUpdated, map[string]interface{}{"id": id, "status": status})
	return nil
}

func (s *adminCommentService) DeleteComment(id uint) error {
	if err := s.commentRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	s.publish(EventCommentDeleted, map[string]interface{}{"id": id})
	return nil
}

// ExportComments 전체 댓글 (priority DESC, created DESC)
func (s *adminCommentService) ExportComments() ([]model.CommentRecord, error) {
	comments, err := s.commentRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("export comments: %w", err)
	}
	records := make([]model.CommentRecord, 0, len(comments))
	for i := range comments {
		records = append(records, comments[i].ToRecord())
	}
	return records, nil
}

func (s *adminCommentService) ExportCommentsXLSX() ([]byte, error) {
	records, err := s.ExportComments()
	if err != nil {
		return nil, err
	}
	return WriteCommentsXLSX(records)
}

// ImportComments native/Twikoo/Artalk JSON 가져오기
func (s *adminCommentService) ImportComments(data []byte) (*model.ImportResult, error) {
	comments, err := ParseImport(data, s.now())
	if err != nil {
		return nil, err
	}
	return s.ImportParsed(comments)
}

// ImportParsed 50개 단위 트랜잭션으로 id 기준 insert-or-replace
func (s *adminCommentService) ImportParsed(comments []*model.Comment) (*model.ImportResult, error) {
	if len(comments) == 0 {
		return nil, ErrEmptyImport
	}

	if err := s.commentRepo.UpsertBatch(comments); err != nil {
		return nil, fmt.Errorf("import comments: %w", err)
	}
	if err := s.commentRepo.SyncIDSequence(); err != nil {
		logger.Warn("Comment id sequence not synced after import", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Comments imported", map[string]interface{}{
		"count": len(comments),
	})
	return &model.ImportResult{
		Count:   len(comments),
		Message: fmt.Sprintf("imported %d comments", len(comments)),
	}, nil
}

// Backup JSON 내보내기를 S3 에 업로드
func (s *adminCommentService) Backup(ctx context.Context) (*storage.UploadResult, error) {
	if s.backup == nil {
		return nil, ErrBackupDisabled
	}

	records, err := s.ExportComments()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}

	name := fmt.Sprintf("comments-%s.json", s.now().UTC().Format("20060102-150405"))
	return s.backup.UploadBackup(ctx, name, "application/json", body)
}

func (s *adminCommentService) publish(eventType string, payload interface{}) {
	if s.events != nil {
		s.events.Publish(eventType, payload)
	}
}
