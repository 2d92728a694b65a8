package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/app/repository"
	"github.com/cwd-comments/cwd-backend/pkg/logger"
)

// AdminLikePageSize 관리자 좋아요 목록 페이지 크기
const AdminLikePageSize = 20

var ErrLikeUserRequired = errors.New("like user token is required")

// LikeList 관리자 좋아요 목록
type LikeList struct {
	Data       []model.PageLike `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

type LikeService interface {
	GetStatus(postSlug, userID string) (*model.LikeStatus, error)
	Like(postSlug, userID string) (*model.LikeStatus, error)
	Unlike(postSlug, userID string) (*model.LikeStatus, error)
	ListLikes(page int) (*LikeList, error)
	Stats() ([]model.LikeStatsItem, error)
}

type likeService struct {
	likeRepo repository.LikeRepository
	settings SettingsService
}

func NewLikeService(likeRepo repository.LikeRepository, settings SettingsService) LikeService {
	return &likeService{
		likeRepo: likeRepo,
		settings: settings,
	}
}

// GetStatus 토큰이 없으면 liked=false 와 전체 수만 반환
func (s *likeService) GetStatus(postSlug, userID string) (*model.LikeStatus, error) {
	postSlug = strings.TrimSpace(postSlug)
	if postSlug == "" {
		return nil, ErrPostSlugRequired
	}

	total, err := s.likeRepo.CountPageLikes(postSlug)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	status := &model.LikeStatus{TotalLikes: total}
	if userID = strings.TrimSpace(userID); userID != "" {
		liked, err := s.likeRepo.HasPageLike(postSlug, userID)
		if err != nil {
			return nil, fmt.Errorf("check like: %w", err)
		}
		status.Liked = liked
		status.AlreadyLiked = liked
	}
	return status, nil
}

// Like 페이지 좋아요. 같은 토큰의 중복 요청은 alreadyLiked=true
func (s *likeService) Like(postSlug, userID string) (*model.LikeStatus, error) {
	postSlug = strings.TrimSpace(postSlug)
	userID = strings.TrimSpace(userID)
	if postSlug == "" {
		return nil, ErrPostSlugRequired
	}
	if userID == "" {
		return nil, ErrLikeUserRequired
	}

	features, err := s.settings.GetFeatureSettings()
	if err != nil {
		return nil, err
	}
	if !features.EnableArticleLike {
		return nil, ErrFeatureDisabled
	}

	added, err := s.likeRepo.AddPageLike(postSlug, userID)
	if err != nil {
		return nil, fmt.Errorf("add like: %w", err)
	}
	total, err := s.likeRepo.CountPageLikes(postSlug)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	if added {
		logger.Debug("Page liked", map[string]interface{}{
			"post_slug": postSlug,
			"total":     total,
		})
	}
	return &model.LikeStatus{
		Liked:        true,
		AlreadyLiked: !added,
		TotalLikes:   total,
	}, nil
}

func (s *likeService) Unlike(postSlug, userID string) (*model.LikeStatus, error) {
	postSlug = strings.TrimSpace(postSlug)
	userID = strings.TrimSpace(userID)
	if postSlug == "" {
		return nil, ErrPostSlugRequired
	}
	if userID == "" {
		return nil, ErrLikeUserRequired
	}

	if err := s.likeRepo.RemovePageLike(postSlug, userID); err != nil {
		return nil, fmt.Errorf("remove like: %w", err)
	}
	total, err := s.likeRepo.CountPageLikes(postSlug)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	return &model.LikeStatus{Liked: false, TotalLikes: total}, nil
}

func (s *likeService) ListLikes(page int) (*LikeList, error) {
	if page < 1 {
		page = 1
	}
	likes, total, err := s.likeRepo.ListPageLikes((page-1)*AdminLikePageSize, AdminLikePageSize)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	if likes == nil {
		likes = []model.PageLike{}
	}
	return &LikeList{
		Data: likes,
		Pagination: model.Pagination{
			Page:       page,
			Limit:      AdminLikePageSize,
			Total:      TotalPages(int(total), AdminLikePageSize),
			TotalCount: total,
		},
	}, nil
}

func (s *likeService) Stats() ([]model.LikeStatsItem, error) {
	items, err := s.likeRepo.PageLikeStats()
	if err != nil {
		return nil, fmt.Errorf("like stats: %w", err)
	}
	if items == nil {
		items = []model.LikeStatsItem{}
	}
	return items, nil
}
