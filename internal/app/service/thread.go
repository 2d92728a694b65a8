package service

import (
	"sort"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
)

// ThreadResult 스레드 구성 + 루트 기준 페이지네이션 결과
type ThreadResult struct {
	Roots      []model.CommentView
	TotalRoots int // 루트 댓글 수 (페이지 수 계산 기준)
	TotalAll   int // 입력 전체 댓글 수
}

// ThreadAndPaginate 평면 댓글 목록을 루트 + 1단계 replies 로 묶고 루트 기준으로 페이지를 자름
//
// 깊은 대댓글은 루트까지 부모를 따라 올라가 해당 루트의 replies 에 붙고,
// replyToAuthor 에는 직계 부모의 이름이 들어감.
// 부모가 없거나 순환하는 댓글은 어느 루트에도 속하지 않으므로 결과에서 빠짐.
// 루트 순서는 입력 순서를 유지하고 replies 는 created 오름차순.
func ThreadAndPaginate(comments []model.CommentView, page, limit int) ThreadResult {
	result := ThreadResult{
		Roots:    []model.CommentView{},
		TotalAll: len(comments),
	}
	if len(comments) == 0 {
		return result
	}

	byID := make(map[uint]*model.CommentView, len(comments))
	for i := range comments {
		byID[comments[i].ID] = &comments[i]
	}

	var roots []*model.CommentView
	var children []*model.CommentView
	for i := range comments {
		c := &comments[i]
		if c.IsRoot() {
			roots = append(roots, c)
		} else {
			children = append(children, c)
		}
	}

	replies := make(map[uint][]model.CommentView, len(roots))
	for _, child := range children {
		if parent, ok := byID[*child.ParentID]; ok {
			name := parent.Name
			child.ReplyToAuthor = &name
		}

		root, ok := findRoot(child, byID)
		if !ok {
			continue
		}
		reply := *child
		reply.Replies = []model.CommentView{}
		replies[root.ID] = append(replies[root.ID], reply)
	}

	threaded := make([]model.CommentView, 0, len(roots))
	for _, root := range roots {
		r := *root
		r.ReplyToAuthor = nil
		r.Replies = replies[root.ID]
		if r.Replies == nil {
			r.Replies = []model.CommentView{}
		}
		sort.SliceStable(r.Replies, func(i, j int) bool {
			return r.Replies[i].Created < r.Replies[j].Created
		})
		threaded = append(threaded, r)
	}

	result.TotalRoots = len(threaded)
	result.Roots = paginate(threaded, page, limit)
	return result
}

// findRoot 부모 체인을 따라 루트를 찾음. 체인이 끊기거나 순환하면 false
func findRoot(c *model.CommentView, byID map[uint]*model.CommentView) (*model.CommentView, bool) {
	visited := map[uint]bool{c.ID: true}
	current := c
	for !current.IsRoot() {
		parent, ok := byID[*current.ParentID]
		if !ok || visited[parent.ID] {
			return nil, false
		}
		visited[parent.ID] = true
		current = parent
	}
	return current, true
}

// PaginateFlat nested=false 일 때 전체 댓글을 평면으로 자름
func PaginateFlat(comments []model.CommentView, page, limit int) []model.CommentView {
	return paginate(comments, page, limit)
}

// TotalPages ceil(total / limit)
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func paginate(items []model.CommentView, page, limit int) []model.CommentView {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return []model.CommentView{}
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []model.CommentView{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}
