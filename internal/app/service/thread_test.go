package service

import (
	"encoding/json"
	"testing"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func view(id uint, parent uint, name string, created int64) model.CommentView {
	v := model.CommentView{ID: id, Name: name, Created: created}
	if parent != 0 {
		p := parent
		v.ParentID = &p
	}
	return v
}

func TestThreadAndPaginate_ReplyScenario(t *testing.T) {
	// A(root) <- B(reply to A) <- C(reply to B)
	comments := []model.CommentView{
		view(1, 0, "A", 100),
		view(3, 2, "C", 300),
		view(2, 1, "B", 200),
	}

	result := ThreadAndPaginate(comments, 1, 20)

	require.Len(t, result.Roots, 1)
	assert.Equal(t, 1, result.TotalRoots)
	assert.Equal(t, 3, result.TotalAll)

	root := result.Roots[0]
	assert.Equal(t, uint(1), root.ID)
	assert.Nil(t, root.ReplyToAuthor)
	require.Len(t, root.Replies, 2)

	assert.Equal(t, uint(2), root.Replies[0].ID)
	require.NotNil(t, root.Replies[0].ReplyToAuthor)
	assert.Equal(t, "A", *root.Replies[0].ReplyToAuthor)

	assert.Equal(t, uint(3), root.Replies[1].ID)
	require.NotNil(t, root.Replies[1].ReplyToAuthor)
	assert.Equal(t, "B", *root.Replies[1].ReplyToAuthor)
}

func TestThreadAndPaginate_RepliesEncodeAsEmptyArray(t *testing.T) {
	comments := []model.CommentView{
		view(1, 0, "A", 100),
		view(2, 1, "B", 200),
		view(3, 0, "C", 300),
	}

	result := ThreadAndPaginate(comments, 1, 20)
	require.Len(t, result.Roots, 2)
	require.Len(t, result.Roots[0].Replies, 1)

	reply := result.Roots[0].Replies[0]
	assert.NotNil(t, reply.Replies)
	assert.Empty(t, reply.Replies)
	assert.NotNil(t, result.Roots[1].Replies)

	raw, err := json.Marshal(result.Roots)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"replies":null`)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	replies := decoded[0]["replies"].([]interface{})
	assert.Equal(t, []interface{}{}, replies[0].(map[string]interface{})["replies"])
	assert.Equal(t, []interface{}{}, decoded[1]["replies"])
}

func TestThreadAndPaginate_UnionPartition(t *testing.T) {
	comments := []model.CommentView{
		view(1, 0, "r1", 10),
		view(2, 0, "r2", 20),
		view(3, 1, "a", 50),
		view(4, 3, "b", 40),
		view(5, 2, "c", 30),
		view(6, 4, "d", 35),
		view(7, 0, "r3", 5),
	}

	result := ThreadAndPaginate(comments, 1, 100)

	seen := map[uint]int{}
	for _, root := range result.Roots {
		seen[root.ID]++
		for i, reply := range root.Replies {
			seen[reply.ID]++
			if i > 0 {
				assert.LessOrEqual(t, root.Replies[i-1].Created, reply.Created)
			}
		}
	}

	assert.Len(t, seen, len(comments))
	for _, c := range comments {
		assert.Equal(t, 1, seen[c.ID], "comment %d should appear exactly once", c.ID)
	}

	// 루트는 입력 순서 유지
	assert.Equal(t, uint(1), result.Roots[0].ID)
	assert.Equal(t, uint(2), result.Roots[1].ID)
	assert.Equal(t, uint(7), result.Roots[2].ID)
}

func TestThreadAndPaginate_Orphans(t *testing.T) {
	tests := []struct {
		name      string
		comments  []model.CommentView
		wantRoots int
		wantIDs   []uint
	}{
		{
			name:      "missing parent is dropped",
			comments:  []model.CommentView{view(1, 0, "r", 1), view(2, 99, "orphan", 2)},
			wantRoots: 1,
			wantIDs:   []uint{1},
		},
		{
			name:      "cycle is dropped",
			comments:  []model.CommentView{view(1, 0, "r", 1), view(2, 3, "x", 2), view(3, 2, "y", 3)},
			wantRoots: 1,
			wantIDs:   []uint{1},
		},
		{
			name:      "self parent is dropped",
			comments:  []model.CommentView{view(5, 5, "self", 1)},
			wantRoots: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ThreadAndPaginate(tt.comments, 1, 10)
			assert.Equal(t, tt.wantRoots, result.TotalRoots)
			assert.Equal(t, len(tt.comments), result.TotalAll)

			var ids []uint
			for _, root := range result.Roots {
				ids = append(ids, root.ID)
				for _, reply := range root.Replies {
					ids = append(ids, reply.ID)
				}
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestThreadAndPaginate_Pagination(t *testing.T) {
	var comments []model.CommentView
	for i := uint(1); i <= 5; i++ {
		comments = append(comments, view(i, 0, "r", int64(i)))
	}
	comments = append(comments, view(6, 5, "reply", 10))

	tests := []struct {
		name    string
		page    int
		limit   int
		wantIDs []uint
	}{
		{name: "first page", page: 1, limit: 2, wantIDs: []uint{1, 2}},
		{name: "remainder page", page: 3, limit: 2, wantIDs: []uint{5}},
		{name: "past the end", page: 4, limit: 2, wantIDs: []uint{}},
		{name: "page below one", page: 0, limit: 2, wantIDs: []uint{1, 2}},
		{name: "zero limit", page: 1, limit: 0, wantIDs: []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ThreadAndPaginate(comments, tt.page, tt.limit)
			assert.Equal(t, 5, result.TotalRoots)
			assert.Equal(t, 6, result.TotalAll)
			require.NotNil(t, result.Roots)

			ids := []uint{}
			for _, root := range result.Roots {
				ids = append(ids, root.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	assert.Equal(t, 3, TotalPages(5, 2))
	assert.Equal(t, 0, TotalPages(0, 20))
}

func TestThreadAndPaginate_Empty(t *testing.T) {
	result := ThreadAndPaginate(nil, 1, 20)
	assert.NotNil(t, result.Roots)
	assert.Empty(t, result.Roots)
	assert.Zero(t, result.TotalRoots)
	assert.Zero(t, result.TotalAll)
}

func TestPaginateFlat(t *testing.T) {
	comments := []model.CommentView{view(1, 0, "a", 1), view(2, 1, "b", 2), view(3, 0, "c", 3)}

	page := PaginateFlat(comments, 2, 2)
	require.Len(t, page, 1)
	assert.Equal(t, uint(3), page[0].ID)
}
