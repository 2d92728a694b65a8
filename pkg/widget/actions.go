package widget

import "strings"

// Action is a state transition applied by Reduce
type Action interface {
	apply(State) State
}

// Reduce returns the state after action. The input state is left untouched.
func Reduce(state State, action Action) State {
	if action == nil {
		return state
	}
	return action.apply(state)
}

type LoadStarted struct{}

func (LoadStarted) apply(s State) State {
	s.Loading = true
	s.Error = ""
	return s
}

type CommentsLoaded struct {
	Page CommentPage
}

func (a CommentsLoaded) apply(s State) State {
	s.Loading = false
	s.Comments = a.Page.Data
	s.Pagination = a.Page.Pagination
	return s
}

type LoadFailed struct {
	Message string
}

func (a LoadFailed) apply(s State) State {
	s.Loading = false
	s.Error = a.Message
	return s
}

type FormFieldUpdated struct {
	Field Field
	Value string
}

func (a FormFieldUpdated) apply(s State) State {
	switch a.Field {
	case FieldName:
		s.Form.Name = a.Value
	case FieldEmail:
		s.Form.Email = a.Value
	case FieldURL:
		s.Form.URL = a.Value
	case FieldContent:
		s.Form.Content = a.Value
	default:
		return s
	}
	if _, ok := s.FormErrors[a.Field]; ok {
		errs := copyErrors(s.FormErrors)
		delete(errs, a.Field)
		s.FormErrors = errs
	}
	return s
}

type FormErrorsSet struct {
	Errors map[Field]string
}

func (a FormErrorsSet) apply(s State) State {
	s.FormErrors = copyErrors(a.Errors)
	return s
}

type SubmitStarted struct{}

func (SubmitStarted) apply(s State) State {
	s.Submitting = true
	s.Error = ""
	s.SuccessMessage = ""
	return s
}

// SubmitSucceeded clears the comment body and keeps the author fields
type SubmitSucceeded struct {
	Message string
}

func (a SubmitSucceeded) apply(s State) State {
	s.Submitting = false
	s.Form.Content = ""
	s.FormErrors = map[Field]string{}
	s.SuccessMessage = a.Message
	return s
}

type SubmitFailed struct {
	Message string
}

func (a SubmitFailed) apply(s State) State {
	s.Submitting = false
	s.Error = a.Message
	return s
}

type ReplyStarted struct {
	CommentID uint
}

func (a ReplyStarted) apply(s State) State {
	s.ReplyingTo = a.CommentID
	s.ReplyContent = ""
	s.ReplyError = ""
	return s
}

type ReplyCancelled struct{}

func (ReplyCancelled) apply(s State) State {
	s.ReplyingTo = 0
	s.ReplyContent = ""
	s.ReplyError = ""
	return s
}

type ReplyContentUpdated struct {
	Content string
}

func (a ReplyContentUpdated) apply(s State) State {
	s.ReplyContent = a.Content
	return s
}

type ReplyErrorSet struct {
	Message string
}

func (a ReplyErrorSet) apply(s State) State {
	s.ReplyError = a.Message
	return s
}

type ReplySubmitStarted struct{}

func (ReplySubmitStarted) apply(s State) State {
	s.Submitting = true
	s.ReplyError = ""
	s.SuccessMessage = ""
	return s
}

type ReplySubmitSucceeded struct {
	Message string
}

func (a ReplySubmitSucceeded) apply(s State) State {
	s.Submitting = false
	s.ReplyingTo = 0
	s.ReplyContent = ""
	s.ReplyError = ""
	s.SuccessMessage = a.Message
	return s
}

type ReplySubmitFailed struct {
	Message string
}

func (a ReplySubmitFailed) apply(s State) State {
	s.Submitting = false
	s.ReplyError = a.Message
	return s
}

// CommentLikeStarted bumps the count before the request completes
type CommentLikeStarted struct {
	CommentID uint
}

func (a CommentLikeStarted) apply(s State) State {
	s.CommentLikeLoadingID = a.CommentID
	s.Comments = adjustLikes(s.Comments, a.CommentID, func(likes int) int { return likes + 1 })
	return s
}

// CommentLikeSucceeded takes the server count as the truth
type CommentLikeSucceeded struct {
	CommentID uint
	Likes     int
}

func (a CommentLikeSucceeded) apply(s State) State {
	s.CommentLikeLoadingID = 0
	s.Comments = adjustLikes(s.Comments, a.CommentID, func(int) int { return a.Likes })
	liked := make(map[uint]bool, len(s.LikedComments)+1)
	for id, v := range s.LikedComments {
		liked[id] = v
	}
	liked[a.CommentID] = true
	s.LikedComments = liked
	return s
}

// CommentLikeFailed rolls the optimistic bump back
type CommentLikeFailed struct {
	CommentID uint
	Message   string
}

func (a CommentLikeFailed) apply(s State) State {
	s.CommentLikeLoadingID = 0
	s.Comments = adjustLikes(s.Comments, a.CommentID, func(likes int) int {
		if likes <= 1 {
			return 0
		}
		return likes - 1
	})
	s.Error = a.Message
	return s
}

type LikeStateSet struct {
	Liked      bool
	TotalLikes int64
}

func (a LikeStateSet) apply(s State) State {
	s.Liked = a.Liked
	s.LikeCount = a.TotalLikes
	return s
}

type ErrorSet struct {
	Message string
}

func (a ErrorSet) apply(s State) State {
	s.Error = a.Message
	return s
}

type ErrorCleared struct{}

func (ErrorCleared) apply(s State) State {
	s.Error = ""
	return s
}

type SuccessCleared struct{}

func (SuccessCleared) apply(s State) State {
	s.SuccessMessage = ""
	return s
}

type ReplyErrorCleared struct{}

func (ReplyErrorCleared) apply(s State) State {
	s.ReplyError = ""
	return s
}

// adjustLikes copies the path from the root down to the changed comment
func adjustLikes(comments []Comment, id uint, fn func(int) int) []Comment {
	for i, root := range comments {
		if root.ID == id {
			out := append([]Comment(nil), comments...)
			out[i].Likes = fn(root.Likes)
			return out
		}
		for j, reply := range root.Replies {
			if reply.ID != id {
				continue
			}
			replies := append([]Comment(nil), root.Replies...)
			replies[j].Likes = fn(reply.Likes)
			out := append([]Comment(nil), comments...)
			out[i].Replies = replies
			return out
		}
	}
	return comments
}

func copyErrors(in map[Field]string) map[Field]string {
	out := make(map[Field]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func joinErrors(errs map[Field]string) string {
	order := []Field{FieldName, FieldEmail, FieldURL, FieldContent}
	parts := make([]string, 0, len(errs))
	for _, f := range order {
		if msg, ok := errs[f]; ok {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}
