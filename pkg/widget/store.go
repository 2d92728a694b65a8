package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

const defaultPageSize = 20

var (
	ErrValidation       = errors.New("form is invalid")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrNoReplyTarget    = errors.New("no comment selected for reply")
)

// Store holds the widget state for one mounted page.
// All operations are safe for concurrent use.
type Store struct {
	client    *Client
	debouncer *Debouncer
	pageSize  int

	mu        sync.Mutex
	state     State
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(State)
}

type StoreOption func(*Store)

func WithDebouncer(d *Debouncer) StoreOption {
	return func(s *Store) { s.debouncer = d }
}

func WithPageSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithForm pre-fills the author fields, e.g. from a saved profile
func WithForm(form Form) StoreOption {
	return func(s *Store) {
		s.state.Form = Form{Name: form.Name, Email: form.Email, URL: form.URL}
	}
}

func NewStore(client *Client, opts ...StoreOption) *Store {
	s := &Store{
		client:   client,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.debouncer == nil {
		s.debouncer = NewDebouncer(DefaultDebounceWindow, nil)
	}
	s.state = initialState(s.pageSize, s.state.Form)
	return s
}

// State returns the current snapshot
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every state change. Subscribers are notified
// in registration order. Call the returned func to stop.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			kept := make([]listener, 0, len(s.listeners))
			for _, l := range s.listeners {
				if l.id != id {
					kept = append(kept, l)
				}
			}
			s.listeners = kept
		})
	}
}

// Dispatch applies action and notifies subscribers
func (s *Store) Dispatch(action Action) State {
	next, _ := s.dispatchIf(nil, action)
	return next
}

// dispatchIf applies action only when guard accepts the current state.
// Listeners run after the lock is released.
func (s *Store) dispatchIf(guard func(State) bool, action Action) (State, bool) {
	s.mu.Lock()
	if guard != nil && !guard(s.state) {
		current := s.state
		s.mu.Unlock()
		return current, false
	}
	s.state = Reduce(s.state, action)
	next := s.state
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(next)
	}
	return next, true
}

func (s *Store) LoadComments(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	s.Dispatch(LoadStarted{})

	result, err := s.client.FetchComments(ctx, page, s.pageSize)
	if err != nil {
		s.Dispatch(LoadFailed{Message: errorMessage(err, "Failed to load comments")})
		return err
	}
	s.Dispatch(CommentsLoaded{Page: *result})
	return nil
}

// GoToPage loads page when it lies within 1..total, otherwise does nothing
func (s *Store) GoToPage(ctx context.Context, page int) error {
	if page < 1 || page > s.State().Pagination.Total {
		return nil
	}
	return s.LoadComments(ctx, page)
}

func (s *Store) UpdateFormField(field Field, value string) {
	s.Dispatch(FormFieldUpdated{Field: field, Value: value})
}

// SubmitNewComment validates the form, posts it and reloads the current page
func (s *Store) SubmitNewComment(ctx context.Context) error {
	form := s.State().Form
	if errs := ValidateForm(form); len(errs) > 0 {
		s.Dispatch(FormErrorsSet{Errors: errs})
		return ErrValidation
	}
	s.Dispatch(FormErrorsSet{})

	if _, ok := s.dispatchIf(notSubmitting, SubmitStarted{}); !ok {
		return ErrSubmitInProgress
	}

	result, err := s.client.SubmitComment(ctx, SubmitRequest{
		Name:    strings.TrimSpace(form.Name),
		Email:   strings.TrimSpace(form.Email),
		URL:     strings.TrimSpace(form.URL),
		Content: form.Content,
	})
	if err != nil {
		s.Dispatch(SubmitFailed{Message: errorMessage(err, "Failed to submit comment")})
		return err
	}

	s.Dispatch(SubmitSucceeded{Message: successMessage(result)})
	return s.LoadComments(ctx, s.State().Pagination.Page)
}

func (s *Store) StartReply(commentID uint) {
	s.Dispatch(ReplyStarted{CommentID: commentID})
}

func (s *Store) CancelReply() {
	s.Dispatch(ReplyCancelled{})
}

func (s *Store) UpdateReplyContent(content string) {
	s.Dispatch(ReplyContentUpdated{Content: content})
}

// SubmitReply posts the reply box content under parentID.
// A zero parentID uses the comment the reply box was opened on.
func (s *Store) SubmitReply(ctx context.Context, parentID uint) error {
	state := s.State()
	if parentID == 0 {
		parentID = state.ReplyingTo
	}
	if parentID == 0 {
		return ErrNoReplyTarget
	}
	if strings.TrimSpace(state.ReplyContent) == "" {
		s.Dispatch(ReplyErrorSet{Message: "Please enter a reply"})
		return ErrValidation
	}
	if errs := validateUser(state.Form); len(errs) > 0 {
		s.Dispatch(ReplyErrorSet{Message: joinErrors(errs)})
		return ErrValidation
	}

	if _, ok := s.dispatchIf(notSubmitting, ReplySubmitStarted{}); !ok {
		return ErrSubmitInProgress
	}

	parent := parentID
	result, err := s.client.SubmitComment(ctx, SubmitRequest{
		Name:     strings.TrimSpace(state.Form.Name),
		Email:    strings.TrimSpace(state.Form.Email),
		URL:      strings.TrimSpace(state.Form.URL),
		Content:  state.ReplyContent,
		ParentID: &parent,
	})
	if err != nil {
		s.Dispatch(ReplySubmitFailed{Message: errorMessage(err, "Failed to submit reply")})
		return err
	}

	s.Dispatch(ReplySubmitSucceeded{Message: successMessage(result)})
	return s.LoadComments(ctx, s.State().Pagination.Page)
}

// LikeComment likes a root comment or reply once. Comments already liked
// in this session, repeats within the debounce window and clicks while the
// same comment is in flight are dropped.
func (s *Store) LikeComment(ctx context.Context, commentID uint) error {
	if commentID == 0 {
		return ErrInvalidCommentID
	}
	if st := s.State(); st.LikedComments[commentID] || st.CommentLikeLoadingID == commentID {
		return nil
	}
	if !s.debouncer.Allow(fmt.Sprintf("%s_%d", s.client.UserID(), commentID)) {
		return nil
	}

	canLike := func(st State) bool {
		return st.CommentLikeLoadingID != commentID && !st.LikedComments[commentID]
	}
	if _, ok := s.dispatchIf(canLike, CommentLikeStarted{CommentID: commentID}); !ok {
		return nil
	}

	result, err := s.client.LikeComment(ctx, commentID)
	if err != nil {
		s.Dispatch(CommentLikeFailed{CommentID: commentID, Message: errorMessage(err, "Failed to like comment")})
		return err
	}
	s.Dispatch(CommentLikeSucceeded{CommentID: commentID, Likes: result.Likes})
	return nil
}

func (s *Store) LoadLikeStatus(ctx context.Context) error {
	status, err := s.client.GetLikeStatus(ctx)
	if err != nil {
		return err
	}
	s.Dispatch(LikeStateSet{Liked: status.Liked, TotalLikes: status.TotalLikes})
	return nil
}

// LikePage likes the current page once; the server ignores repeats
func (s *Store) LikePage(ctx context.Context) error {
	status, err := s.client.LikePage(ctx)
	if err != nil {
		s.Dispatch(ErrorSet{Message: errorMessage(err, "Failed to like page")})
		return err
	}
	s.Dispatch(LikeStateSet{Liked: status.Liked, TotalLikes: status.TotalLikes})
	return nil
}

func (s *Store) ClearError() {
	s.Dispatch(ErrorCleared{})
}

func (s *Store) ClearSuccess() {
	s.Dispatch(SuccessCleared{})
}

func (s *Store) ClearReplyError() {
	s.Dispatch(ReplyErrorCleared{})
}

func notSubmitting(st State) bool {
	return !st.Submitting
}

func successMessage(result *SubmitResult) string {
	if result != nil && result.Status == "pending" {
		return "Your comment has been submitted and is awaiting review"
	}
	return "Your comment has been posted"
}

func errorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
