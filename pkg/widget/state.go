package widget

import (
	"regexp"
	"strings"
)

// Field names a comment form input
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldURL     Field = "url"
	FieldContent Field = "content"
)

// Form is the comment form; name/email/url are reused by replies
type Form struct {
	Name    string
	Email   string
	URL     string
	Content string
}

// State is a snapshot of the widget. Reducers never mutate a previous
// snapshot, so subscribers may keep references to it.
type State struct {
	Comments       []Comment
	Loading        bool
	Error          string
	SuccessMessage string
	Pagination     Pagination

	Form       Form
	FormErrors map[Field]string
	Submitting bool

	ReplyingTo   uint // 0 when no reply box is open
	ReplyContent string
	ReplyError   string

	LikeCount            int64
	Liked                bool
	CommentLikeLoadingID uint
	LikedComments        map[uint]bool
}

func initialState(pageSize int, form Form) State {
	return State{
		Loading:       true,
		Pagination:    Pagination{Page: 1, Limit: pageSize},
		Form:          form,
		FormErrors:    map[Field]string{},
		LikedComments: map[uint]bool{},
	}
}

// FindComment looks up a root or reply by id
func (s State) FindComment(id uint) (Comment, bool) {
	for _, root := range s.Comments {
		if root.ID == id {
			return root, true
		}
		for _, reply := range root.Replies {
			if reply.ID == id {
				return reply, true
			}
		}
	}
	return Comment{}, false
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateForm checks the fields needed for a new comment
func ValidateForm(form Form) map[Field]string {
	errs := validateUser(form)
	if strings.TrimSpace(form.Content) == "" {
		errs[FieldContent] = "Please enter a comment"
	}
	return errs
}

func validateUser(form Form) map[Field]string {
	errs := map[Field]string{}
	if strings.TrimSpace(form.Name) == "" {
		errs[FieldName] = "Please enter a name"
	}
	email := strings.TrimSpace(form.Email)
	switch {
	case email == "":
		errs[FieldEmail] = "Please enter an email"
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Please enter a valid email"
	}
	if u := strings.TrimSpace(form.URL); u != "" &&
		!strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		errs[FieldURL] = "Website must start with http:// or https://"
	}
	return errs
}
