package widget

import (
	"sync"

	"github.com/google/uuid"
)

// UserIdentityProvider supplies the anonymous token sent as X-CWD-Like-User
type UserIdentityProvider interface {
	UserID() string
}

// StaticIdentity always returns the same token
type StaticIdentity string

func (s StaticIdentity) UserID() string {
	return string(s)
}

type randomIdentity struct {
	once sync.Once
	id   string
}

// NewRandomIdentity returns a provider that generates a uuid on first use
// and keeps it for the lifetime of the provider.
func NewRandomIdentity() UserIdentityProvider {
	return &randomIdentity{}
}

func (r *randomIdentity) UserID() string {
	r.once.Do(func() {
		r.id = uuid.NewString()
	})
	return r.id
}
