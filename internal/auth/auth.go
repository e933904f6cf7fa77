package auth

import (
	"context"
	"errors"
	"time"
)

const contextTTL = 2 * time.Minute

var (
	ErrUnavailable = errors.New("authorization unavailable")
	ErrFailed      = errors.New("authorization failed")
	ErrCanceled    = errors.New("authorization canceled")
)

// Context is an opaque capability proving a successful local identity
// check. It is time-bounded; the key vault decides whether it is still
// acceptable at the moment of use.
type Context struct {
	issuedAt time.Time
}

// NewContext returns a freshly issued authorization context.
func NewContext() *Context {
	return &Context{issuedAt: time.Now()}
}

// Valid reports whether the context is present and unexpired.
func (c *Context) Valid() bool {
	if c == nil {
		return false
	}
	return time.Since(c.issuedAt) < contextTTL
}

// Authorizer performs the local identity check. Implementations block until
// the user responds or ctx is done.
type Authorizer interface {
	Authorize(ctx context.Context) (*Context, error)
}
