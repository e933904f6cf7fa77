// Package locator provides persistent capability tokens for filesystem
// paths. A token survives process restarts and resolves back to a concrete
// path, or reports staleness when the recorded location no longer exists.
// It stands in for platform-specific security-scoped bookmarks.
package locator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrStale   = errors.New("locator is stale")
	ErrInvalid = errors.New("invalid locator token")
)

// Locator is an opaque token that lets the holder regain access to a path
// across process restarts.
type Locator string

// New creates a locator for path. The path must be absolute after
// cleaning; it is validated but its target need not exist yet.
func New(path string) (Locator, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to absolutize path: %w", err)
	}
	return Locator(base64.StdEncoding.EncodeToString([]byte(abs))), nil
}

// Resolve returns the concrete path the locator points at. ErrStale when
// the parent directory is gone, meaning the token no longer grants access
// to anything meaningful.
func (l Locator) Resolve() (string, error) {
	raw, err := base64.StdEncoding.DecodeString(string(l))
	if err != nil || len(raw) == 0 {
		return "", ErrInvalid
	}
	path := string(raw)
	if !filepath.IsAbs(path) {
		return "", ErrInvalid
	}

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return "", ErrStale
	}
	return path, nil
}

// WithAccess runs fn within a scoped acquisition of path, releasing on
// every exit path including panics. The plain-filesystem implementation
// only brackets the call; the seam exists so the archive+encrypt and erase
// steps never outlive their grant.
func WithAccess(path string, fn func() error) error {
	release := acquire(path)
	defer release()
	return fn()
}

func acquire(string) func() {
	// Plain paths need no OS grant. Returned release is still invoked on
	// all exit paths to keep the acquisition contract honest.
	return func() {}
}
