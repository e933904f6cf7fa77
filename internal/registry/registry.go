package registry

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/illarion/lockdir/internal/locator"
)

var (
	ErrNotFound      = errors.New("folder not found")
	ErrAlreadyExists = errors.New("folder already tracked")
)

// Record describes one tracked folder. The Locked flag is a cached hint
// for display; ground truth is always re-derived from disk.
type Record struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Path    string          `json:"path"`
	Locator locator.Locator `json:"locator"`
	Locked  bool            `json:"locked"`
}

// NewRecord creates a record for the directory at path, minting a stable
// id and a locator token.
func NewRecord(path string) (Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to absolutize path: %w", err)
	}

	loc, err := locator.New(abs)
	if err != nil {
		return Record{}, err
	}

	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return Record{}, fmt.Errorf("failed to generate folder id: %w", err)
	}

	return Record{
		ID:      hex.EncodeToString(id),
		Name:    filepath.Base(abs),
		Path:    abs,
		Locator: loc,
	}, nil
}
