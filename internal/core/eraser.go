package core

import (
	"errors"
	"os"
	"path/filepath"
)

// Erase performs a best-effort recursive removal of the directory tree at
// path. Contents are not overwritten before deletion; the threat model
// accepts that. It must only run after the corresponding artifact write is
// durably confirmed.
func Erase(path string) error {
	if path == "" || filepath.Clean(path) == string(os.PathSeparator) {
		return errors.New("refusing to erase root or empty path")
	}
	return os.RemoveAll(path)
}
