package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"

	"github.com/illarion/lockdir/internal/auth"
)

var (
	ErrNotFound     = errors.New("key not found")
	ErrUnauthorized = errors.New("authorization context invalid")
)

// Vault is the secure key store contract consumed by the orchestrator.
// Put has delete-before-put semantics for idempotent overwrite.
type Vault interface {
	Put(account string, key []byte) error
	Get(account string, authCtx *auth.Context) ([]byte, error)
	Delete(account string) error
}

// PrimaryAccount derives the account id for a folder's primary key from
// its stable record id.
func PrimaryAccount(folderID string) string {
	return "folder-" + folderID
}

// RecoveryAccount derives the account id for a folder's recovery key from
// its original absolute path. The derivation is deterministic so recovery
// can recompute it from the artifact location alone.
func RecoveryAccount(absPath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(absPath)))
	return "recovery-" + hex.EncodeToString(sum[:])
}
