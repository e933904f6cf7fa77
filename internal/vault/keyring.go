package vault

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/illarion/lockdir/internal/auth"
	"github.com/illarion/lockdir/internal/cipher"
)

const serviceName = "lockdir"

// KeyringVault stores keys in the OS keychain via go-keyring. Key bytes
// are base64-encoded because keyring backends expect strings.
type KeyringVault struct{}

// NewKeyringVault creates a vault backed by the OS keychain.
func NewKeyringVault() *KeyringVault {
	return &KeyringVault{}
}

// Put stores key material under account, overwriting any existing entry.
func (v *KeyringVault) Put(account string, key []byte) error {
	if len(key) != cipher.KeySize {
		return fmt.Errorf("invalid key length: got %d, want %d", len(key), cipher.KeySize)
	}

	// Delete-before-put keeps overwrite idempotent across backends.
	if err := keyring.Delete(serviceName, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to clear existing key: %w", err)
	}

	if err := keyring.Set(serviceName, account, base64.StdEncoding.EncodeToString(key)); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}
	return nil
}

// Get retrieves key material for account. Requires a valid authorization
// context; ErrNotFound when no key exists under the account.
func (v *KeyringVault) Get(account string, authCtx *auth.Context) ([]byte, error) {
	if !authCtx.Valid() {
		return nil, ErrUnauthorized
	}

	raw, err := keyring.Get(serviceName, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read key: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.New("stored key has invalid format")
	}
	if len(key) != cipher.KeySize {
		return nil, fmt.Errorf("stored key has invalid length: %d", len(key))
	}
	return key, nil
}

// Delete removes the key stored under account, if any.
func (v *KeyringVault) Delete(account string) error {
	if err := keyring.Delete(serviceName, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}
