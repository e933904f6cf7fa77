package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"

	"github.com/illarion/lockdir/internal/cipher"
)

const (
	SaltSize     = 32     // Verifier salt size in bytes
	verifierSize = 32     // PBKDF2 output size
	DefaultIters = 210000 // PBKDF2 iterations (OWASP minimum)

	// PassphraseEnv allows scripted use without a terminal prompt.
	PassphraseEnv = "LOCKDIR_PASSPHRASE"
)

// Verifier holds the enrolled passphrase verification parameters.
type Verifier struct {
	Salt       []byte
	Iterations int
	Hash       []byte
}

// VerifierStore persists the enrolled verifier. Implemented by the folder
// registry's config storage.
type VerifierStore interface {
	GetVerifier() (*Verifier, error)
	SetVerifier(*Verifier) error
}

// ErrNotEnrolled is returned by VerifierStore implementations when no
// passphrase has been enrolled yet.
var ErrNotEnrolled = errors.New("no passphrase enrolled")

// TerminalAuthorizer checks a passphrase read from the terminal (or the
// LOCKDIR_PASSPHRASE environment variable) against the enrolled verifier.
type TerminalAuthorizer struct {
	store VerifierStore
}

// NewTerminalAuthorizer creates an authorizer backed by the given store.
func NewTerminalAuthorizer(store VerifierStore) *TerminalAuthorizer {
	return &TerminalAuthorizer{store: store}
}

// Enroll derives and stores a verifier for the passphrase. Called once,
// at init.
func (a *TerminalAuthorizer) Enroll(passphrase []byte) error {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	v := &Verifier{
		Salt:       salt,
		Iterations: DefaultIters,
		Hash:       pbkdf2.Key(passphrase, salt, DefaultIters, verifierSize, sha256.New),
	}
	return a.store.SetVerifier(v)
}

// Authorize prompts for the passphrase and returns a fresh context on
// success. Returns ErrUnavailable when no verifier is enrolled or no input
// source exists, ErrFailed on a wrong passphrase, ErrCanceled when the
// user aborts or ctx is done.
func (a *TerminalAuthorizer) Authorize(ctx context.Context) (*Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCanceled
	}

	v, err := a.store.GetVerifier()
	if err != nil {
		if errors.Is(err, ErrNotEnrolled) {
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	passphrase, err := readPassphrase("Passphrase: ")
	if err != nil {
		return nil, err
	}
	defer cipher.ClearBytes(passphrase)

	if err := ctx.Err(); err != nil {
		return nil, ErrCanceled
	}

	derived := pbkdf2.Key(passphrase, v.Salt, v.Iterations, verifierSize, sha256.New)
	defer cipher.ClearBytes(derived)

	if subtle.ConstantTimeCompare(derived, v.Hash) != 1 {
		return nil, ErrFailed
	}

	return NewContext(), nil
}

// readPassphrase reads the passphrase from the environment or, failing
// that, from the terminal without echoing.
func readPassphrase(prompt string) ([]byte, error) {
	if env := os.Getenv(PassphraseEnv); env != "" {
		result := make([]byte, len(env))
		copy(result, env)
		return result, nil
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		return nil, ErrUnavailable
	}

	fmt.Print(prompt)
	passphrase, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		// Interrupt during the prompt surfaces as a read error.
		return nil, ErrCanceled
	}
	return passphrase, nil
}
