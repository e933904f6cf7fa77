package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/illarion/lockdir/internal/auth"
	"github.com/illarion/lockdir/internal/cipher"
	"github.com/illarion/lockdir/internal/core"
	"github.com/illarion/lockdir/internal/logging"
	"github.com/illarion/lockdir/internal/registry"
	"github.com/illarion/lockdir/internal/vault"
)

// DBEnv overrides the registry database location.
const DBEnv = "LOCKDIR_DB"

// App bundles the services every command needs.
type App struct {
	Store *registry.Store
	Orch  *core.Orchestrator
	Auth  *auth.TerminalAuthorizer
	Log   *logging.Logger
}

// DBPath returns the registry database location, honoring LOCKDIR_DB.
func DBPath() (string, error) {
	if env := os.Getenv(DBEnv); env != "" {
		return env, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "lockdir", "registry.db"), nil
}

// OpenApp opens the registry and wires the orchestrator with its real
// services. Exits when the registry does not exist yet.
func OpenApp(log *logging.Logger) *App {
	path, err := DBPath()
	if err != nil {
		HandleError(err)
	}

	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "Error: lockdir not initialized")
		fmt.Fprintln(os.Stderr, "Run 'lockdir init' first")
		os.Exit(1)
	}

	store, err := registry.Open(path)
	if err != nil {
		HandleError(err)
	}

	authorizer := auth.NewTerminalAuthorizer(store)
	return &App{
		Store: store,
		Orch:  core.New(vault.NewKeyringVault(), authorizer, log),
		Auth:  authorizer,
		Log:   log,
	}
}

// Close releases the registry database.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}

// ReadPassphrase reads a passphrase from the terminal without echoing.
func ReadPassphrase(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	passphrase, err := readSecret()
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return passphrase, nil
}

// ReadPassphraseConfirm reads a passphrase twice and ensures they match.
func ReadPassphraseConfirm() ([]byte, error) {
	first, err := ReadPassphrase("Enter passphrase: ")
	if err != nil {
		return nil, err
	}
	defer cipher.ClearBytes(first)

	second, err := ReadPassphrase("Confirm passphrase: ")
	if err != nil {
		return nil, err
	}
	defer cipher.ClearBytes(second)

	if string(first) != string(second) {
		return nil, fmt.Errorf("passphrases do not match")
	}

	result := make([]byte, len(first))
	copy(result, first)
	return result, nil
}

func readSecret() ([]byte, error) {
	return term.ReadPassword(int(syscall.Stdin))
}

// HandleError prints common errors consistently and exits
func HandleError(err error) {
	switch {
	case errors.Is(err, core.ErrAlreadyLocked):
		fmt.Fprintln(os.Stderr, "Error: folder is already locked")
	case errors.Is(err, core.ErrAlreadyUnlocked):
		fmt.Fprintln(os.Stderr, "Error: folder is already unlocked")
	case errors.Is(err, core.ErrAmbiguousState):
		fmt.Fprintln(os.Stderr, "Error: folder and its lock artifact both exist")
		fmt.Fprintln(os.Stderr, "Resolve the conflict manually; nothing was overwritten")
	case errors.Is(err, core.ErrFolderMissing):
		fmt.Fprintln(os.Stderr, "Error: neither folder nor lock artifact exists")
	case errors.Is(err, core.ErrKeyMissing):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, auth.ErrCanceled):
		fmt.Fprintln(os.Stderr, "Canceled")
	case errors.Is(err, auth.ErrFailed):
		fmt.Fprintln(os.Stderr, "Error: authorization failed")
	case errors.Is(err, auth.ErrUnavailable):
		fmt.Fprintln(os.Stderr, "Error: authorization unavailable")
		fmt.Fprintln(os.Stderr, "Run 'lockdir init' to enroll a passphrase")
	case errors.Is(err, registry.ErrNotFound):
		fmt.Fprintln(os.Stderr, "Error: folder not tracked")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
