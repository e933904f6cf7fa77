package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/illarion/lockdir/internal/auth"
	"github.com/illarion/lockdir/internal/cipher"
	"github.com/illarion/lockdir/internal/logging"
	"github.com/illarion/lockdir/internal/registry"
)

// Init creates the registry database and enrolls the passphrase verifier
func Init(log *logging.Logger) {
	path, err := DBPath()
	if err != nil {
		HandleError(err)
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintln(os.Stderr, "Error: lockdir already initialized")
		fmt.Fprintln(os.Stderr, "Use 'lockdir status' to see tracked folders")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		HandleError(err)
	}

	store, err := registry.Open(path)
	if err != nil {
		HandleError(err)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		HandleError(err)
	}

	passphrase, err := ReadPassphraseConfirm()
	if err != nil {
		HandleError(err)
	}
	defer cipher.ClearBytes(passphrase)

	authorizer := auth.NewTerminalAuthorizer(store)
	if err := authorizer.Enroll(passphrase); err != nil {
		HandleError(err)
	}

	fmt.Println("Initialized lockdir registry")
	log.Infof("registry created at %s", path)
}
