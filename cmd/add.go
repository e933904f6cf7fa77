package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/lockdir/internal/logging"
	"github.com/illarion/lockdir/internal/registry"
)

// Add registers a directory for tracking
func Add(log *logging.Logger, path string) {
	info, err := os.Stat(path)
	if err != nil {
		HandleError(fmt.Errorf("cannot access %s: %w", path, err))
	}
	if !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", path)
		os.Exit(1)
	}

	app := OpenApp(log)
	defer app.Close()

	rec, err := registry.NewRecord(path)
	if err != nil {
		HandleError(err)
	}

	if err := app.Store.Add(rec); err != nil {
		if errors.Is(err, registry.ErrAlreadyExists) {
			fmt.Fprintf(os.Stderr, "Error: %s is already tracked\n", rec.Path)
			os.Exit(1)
		}
		HandleError(err)
	}

	fmt.Printf("tracking: %s\n", rec.Name)
}
