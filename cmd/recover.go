package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/illarion/lockdir/internal/core"
	"github.com/illarion/lockdir/internal/logging"
	"github.com/illarion/lockdir/internal/registry"
)

// Recover restores a folder from a lock artifact alone and re-registers
// it, for the case where the registry lost track of it.
func Recover(ctx context.Context, log *logging.Logger, artifactPath string) {
	app := OpenApp(log)
	defer app.Close()

	name, err := app.Orch.Recover(ctx, artifactPath)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("recovered: %s\n", name)

	abs, err := filepath.Abs(artifactPath)
	if err != nil {
		log.Warnf("recovered but could not re-register: %v", err)
		return
	}
	dir := strings.TrimSuffix(abs, core.ArtifactSuffix)

	rec, err := registry.NewRecord(dir)
	if err != nil {
		log.Warnf("recovered but could not re-register: %v", err)
		return
	}
	if err := app.Store.Add(rec); err != nil {
		log.Warnf("recovered but could not re-register: %v", err)
		return
	}
	fmt.Printf("tracking: %s\n", rec.Name)
}
