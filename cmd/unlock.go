package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/lockdir/internal/logging"
)

// Unlock restores one tracked folder from its lock artifact
func Unlock(ctx context.Context, log *logging.Logger, name string) {
	app := OpenApp(log)
	defer app.Close()

	rec, err := app.Store.FindByName(name)
	if err != nil {
		HandleError(err)
	}

	updated, err := app.Orch.Unlock(ctx, rec)
	if err != nil {
		HandleError(err)
	}

	if err := app.Store.Update(updated); err != nil {
		HandleError(err)
	}

	fmt.Printf("unlocked: %s\n", updated.Name)
}
