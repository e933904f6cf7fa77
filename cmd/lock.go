package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/lockdir/internal/logging"
)

// Lock encrypts one tracked folder into its lock artifact
func Lock(ctx context.Context, log *logging.Logger, name string) {
	app := OpenApp(log)
	defer app.Close()

	rec, err := app.Store.FindByName(name)
	if err != nil {
		HandleError(err)
	}

	updated, err := app.Orch.Lock(ctx, rec)
	if err != nil {
		HandleError(err)
	}

	if err := app.Store.Update(updated); err != nil {
		HandleError(err)
	}

	fmt.Printf("locked: %s\n", updated.Name)
}

// LockAll sweeps every tracked folder, locking what it can. Used directly
// and as the target of app-quit and system-sleep hooks. Individual
// failures are reported without aborting the sweep; final states are
// re-probed and persisted.
func LockAll(ctx context.Context, log *logging.Logger) {
	app := OpenApp(log)
	defer app.Close()

	records, err := app.Store.List()
	if err != nil {
		HandleError(err)
	}
	if len(records) == 0 {
		fmt.Println("No tracked folders")
		fmt.Println("Run 'lockdir add <dir>' to track one")
		return
	}

	results := app.Orch.LockAll(ctx, records)

	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
			log.Errorf("%s: %v", res.Record.Name, res.Err)
			continue
		}
		if err := app.Store.Update(res.Record); err != nil {
			log.Warnf("failed to persist state for %s: %v", res.Record.Name, err)
		}
		fmt.Printf("locked: %s\n", res.Record.Name)
	}

	if failures > 0 {
		fmt.Printf("locked %d of %d folders (%d failed)\n", len(results)-failures, len(results), failures)
	}
}
