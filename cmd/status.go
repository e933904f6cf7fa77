package cmd

import (
	"fmt"
	"time"

	"github.com/illarion/lockdir/internal/logging"
)

// Status shows every tracked folder with its probed state. States come
// from disk, not the cached flags.
func Status(log *logging.Logger) {
	app := OpenApp(log)
	defer app.Close()

	records, err := app.Store.List()
	if err != nil {
		HandleError(err)
	}

	fmt.Println("Tracked folders:")
	if len(records) == 0 {
		fmt.Println("  (none)")
	} else {
		for _, rec := range records {
			info, err := app.Orch.ProbeState(rec)
			if err != nil {
				fmt.Printf("  %s (error: %v)\n", rec.Name, err)
				continue
			}

			state := info.State.String()
			if info.Ambiguous {
				state += ", ambiguous: folder and artifact both exist"
			}
			if info.LocatorStale {
				state += ", stale location (cached)"
			}
			fmt.Printf("  %s (%s)\n", rec.Name, state)
		}
	}

	if modified, err := app.Store.GetModified(); err == nil {
		fmt.Printf("\nregistry last updated: %s\n", modified.Format(time.RFC3339))
	}
}
