package cmd

import (
	"fmt"

	"github.com/illarion/lockdir/internal/logging"
)

// Remove stops tracking a folder. The directory or artifact on disk is
// left untouched.
func Remove(log *logging.Logger, name string) {
	app := OpenApp(log)
	defer app.Close()

	rec, err := app.Store.FindByName(name)
	if err != nil {
		HandleError(err)
	}

	if err := app.Store.Remove(rec.ID); err != nil {
		HandleError(err)
	}

	fmt.Printf("removed: %s from tracking (disk untouched)\n", rec.Name)
}
