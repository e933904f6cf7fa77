package core

import "errors"

var (
	// ErrAlreadyLocked reports a lock attempt on a folder whose artifact
	// already exists and whose directory is gone. A user-visible no-op.
	ErrAlreadyLocked = errors.New("folder is already locked")

	// ErrAlreadyUnlocked reports an unlock or recover attempt when a live
	// directory already occupies the target path.
	ErrAlreadyUnlocked = errors.New("folder is already unlocked")

	// ErrAmbiguousState reports a directory and its artifact coexisting.
	// Callers must refuse to overwrite either side.
	ErrAmbiguousState = errors.New("folder and lock artifact both exist")

	// ErrFolderMissing reports that neither the directory nor the artifact
	// exists. The folder is unregistered or lost; a hard error.
	ErrFolderMissing = errors.New("neither folder nor lock artifact exists")

	// ErrPathResolution reports a locator that could not be resolved.
	// Nothing destructive has happened when this is returned.
	ErrPathResolution = errors.New("failed to resolve folder path")

	// ErrKeyMissing reports a missing artifact or irretrievable key during
	// unlock or recover.
	ErrKeyMissing = errors.New("no key or artifact available")
)
