// Package core drives the lock/unlock orchestration for tracked folders.
//
// Core operations include:
//   - ProbeState: derive a folder's locked/unlocked state from disk
//   - Lock: archive, encrypt and replace a directory with a .lockit artifact
//   - Unlock: decrypt and restore the directory, consuming the artifact
//   - Recover: restore a directory from an artifact alone, without a record
//   - LockAll: best-effort sequential sweep over every tracked folder
//
// The orchestrator composes the authorizer, key vault, archive codec and
// cipher into one atomic-feeling operation per folder. A directory and its
// artifact never validly coexist: the artifact is written with an atomic
// replace, and the original directory is erased only after that write is
// durably confirmed. Operations on the same folder path are serialized
// through a per-folder guard, whether they arrive through a registry
// record or through an artifact path alone.
package core
