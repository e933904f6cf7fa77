package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/illarion/lockdir/internal/archive"
	"github.com/illarion/lockdir/internal/auth"
	"github.com/illarion/lockdir/internal/cipher"
	"github.com/illarion/lockdir/internal/locator"
	"github.com/illarion/lockdir/internal/logging"
	"github.com/illarion/lockdir/internal/registry"
	"github.com/illarion/lockdir/internal/vault"
)

// ArtifactSuffix is appended to a folder's name to form its lock artifact,
// written beside where the folder used to be.
const ArtifactSuffix = ".lockit"

const (
	tmpCleanupAttempts = 5
	tmpCleanupBackoff  = 100 * time.Millisecond
)

// State is a folder's observed lock state, recomputed from disk on demand.
type State int

const (
	StateUnlocked State = iota
	StateLocked
)

func (s State) String() string {
	if s == StateLocked {
		return "locked"
	}
	return "unlocked"
}

// StateInfo is the result of probing a folder's state.
type StateInfo struct {
	State State

	// Ambiguous is set when both the directory and the artifact exist.
	// The folder is reported unlocked and must never be overwritten.
	Ambiguous bool

	// LocatorStale is set when the record's locator could not be resolved
	// and the cached flag was used instead. Display only, never a failure.
	LocatorStale bool
}

// Orchestrator composes the authorizer, key vault, archive codec and
// cipher into the lock, unlock and recover operations. Services are
// injected; there are no package-level instances.
type Orchestrator struct {
	vault  vault.Vault
	auth   auth.Authorizer
	log    *logging.Logger
	guard  *folderGuard
	probes singleflight.Group
}

// New creates an orchestrator using the given services.
func New(v vault.Vault, a auth.Authorizer, log *logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.Discard()
	}
	return &Orchestrator{
		vault: v,
		auth:  a,
		log:   log,
		guard: newFolderGuard(),
	}
}

// ArtifactPath returns the lock artifact path for the directory at dirPath.
func ArtifactPath(dirPath string) string {
	return dirPath + ArtifactSuffix
}

// ProbeState derives the folder's state from disk. A stale locator
// degrades to the record's cached flag instead of failing; concurrent
// probes of the same folder are collapsed into one.
func (o *Orchestrator) ProbeState(rec registry.Record) (StateInfo, error) {
	v, err, _ := o.probes.Do(rec.ID, func() (interface{}, error) {
		return o.probeRecord(rec), nil
	})
	if err != nil {
		return StateInfo{}, err
	}
	return v.(StateInfo), nil
}

func (o *Orchestrator) probeRecord(rec registry.Record) StateInfo {
	path, err := rec.Locator.Resolve()
	if err != nil {
		o.log.Warnf("locator for %s is stale, using cached state: %v", rec.Name, err)
		info := StateInfo{State: StateUnlocked, LocatorStale: true}
		if rec.Locked {
			info.State = StateLocked
		}
		return info
	}
	return probePath(path)
}

// probePath inspects disk at a concrete directory path. Locked iff the
// artifact exists and the directory does not; every other combination is
// unlocked, with the ambiguity flag when both exist.
func probePath(path string) StateInfo {
	dirExists := false
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		dirExists = true
	}
	artifactExists := false
	if info, err := os.Stat(ArtifactPath(path)); err == nil && !info.IsDir() {
		artifactExists = true
	}

	switch {
	case artifactExists && !dirExists:
		return StateInfo{State: StateLocked}
	case artifactExists && dirExists:
		return StateInfo{State: StateUnlocked, Ambiguous: true}
	default:
		return StateInfo{State: StateUnlocked}
	}
}

// Lock archives, encrypts and replaces the folder's directory with its
// lock artifact. Returns the record with the cached flag set. On an erase
// failure the artifact is kept and the error reported; callers should
// re-probe rather than trust the returned record blindly.
func (o *Orchestrator) Lock(ctx context.Context, rec registry.Record) (registry.Record, error) {
	path, err := rec.Locator.Resolve()
	if err != nil {
		return rec, fmt.Errorf("%w: %v", ErrPathResolution, err)
	}

	release := o.guard.acquire(path)
	defer release()

	info := probePath(path)
	if info.State == StateLocked {
		return rec, ErrAlreadyLocked
	}
	if info.Ambiguous {
		return rec, ErrAmbiguousState
	}
	if _, err := os.Stat(path); err != nil {
		return rec, ErrFolderMissing
	}

	if err := ctx.Err(); err != nil {
		return rec, auth.ErrCanceled
	}

	// Suspension point: authorization failure or cancellation aborts with
	// zero side effects.
	authCtx, err := o.auth.Authorize(ctx)
	if err != nil {
		return rec, err
	}

	key, err := o.obtainKey(rec, path, authCtx)
	if err != nil {
		return rec, err
	}
	defer cipher.ClearBytes(key)

	artifactPath := ArtifactPath(path)
	err = locator.WithAccess(path, func() error {
		tmp, err := os.CreateTemp(filepath.Dir(path), ".lockdir-pack-*")
		if err != nil {
			return fmt.Errorf("failed to create temporary archive: %w", err)
		}
		tmpPath := tmp.Name()
		defer o.removeTempArchive(tmpPath)

		if err := archive.Pack(path, tmp); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("failed to finalize temporary archive: %w", err)
		}

		plaintext, err := os.ReadFile(tmpPath)
		if err != nil {
			return fmt.Errorf("failed to read temporary archive: %w", err)
		}

		envelope, err := cipher.Encrypt(plaintext, key)
		cipher.ClearBytes(plaintext)
		if err != nil {
			return fmt.Errorf("failed to encrypt archive: %w", err)
		}

		// The artifact must never be observable partially written, and the
		// original is erased only after the write is durably confirmed.
		if err := writeFileAtomic(artifactPath, envelope); err != nil {
			return fmt.Errorf("failed to write lock artifact: %w", err)
		}

		if err := Erase(path); err != nil {
			return fmt.Errorf("artifact written but original not removed: %w", err)
		}
		return nil
	})
	if err != nil {
		return rec, err
	}

	rec.Locked = true
	return rec, nil
}

// obtainKey retrieves the folder's primary key, creating it on first lock.
// Key creation happens here and nowhere else: the fresh key is stored under
// both the primary and recovery accounts before any data is touched.
func (o *Orchestrator) obtainKey(rec registry.Record, path string, authCtx *auth.Context) ([]byte, error) {
	key, err := o.vault.Get(vault.PrimaryAccount(rec.ID), authCtx)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, vault.ErrNotFound) {
		return nil, fmt.Errorf("failed to retrieve key: %w", err)
	}

	key, err = cipher.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := o.vault.Put(vault.PrimaryAccount(rec.ID), key); err != nil {
		return nil, fmt.Errorf("failed to store primary key: %w", err)
	}
	if err := o.vault.Put(vault.RecoveryAccount(path), key); err != nil {
		return nil, fmt.Errorf("failed to store recovery key: %w", err)
	}
	return key, nil
}

// Unlock decrypts the folder's artifact and restores the directory,
// consuming the artifact. The original path is used directly; unlock does
// not need the locator since the parent directory already exists.
func (o *Orchestrator) Unlock(ctx context.Context, rec registry.Record) (registry.Record, error) {
	release := o.guard.acquire(rec.Path)
	defer release()

	path := rec.Path
	artifactPath := ArtifactPath(path)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return rec, ErrAlreadyUnlocked
	}
	if _, err := os.Stat(artifactPath); err != nil {
		return rec, ErrKeyMissing
	}

	if err := ctx.Err(); err != nil {
		return rec, auth.ErrCanceled
	}

	authCtx, err := o.auth.Authorize(ctx)
	if err != nil {
		return rec, err
	}

	// Primary key only. A retrieval failure here is fatal; the recovery
	// key is reserved for registry-less recovery.
	key, err := o.vault.Get(vault.PrimaryAccount(rec.ID), authCtx)
	if err != nil {
		return rec, fmt.Errorf("failed to retrieve key: %w", err)
	}
	defer cipher.ClearBytes(key)

	if err := o.restore(path, artifactPath, key); err != nil {
		return rec, err
	}

	rec.Locked = false
	return rec, nil
}

// Recover restores a directory from its artifact alone, without a registry
// record. The target is the artifact's sibling with the suffix stripped;
// the key comes from the recovery account derived from that path. On
// success the artifact is consumed. Returns the restored folder's name so
// the caller can re-register it.
func (o *Orchestrator) Recover(ctx context.Context, artifactPath string) (string, error) {
	abs, err := filepath.Abs(artifactPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyMissing, err)
	}
	if !strings.HasSuffix(abs, ArtifactSuffix) {
		return "", fmt.Errorf("%w: not a %s artifact", ErrKeyMissing, ArtifactSuffix)
	}
	target := strings.TrimSuffix(abs, ArtifactSuffix)

	release := o.guard.acquire(target)
	defer release()

	if _, err := os.Stat(target); err == nil {
		return "", ErrAlreadyUnlocked
	}
	if _, err := os.Stat(abs); err != nil {
		return "", ErrKeyMissing
	}

	if err := ctx.Err(); err != nil {
		return "", auth.ErrCanceled
	}

	authCtx, err := o.auth.Authorize(ctx)
	if err != nil {
		return "", err
	}

	// Recovery is best-effort: any key retrieval failure is reported as
	// missing, never escalated.
	key, err := o.vault.Get(vault.RecoveryAccount(target), authCtx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyMissing, err)
	}
	defer cipher.ClearBytes(key)

	if err := o.restore(target, abs, key); err != nil {
		return "", err
	}

	return filepath.Base(target), nil
}

// restore decrypts artifactPath with key and unpacks it so that the
// directory exists at path again, then consumes the artifact. Shared by
// Unlock and Recover.
func (o *Orchestrator) restore(path, artifactPath string, key []byte) error {
	envelope, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to read lock artifact: %w", err)
	}

	// A tag failure aborts before anything is written.
	plaintext, err := cipher.Decrypt(envelope, key)
	if err != nil {
		return err
	}

	parent := filepath.Dir(path)
	tmp, err := os.CreateTemp(parent, ".lockdir-unpack-*")
	if err != nil {
		cipher.ClearBytes(plaintext)
		return fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer o.removeTempArchive(tmpPath)

	if _, err := tmp.Write(plaintext); err != nil {
		cipher.ClearBytes(plaintext)
		tmp.Close()
		return fmt.Errorf("failed to write temporary archive: %w", err)
	}
	cipher.ClearBytes(plaintext)
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to finalize temporary archive: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to reopen temporary archive: %w", err)
	}
	err = archive.Unpack(f, parent)
	f.Close()
	if err != nil {
		return err
	}

	// A placeholder-only archive may leave no directory entry behind.
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to ensure restored directory: %w", err)
	}

	if err := os.Remove(artifactPath); err != nil {
		return fmt.Errorf("directory restored but artifact not removed: %w", err)
	}
	return nil
}

// removeTempArchive removes a temporary archive with bounded retries to
// tolerate transient file-handle contention. Persistent failure is logged,
// not fatal.
func (o *Orchestrator) removeTempArchive(path string) {
	var err error
	for attempt := 0; attempt < tmpCleanupAttempts; attempt++ {
		if err = os.Remove(path); err == nil || os.IsNotExist(err) {
			return
		}
		time.Sleep(tmpCleanupBackoff)
	}
	o.log.Warnf("failed to remove temporary archive %s: %v", path, err)
}

// Result is the outcome of one folder in a LockAll sweep.
type Result struct {
	Record registry.Record
	Err    error
}

// LockAll locks every record sequentially, tolerating individual failures
// without aborting the batch. Final states are re-probed afterwards rather
// than trusting per-call return values; the returned records carry the
// re-probed flags for the caller to persist.
func (o *Orchestrator) LockAll(ctx context.Context, records []registry.Record) []Result {
	results := make([]Result, 0, len(records))

	for _, rec := range records {
		updated, err := o.Lock(ctx, rec)
		if err != nil {
			if errors.Is(err, ErrAlreadyLocked) {
				err = nil
			} else {
				o.log.Warnf("failed to lock %s: %v", rec.Name, err)
			}
		}
		results = append(results, Result{Record: updated, Err: err})
	}

	for i := range results {
		info := o.probeRecord(results[i].Record)
		results[i].Record.Locked = info.State == StateLocked
	}

	return results
}

// writeFileAtomic writes data to path via a temp file and rename, syncing
// the file and its directory so the rename is durable before return.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".lockdir-artifact-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}
