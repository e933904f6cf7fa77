package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewResolveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Notes")
	if err := os.Mkdir(target, 0700); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	loc, err := New(target)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resolved, err := loc.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved != target {
		t.Errorf("resolved path mismatch: got %s, want %s", resolved, target)
	}
}

func TestResolveMissingTargetStillWorks(t *testing.T) {
	// The target itself may be gone (locked state); only a missing parent
	// makes the locator stale.
	dir := t.TempDir()
	target := filepath.Join(dir, "Gone")

	loc, err := New(target)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := loc.Resolve(); err != nil {
		t.Errorf("expected resolution to succeed, got %v", err)
	}
}

func TestResolveStaleParent(t *testing.T) {
	dir := t.TempDir()
	parent := filepath.Join(dir, "parent")
	if err := os.Mkdir(parent, 0700); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	loc, err := New(filepath.Join(parent, "Notes"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := os.RemoveAll(parent); err != nil {
		t.Fatalf("failed to remove parent: %v", err)
	}

	if _, err := loc.Resolve(); !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}
}

func TestResolveInvalidToken(t *testing.T) {
	if _, err := Locator("not-base64!!!").Resolve(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if _, err := Locator("").Resolve(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for empty token, got %v", err)
	}
}

func TestWithAccessReleasesOnError(t *testing.T) {
	wantErr := errors.New("inner failure")
	err := WithAccess("/tmp", func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("expected inner error to propagate, got %v", err)
	}
}
