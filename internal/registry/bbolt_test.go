package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/illarion/lockdir/internal/auth"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return store
}

func makeRecord(t *testing.T, dir string) Record {
	t.Helper()
	rec, err := NewRecord(dir)
	if err != nil {
		t.Fatalf("NewRecord failed: %v", err)
	}
	return rec
}

func TestAddGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	dir := filepath.Join(t.TempDir(), "Notes")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	rec := makeRecord(t, dir)
	if err := store.Add(rec); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Notes" || got.Path != rec.Path || got.Locator != rec.Locator {
		t.Errorf("record mismatch: got %+v, want %+v", got, rec)
	}
}

func TestAddDuplicatePath(t *testing.T) {
	store := openTestStore(t)
	dir := filepath.Join(t.TempDir(), "Notes")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	if err := store.Add(makeRecord(t, dir)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(makeRecord(t, dir)); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	base := t.TempDir()

	names := []string{"alpha", "bravo", "charlie"}
	for _, name := range names {
		dir := filepath.Join(base, name)
		if err := os.Mkdir(dir, 0700); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := store.Add(makeRecord(t, dir)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != len(names) {
		t.Fatalf("expected %d records, got %d", len(names), len(records))
	}
	for i, name := range names {
		if records[i].Name != name {
			t.Errorf("position %d: got %s, want %s", i, records[i].Name, name)
		}
	}
}

func TestUpdatePreservesOrder(t *testing.T) {
	store := openTestStore(t)
	base := t.TempDir()

	var first Record
	for i, name := range []string{"one", "two"} {
		dir := filepath.Join(base, name)
		if err := os.Mkdir(dir, 0700); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		rec := makeRecord(t, dir)
		if err := store.Add(rec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if i == 0 {
			first = rec
		}
	}

	first.Locked = true
	if err := store.Update(first); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if records[0].ID != first.ID || !records[0].Locked {
		t.Errorf("updated record lost its position or state: %+v", records[0])
	}
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)
	dir := filepath.Join(t.TempDir(), "Notes")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	rec := makeRecord(t, dir)
	if err := store.Add(rec); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Remove(rec.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := store.Get(rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Removal from tracking leaves the directory alone.
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory touched by registry removal: %v", err)
	}
}

func TestRemoveMissing(t *testing.T) {
	store := openTestStore(t)
	if err := store.Remove("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifierRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.GetVerifier(); !errors.Is(err, auth.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled before enrollment, got %v", err)
	}

	want := &auth.Verifier{
		Salt:       []byte("0123456789abcdef0123456789abcdef"),
		Iterations: 210000,
		Hash:       []byte("fedcba9876543210fedcba9876543210"),
	}
	if err := store.SetVerifier(want); err != nil {
		t.Fatalf("SetVerifier failed: %v", err)
	}

	got, err := store.GetVerifier()
	if err != nil {
		t.Fatalf("GetVerifier failed: %v", err)
	}
	if string(got.Salt) != string(want.Salt) || got.Iterations != want.Iterations || string(got.Hash) != string(want.Hash) {
		t.Errorf("verifier mismatch: got %+v, want %+v", got, want)
	}
}
