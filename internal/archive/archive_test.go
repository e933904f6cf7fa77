package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	src := t.TempDir()
	dir := filepath.Join(src, "Notes")
	if err := os.MkdirAll(filepath.Join(dir, "sub", "deep"), 0700); err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	files := map[string][]byte{
		"a.txt":            []byte("alpha"),
		"sub/b.txt":        []byte("bravo"),
		"sub/deep/c.bin":   {0x00, 0xff, 0x10},
		"sub/deep/zero.md": {},
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), content, 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	var buf bytes.Buffer
	if err := Pack(dir, &buf); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	dst := t.TempDir()
	if err := Unpack(&buf, dst); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(dst, "Notes", filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("failed to read restored %s: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s: content mismatch: got %q, want %q", name, got, want)
		}
	}
}

func TestPackUnpackEmptyDirectory(t *testing.T) {
	src := t.TempDir()
	dir := filepath.Join(src, "Empty")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	var buf bytes.Buffer
	if err := Pack(dir, &buf); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	dst := t.TempDir()
	if err := Unpack(&buf, dst); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	restored := filepath.Join(dst, "Empty")
	info, err := os.Stat(restored)
	if err != nil {
		t.Fatalf("restored directory missing: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("restored path is not a directory")
	}

	// The placeholder must never appear post-unpack.
	entries, err := os.ReadDir(restored)
	if err != nil {
		t.Fatalf("failed to read restored dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}

func TestPackUnpackEmptySubdirectories(t *testing.T) {
	src := t.TempDir()
	dir := filepath.Join(src, "Mixed")
	if err := os.MkdirAll(filepath.Join(dir, "full"), 0700); err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "hollow", "inner"), 0700); err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "full", "f.txt"), []byte("x"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var buf bytes.Buffer
	if err := Pack(dir, &buf); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	dst := t.TempDir()
	if err := Unpack(&buf, dst); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	inner := filepath.Join(dst, "Mixed", "hollow", "inner")
	info, err := os.Stat(inner)
	if err != nil {
		t.Fatalf("empty subdirectory lost in round trip: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("restored inner path is not a directory")
	}
}

func TestPlaceholderNameInSubdirSurvives(t *testing.T) {
	// Only the root-level placeholder path is reserved. A user file that
	// happens to share its name deeper in the tree must round-trip intact.
	src := t.TempDir()
	dir := filepath.Join(src, "Notes")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0700); err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	want := []byte("user data")
	if err := os.WriteFile(filepath.Join(dir, "sub", PlaceholderName), want, 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var buf bytes.Buffer
	if err := Pack(dir, &buf); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	dst := t.TempDir()
	if err := Unpack(&buf, dst); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dst, "Notes", "sub", PlaceholderName))
	if err != nil {
		t.Fatalf("round trip lost user file sub/%s: %v", PlaceholderName, err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("content mismatch: got %q, want %q", got, want)
	}
}

func TestPackRejectsFile(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var buf bytes.Buffer
	if err := Pack(file, &buf); err == nil {
		t.Error("expected error packing a regular file")
	}
}

func TestUnpackRejectsTraversal(t *testing.T) {
	// Hand-build an archive whose entry escapes the destination.
	var buf bytes.Buffer
	if err := writeRawArchive(&buf, "../evil.txt", []byte("nope")); err != nil {
		t.Fatalf("failed to build archive: %v", err)
	}

	dst := t.TempDir()
	if err := Unpack(&buf, dst); err == nil {
		t.Error("expected traversal entry to be rejected")
	}
	if _, err := os.Stat(filepath.Join(dst, "..", "evil.txt")); err == nil {
		t.Error("traversal entry was materialized")
	}
}
