package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PlaceholderName is the reserved entry written when a folder has zero
// entries, so the empty structure survives the round trip. Only the entry
// directly under the archive root is reserved and skipped on unpack; a
// user file of the same name deeper in the tree is real data.
const PlaceholderName = ".lockdir-keep"

var (
	ErrPackFailed   = errors.New("failed to pack directory")
	ErrUnpackFailed = errors.New("failed to unpack archive")
)

// Pack writes a gzip-compressed tar of the tree rooted at dir to w.
// The folder's own name is the archive root for every entry.
func Pack(dir string, w io.Writer) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackFailed, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrPackFailed, dir)
	}

	root := filepath.Base(dir)

	gzw := gzip.NewWriter(w)
	tw := tar.NewWriter(gzw)

	entries := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join(root, rel))

		fi, err := d.Info()
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Explicit headers keep empty subdirectories alive.
			hdr, err := tar.FileInfoHeader(fi, "")
			if err != nil {
				return err
			}
			hdr.Name = name + "/"
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			entries++
			return nil
		}

		if !fi.Mode().IsRegular() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		hdr.Name = name

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, f); err != nil {
			f.Close()
			return err
		}
		entries++
		return f.Close()
	})
	if err != nil {
		tw.Close()
		gzw.Close()
		return fmt.Errorf("%w: %v", ErrPackFailed, err)
	}

	if entries == 0 {
		hdr := &tar.Header{
			Name:     filepath.ToSlash(filepath.Join(root, PlaceholderName)),
			Mode:     0600,
			Size:     0,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			tw.Close()
			gzw.Close()
			return fmt.Errorf("%w: %v", ErrPackFailed, err)
		}
	}

	if err := tw.Close(); err != nil {
		gzw.Close()
		return fmt.Errorf("%w: %v", ErrPackFailed, err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrPackFailed, err)
	}
	return nil
}

// Unpack restores an archive produced by Pack into parentDir. The archive's
// root name becomes a directory under parentDir. Placeholder entries are
// skipped; entries escaping parentDir are rejected.
func Unpack(r io.Reader, parentDir string) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnpackFailed, err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnpackFailed, err)
		}

		name := filepath.FromSlash(hdr.Name)
		target, err := securePath(parentDir, name)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnpackFailed, err)
		}

		if isPlaceholder(hdr.Name) {
			// Reserved entry, only its parent directory matters.
			if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
				return fmt.Errorf("%w: %v", ErrUnpackFailed, err)
			}
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("%w: %v", ErrUnpackFailed, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
				return fmt.Errorf("%w: %v", ErrUnpackFailed, err)
			}
			if err := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("%w: %v", ErrUnpackFailed, err)
			}
		default:
			// Symlinks and specials are not produced by Pack; skip them
			// rather than materialize something Pack never wrote.
			continue
		}
	}

	return nil
}

// isPlaceholder reports whether the slash-form entry name is the reserved
// root-level placeholder, exactly one level under the archive root.
func isPlaceholder(name string) bool {
	parts := strings.Split(strings.TrimSuffix(name, "/"), "/")
	return len(parts) == 2 && parts[1] == PlaceholderName
}

// securePath joins name under root and rejects path traversal.
func securePath(root, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute entry path %s", name)
	}
	target := filepath.Join(root, name)
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	if absTarget != absRoot && !strings.HasPrefix(absTarget, absRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %s escapes destination", name)
	}
	return target, nil
}

func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
