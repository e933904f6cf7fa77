package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
)

// writeRawArchive builds a minimal tar.gz with a single regular entry,
// bypassing Pack's path normalization.
func writeRawArchive(w io.Writer, name string, content []byte) error {
	gzw := gzip.NewWriter(w)
	tw := tar.NewWriter(gzw)

	hdr := &tar.Header{
		Name:     name,
		Mode:     0600,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := tw.Write(content); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gzw.Close()
}
