package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ZipArchiver streams a zip bundle to a writer, e.g. an HTTP response.
type ZipArchiver struct {
	w       io.Writer
	modTime time.Time
}

// NewZipArchiver writes bundles to w.
func NewZipArchiver(w io.Writer) *ZipArchiver {
	return &ZipArchiver{w: w, modTime: time.Now()}
}

func (z *ZipArchiver) Archive(ctx context.Context, _ string, files []Payload) error {
	return writeZip(ctx, z.w, files, z.modTime)
}

func writeZip(ctx context.Context, w io.Writer, files []Payload, modTime time.Time) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return err
		}
		header := &zip.FileHeader{
			Name:     f.Filename,
			Method:   zip.Deflate,
			Modified: modTime,
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			zw.Close()
			return fmt.Errorf("failed to add %s: %w", f.Filename, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			zw.Close()
			return fmt.Errorf("failed to write %s: %w", f.Filename, err)
		}
	}
	return zw.Close()
}

// FileArchiver writes "<name>.zip" into a directory. The file is written to a
// temporary sibling and renamed into place.
type FileArchiver struct {
	Dir string

	// Path is set to the written file after a successful Archive.
	Path string
}

func (a *FileArchiver) Archive(ctx context.Context, name string, files []Payload) error {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	var buf bytes.Buffer
	if err := writeZip(ctx, &buf, files, time.Now()); err != nil {
		return err
	}

	dest := filepath.Join(a.Dir, name+".zip")
	if err := writeAtomic(dest, buf.Bytes()); err != nil {
		return err
	}
	a.Path = dest
	return nil
}

func writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(dest), err)
	}
	return nil
}
