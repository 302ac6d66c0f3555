package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirArchiver writes each payload as a plain file under "<Dir>/<name>/".
type DirArchiver struct {
	Dir string

	// Path is set to the bundle directory after a successful Archive.
	Path string
}

func (a *DirArchiver) Archive(ctx context.Context, name string, files []Payload) error {
	dest := filepath.Join(a.Dir, name)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Filename != filepath.Base(f.Filename) {
			return fmt.Errorf("invalid payload name %q", f.Filename)
		}
		if err := writeAtomic(filepath.Join(dest, f.Filename), f.Content); err != nil {
			return err
		}
	}
	a.Path = dest
	return nil
}
