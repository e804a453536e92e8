package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS reads PDFs from a local directory. Files are already on disk, so
// Fetch returns the path as-is with a no-op cleanup.
type FS struct {
	dir string
}

func NewFS(dir string) *FS {
	return &FS{dir: dir}
}

func (f *FS) Name() string { return "fs:" + f.dir }

func (f *FS) List(ctx context.Context) ([]File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", f.dir, err)
	}
	var out []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		out = append(out, File{
			ID:   filepath.Join(f.dir, entry.Name()),
			Name: entry.Name(),
		})
	}
	return out, nil
}

func (f *FS) Fetch(_ context.Context, file File) (string, func(), error) {
	if _, err := os.Stat(file.ID); err != nil {
		return "", nil, fmt.Errorf("stat %s: %w", file.ID, err)
	}
	return file.ID, func() {}, nil
}

var _ Source = (*FS)(nil)
