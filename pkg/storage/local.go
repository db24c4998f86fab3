package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sdejongh/filescout/internal/platform"
)

// Local is the operating system file system backend
type Local struct{}

// NewLocal creates a new local filesystem backend
func NewLocal() *Local {
	return &Local{}
}

// OpenDir starts enumerating a directory
func (l *Local) OpenDir(ctx context.Context, path string) (DirReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}

	return &localDir{f: f, dir: path}, nil
}

// Open opens a file for reading
func (l *Local) Open(ctx context.Context, path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// Stat returns file metadata, following symbolic links
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return newFileInfo(filepath.Dir(path), info), nil
}

// Lstat returns file metadata without following symbolic links
func (l *Local) Lstat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return newFileInfo(filepath.Dir(path), info), nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

type localDir struct {
	f   *os.File
	dir string
}

func (d *localDir) Next(ctx context.Context, n int) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := d.f.ReadDir(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(entries) == 0 {
		return nil, io.EOF
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		info, ierr := e.Info()
		if ierr != nil {
			// removed since it was listed
			if errors.Is(ierr, fs.ErrNotExist) {
				continue
			}
			return infos, fmt.Errorf("failed to stat %s: %w", e.Name(), ierr)
		}
		infos = append(infos, *newFileInfo(d.dir, info))
	}
	return infos, nil
}

func (d *localDir) Close() error {
	return d.f.Close()
}

func newFileInfo(dir string, info fs.FileInfo) *FileInfo {
	mode := info.Mode()
	return &FileInfo{
		Name:       info.Name(),
		Dir:        dir,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		IsDir:      info.IsDir(),
		IsLink:     mode&fs.ModeSymlink != 0,
		Attributes: platform.Attributes(info.Name(), info),
	}
}
