package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sdejongh/filescout/pkg/models"
)

// FileInfo represents metadata about one directory entry, taken without
// following symbolic links
type FileInfo struct {
	Name       string
	Dir        string
	Size       int64
	ModTime    time.Time
	IsDir      bool
	IsLink     bool
	Attributes models.Attributes
}

// Path returns the full path of the entry
func (f *FileInfo) Path() string {
	return filepath.Join(f.Dir, f.Name)
}

// Matched converts the entry into a result record
func (f *FileInfo) Matched() models.MatchedFile {
	return models.MatchedFile{
		Name:       f.Name,
		Dir:        f.Dir,
		Size:       f.Size,
		Attributes: f.Attributes,
		ModTime:    f.ModTime,
		IsDir:      f.IsDir,
	}
}

// DirReader enumerates one directory in the order the file system returns
// entries. Next returns io.EOF once every entry was returned.
type DirReader interface {
	// Next returns up to n entries
	Next(ctx context.Context, n int) ([]FileInfo, error)

	// Close releases the directory handle
	Close() error
}

// Backend defines the file system operations used by a search.
// Implementations include the local file system.
type Backend interface {
	// OpenDir starts enumerating a directory
	OpenDir(ctx context.Context, path string) (DirReader, error)

	// Open opens a file for reading
	Open(ctx context.Context, path string) (*os.File, error)

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata, following symbolic links
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Lstat returns file metadata for the link itself
	Lstat(ctx context.Context, path string) (*FileInfo, error)

	// Close releases any resources held by the backend
	Close() error
}
