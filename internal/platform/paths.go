package platform

import (
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sdejongh/filescout/pkg/models"
)

// MaxPathLength is the longest path the walker will build
func MaxPathLength() int {
	if runtime.GOOS == "windows" {
		return 32767
	}
	return 4096
}

// IsSeparator reports whether c separates path elements.
// Both forms are accepted everywhere so ignore rules written with
// backslashes work against slash paths and vice versa.
func IsSeparator(c byte) bool {
	return c == '/' || c == '\\'
}

// WithTrailingSeparator appends the platform separator when missing
func WithTrailingSeparator(path string) string {
	if path == "" || IsSeparator(path[len(path)-1]) {
		return path
	}
	return path + string(filepath.Separator)
}

// NormalizeRoot cleans a search root and makes it absolute
func NormalizeRoot(path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	if IsUNCPath(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &PathError{Path: path, Message: err.Error()}
	}
	return abs, nil
}

// IsUNCPath checks if a path starts with a network share prefix (\\host or //host)
func IsUNCPath(path string) bool {
	return len(path) > 2 && IsSeparator(path[0]) && IsSeparator(path[1]) && !IsSeparator(path[2])
}

// IsDrivePath checks if a path starts with a drive letter followed by a colon
func IsDrivePath(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}
	c := path[0] | 0x20
	return c >= 'a' && c <= 'z'
}

// SkipRoot returns the offset of the first separator after the volume
// component of path: after "\\host\share" for network paths, after "C:"
// for drive paths and 0 otherwise.
func SkipRoot(path string) int {
	if IsUNCPath(path) {
		i := 2
		// host, then share
		for part := 0; part < 2; part++ {
			for i < len(path) && !IsSeparator(path[i]) {
				i++
			}
			if part == 0 && i < len(path) {
				i++
			}
		}
		return i
	}
	if IsDrivePath(path) {
		return 2
	}
	return 0
}

// Attributes derives the entry attributes from its name and lstat info
func Attributes(name string, info fs.FileInfo) models.Attributes {
	var attrs models.Attributes
	mode := info.Mode()

	if mode.IsDir() {
		attrs |= models.AttrDirectory
	}
	if mode&fs.ModeSymlink != 0 {
		attrs |= models.AttrSymlink
	}
	if mode&(fs.ModeDevice|fs.ModeCharDevice|fs.ModeNamedPipe|fs.ModeSocket) != 0 {
		attrs |= models.AttrSystem
	}
	if mode.Perm()&0200 == 0 {
		attrs |= models.AttrReadOnly
	}
	if mode.IsRegular() && mode.Perm()&0111 != 0 {
		attrs |= models.AttrExecutable
	}
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		attrs |= models.AttrHidden
	}

	return attrs
}

// IsNotFound reports errors that mean "nothing there" rather than a failure
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	if strings.IndexByte(path, 0) >= 0 {
		return &PathError{Path: path, Message: "path contains a NUL byte"}
	}

	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	if len(path) > MaxPathLength() {
		return &PathError{Path: path, Message: "path is too long"}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
