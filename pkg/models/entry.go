package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Attributes is a bit set describing a directory entry
type Attributes uint32

const (
	// AttrReadOnly is set when the owner cannot write the entry
	AttrReadOnly Attributes = 1 << iota
	// AttrHidden is set for dot-files and dot-directories
	AttrHidden
	// AttrDirectory is set for directories
	AttrDirectory
	// AttrSymlink is set for symbolic links (the link itself, not its target)
	AttrSymlink
	// AttrExecutable is set when any execute bit is present on a regular file
	AttrExecutable
	// AttrSystem is set for devices, sockets and named pipes
	AttrSystem
)

var attributeNames = []struct {
	attr Attributes
	name string
	flag byte
}{
	{AttrDirectory, "directory", 'd'},
	{AttrReadOnly, "readonly", 'r'},
	{AttrHidden, "hidden", 'h'},
	{AttrSystem, "system", 's'},
	{AttrSymlink, "symlink", 'l'},
	{AttrExecutable, "executable", 'x'},
}

// Has reports whether every bit of flag is set
func (a Attributes) Has(flag Attributes) bool {
	return a&flag == flag
}

// String renders the attributes as a fixed-width flag string such as "d-h---"
func (a Attributes) String() string {
	var b strings.Builder
	for _, n := range attributeNames {
		if a.Has(n.attr) {
			b.WriteByte(n.flag)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// ParseAttribute resolves an attribute name ("hidden", "readonly", ...)
func ParseAttribute(name string) (Attributes, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range attributeNames {
		if n.name == name || (len(name) == 1 && name[0] == n.flag) {
			return n.attr, nil
		}
	}
	return 0, fmt.Errorf("unknown attribute: %q", name)
}

// MatchedFile is one entry that passed every filter of a session.
// Size, attributes and timestamp are a snapshot taken at enumeration time.
type MatchedFile struct {
	// Name is the entry name without directory
	Name string `json:"name"`

	// Dir is the parent directory path
	Dir string `json:"dir"`

	// Size in bytes
	Size int64 `json:"size"`

	// Attributes of the entry itself (links are not followed)
	Attributes Attributes `json:"attributes"`

	// ModTime is the last write time
	ModTime time.Time `json:"mod_time"`

	// IsDir indicates if this is a directory
	IsDir bool `json:"is_dir"`
}

// Path returns the full path of the entry
func (f MatchedFile) Path() string {
	return filepath.Join(f.Dir, f.Name)
}

// IsLink reports whether the entry is a symbolic link
func (f MatchedFile) IsLink() bool {
	return f.Attributes.Has(AttrSymlink)
}
