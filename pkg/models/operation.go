package models

import (
	"strings"
)

// SearchMode selects what a session does with the entries it finds
type SearchMode string

const (
	// ModeFresh walks the roots and collects every match
	ModeFresh SearchMode = "fresh"
	// ModeIntersect keeps the previous results that still match
	ModeIntersect SearchMode = "intersect"
	// ModeSubtract keeps the previous results that no longer match
	ModeSubtract SearchMode = "subtract"
	// ModeDuplicates walks the roots and groups duplicate files
	ModeDuplicates SearchMode = "duplicates"
)

// IsRefine reports whether the mode re-tests previous results instead of walking
func (m SearchMode) IsRefine() bool {
	return m == ModeIntersect || m == ModeSubtract
}

// ParseSearchMode converts user input into a SearchMode
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(strings.ToLower(s)) {
	case ModeFresh, "":
		return ModeFresh, nil
	case ModeIntersect:
		return ModeIntersect, nil
	case ModeSubtract:
		return ModeSubtract, nil
	case ModeDuplicates:
		return ModeDuplicates, nil
	}
	return "", &ValidationError{Field: "mode", Message: "must be fresh, intersect, subtract or duplicates"}
}

// SearchRoot is one directory to walk
type SearchRoot struct {
	// Path is the directory to start from
	Path string `yaml:"path" json:"path"`

	// Mask is the name-mask expression ("*.go;*.md|*_test.go")
	Mask string `yaml:"mask" json:"mask"`

	// Recurse enables descending into subdirectories
	Recurse bool `yaml:"recurse" json:"recurse"`
}

// Validate checks the root for obvious mistakes
func (r SearchRoot) Validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return &ValidationError{Field: "Path", Message: "search root cannot be empty"}
	}
	return nil
}

// PatternKind selects how GrepPattern.Text is interpreted
type PatternKind string

const (
	// PatternLiteral searches for the raw bytes of Text
	PatternLiteral PatternKind = "literal"
	// PatternHex searches for the bytes spelled by Text in hexadecimal
	PatternHex PatternKind = "hex"
	// PatternRegex applies Text as a regular expression to each line
	PatternRegex PatternKind = "regex"
)

// LineEndings selects which sequences terminate a line in regex mode.
// A NUL byte always terminates a line.
type LineEndings struct {
	CR   bool `yaml:"cr" json:"cr"`
	LF   bool `yaml:"lf" json:"lf"`
	CRLF bool `yaml:"crlf" json:"crlf"`
}

// AllLineEndings enables CR, LF and CRLF
func AllLineEndings() LineEndings {
	return LineEndings{CR: true, LF: true, CRLF: true}
}

// ParseLineEndings parses a comma separated list such as "lf,crlf"
func ParseLineEndings(s string) (LineEndings, error) {
	var eol LineEndings
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "cr":
			eol.CR = true
		case "lf":
			eol.LF = true
		case "crlf":
			eol.CRLF = true
		case "":
		default:
			return eol, &ValidationError{Field: "eol", Message: "unknown line ending " + part}
		}
	}
	return eol, nil
}

// String renders the enabled endings as "cr,lf,crlf"
func (e LineEndings) String() string {
	var parts []string
	if e.CR {
		parts = append(parts, "cr")
	}
	if e.LF {
		parts = append(parts, "lf")
	}
	if e.CRLF {
		parts = append(parts, "crlf")
	}
	return strings.Join(parts, ",")
}

// GrepPattern describes a content search
type GrepPattern struct {
	Kind          PatternKind `json:"kind"`
	Text          string      `json:"text"`
	CaseSensitive bool        `json:"case_sensitive"`
	WholeWords    bool        `json:"whole_words"`
	LineEndings   LineEndings `json:"line_endings"`
}

// Validate checks if the pattern is usable
func (p *GrepPattern) Validate() error {
	if p.Text == "" {
		return &ValidationError{Field: "Text", Message: "search text cannot be empty"}
	}
	switch p.Kind {
	case PatternLiteral, PatternHex:
	case PatternRegex:
		if p.LineEndings == (LineEndings{}) {
			return &ValidationError{Field: "LineEndings", Message: "regex search needs at least one line ending"}
		}
	default:
		return &ValidationError{Field: "Kind", Message: "must be literal, hex or regex"}
	}
	return nil
}

// DuplicateCriteria selects the identity used to group duplicate files
type DuplicateCriteria struct {
	ByName    bool `yaml:"by_name" json:"by_name"`
	BySize    bool `yaml:"by_size" json:"by_size"`
	ByContent bool `yaml:"by_content" json:"by_content"`
}

// Validate checks that at least one key is selected
func (c DuplicateCriteria) Validate() error {
	if !c.ByName && !c.BySize {
		return &ValidationError{Field: "duplicates", Message: "select at least name or size"}
	}
	if c.ByContent && !c.BySize {
		return &ValidationError{Field: "duplicates.by_content", Message: "content comparison requires size comparison"}
	}
	return nil
}

// ParseDuplicateCriteria parses a list such as "name,size,content"
func ParseDuplicateCriteria(s string) (DuplicateCriteria, error) {
	var c DuplicateCriteria
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "name":
			c.ByName = true
		case "size":
			c.BySize = true
		case "content", "md5", "hash":
			c.ByContent = true
		case "":
		default:
			return c, &ValidationError{Field: "by", Message: "unknown duplicate key " + part}
		}
	}
	return c, c.Validate()
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
