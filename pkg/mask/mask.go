// Package mask implements file name mask groups such as "*.txt;*.c|*.bak".
//
//	?   any character
//	*   any string, including empty
//	#   any digit
//
// Masks are separated by ';'. Masks after a single '|' exclude names. An
// empty include part before '|' means "*". Matching ignores case and a name
// without extension also matches masks ending in "." (so "*.*" matches
// "Makefile").
package mask

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Group is a parsed mask group
type Group struct {
	source   string
	includes []string
	excludes []string
	matchAll bool
}

// ParseError reports the offset of a malformed mask group
type ParseError struct {
	Group   string
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid mask %q at offset %d: %s", e.Group, e.Offset, e.Message)
}

// Parse prepares a mask group for matching
func Parse(s string) (*Group, error) {
	g := &Group{source: s}

	include, exclude := s, ""
	if i := strings.IndexByte(s, '|'); i >= 0 {
		include, exclude = s[:i], s[i+1:]
		if j := strings.IndexByte(exclude, '|'); j >= 0 {
			return nil, &ParseError{Group: s, Offset: i + 1 + j, Message: "'|' may appear only once"}
		}
		if strings.Trim(exclude, "; ") == "" {
			return nil, &ParseError{Group: s, Offset: i, Message: "'|' must be followed by a mask"}
		}
	}

	var err error
	if g.includes, err = splitMasks(s, include, 0); err != nil {
		return nil, err
	}
	if g.excludes, err = splitMasks(s, exclude, len(include)+1); err != nil {
		return nil, err
	}
	if len(g.includes) == 0 {
		g.includes = []string{"*"}
	}

	for _, m := range g.includes {
		if m == "*" || m == "*.*" {
			g.matchAll = true
		}
	}

	return g, nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) *Group {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

func splitMasks(group, part string, base int) ([]string, error) {
	var masks []string
	offset := base
	for _, raw := range strings.Split(part, ";") {
		m := strings.TrimSpace(raw)
		if m != "" {
			pattern := translate(strings.ToLower(m))
			if !doublestar.ValidatePattern(pattern) {
				return nil, &ParseError{Group: group, Offset: offset, Message: "malformed mask " + m}
			}
			masks = append(masks, pattern)
		}
		offset += len(raw) + 1
	}
	return masks, nil
}

// translate converts a mask into a doublestar pattern: only '?', '*' and
// '#' are special, everything else is literal.
func translate(m string) string {
	var b strings.Builder
	for i := 0; i < len(m); i++ {
		switch c := m[i]; c {
		case '#':
			b.WriteString("[0-9]")
		case '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '/':
			// names never contain separators
			b.WriteString("\\/")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// String returns the source text of the group
func (g *Group) String() string {
	return g.source
}

// MatchesAll reports whether every name passes the group
func (g *Group) MatchesAll() bool {
	return g.matchAll && len(g.excludes) == 0
}

// Matches reports whether name passes the group
func (g *Group) Matches(name string) bool {
	if g.MatchesAll() {
		return true
	}
	lower := strings.ToLower(name)
	for _, m := range g.excludes {
		if matchOne(m, lower) {
			return false
		}
	}
	if g.matchAll {
		return true
	}
	for _, m := range g.includes {
		if matchOne(m, lower) {
			return true
		}
	}
	return false
}

func matchOne(pattern, name string) bool {
	if ok, _ := doublestar.Match(pattern, name); ok {
		return true
	}
	if !strings.Contains(name, ".") {
		ok, _ := doublestar.Match(pattern, name+".")
		return ok
	}
	return false
}
