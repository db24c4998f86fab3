// Package ignore decides which directories a search never descends into.
//
// Rules come in three kinds, chosen from their first two characters:
//
//	\\host\share\dir or C:\dir   full path, compared as a prefix
//	\dir\sub                     root relative, compared after the volume
//	dir\sub                      substring, found anywhere in the path
//
// Forward and backward slashes are interchangeable and comparison is
// case-insensitive for ASCII letters.
package ignore

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sdejongh/filescout/internal/platform"
)

// Kind is the classification of a prepared rule
type Kind int

const (
	// KindSubstring rules match anywhere in the path
	KindSubstring Kind = iota
	// KindRootRelative rules match right after the drive or share
	KindRootRelative
	// KindFullPath rules match from the first character
	KindFullPath
)

func (k Kind) String() string {
	switch k {
	case KindFullPath:
		return "full-path"
	case KindRootRelative:
		return "root-relative"
	default:
		return "substring"
	}
}

// Rule is one user supplied "never search under here" entry
type Rule struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// Defaults returns the rules a fresh configuration starts with
func Defaults() []Rule {
	return []Rule{
		{Enabled: true, Path: `\System Volume Information`},
		{Enabled: false, Path: `Local Settings\Temporary Internet Files`},
	}
}

// Classify returns the kind a rule path prepares into
func Classify(path string) Kind {
	path = strings.TrimLeft(path, " ")
	switch {
	case platform.IsDrivePath(path):
		return KindFullPath
	case len(path) >= 2 && platform.IsSeparator(path[0]) && platform.IsSeparator(path[1]):
		return KindFullPath
	case len(path) >= 1 && platform.IsSeparator(path[0]):
		return KindRootRelative
	default:
		return KindSubstring
	}
}

type preparedRule struct {
	kind Kind
	text string
}

// Filter is an immutable, prepared set of enabled rules
type Filter struct {
	rules []preparedRule
}

// Prepare keeps the enabled rules and normalises them for Contains.
// The result does not share memory with rules.
func Prepare(rules []Rule) *Filter {
	f := &Filter{}
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		text := strings.TrimLeft(r.Path, " ")
		if text == "" {
			continue
		}
		kind := Classify(text)
		if kind == KindSubstring {
			text = "/" + text
		}
		text = fold(text)
		if text[len(text)-1] != '/' {
			text += "/"
		}
		f.rules = append(f.rules, preparedRule{kind: kind, text: text})
	}
	return f
}

// Len returns the number of active rules
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rules)
}

// Contains reports whether fullPath lies under an ignored directory.
// rootLen is the length of the search root prefix of fullPath: a match
// must extend past it, so a rule can never hide the root itself.
// Directory paths should carry a trailing separator.
func (f *Filter) Contains(fullPath string, rootLen int) bool {
	if f.Len() == 0 {
		return false
	}
	path := fold(fullPath)

	for _, r := range f.rules {
		n := len(r.text)
		switch r.kind {
		case KindFullPath:
			if n > rootLen && strings.HasPrefix(path, r.text) {
				return true
			}

		case KindRootRelative:
			off := platform.SkipRoot(fullPath)
			if off+n > rootLen && strings.HasPrefix(path[off:], r.text) {
				return true
			}

		case KindSubstring:
			// Rescan from the character after each occurrence so an
			// overlapping one past the root is still seen.
			for start := 0; start < len(path); {
				i := strings.Index(path[start:], r.text)
				if i < 0 {
					break
				}
				m := start + i
				if m+n > rootLen {
					return true
				}
				start = m + 1
			}
		}
	}
	return false
}

// fold lowercases ASCII letters and turns backslashes into slashes.
// Byte offsets are preserved.
func fold(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c == '\\':
			b[i] = '/'
		case c >= 'A' && c <= 'Z':
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// List is the editable rule list. It is safe for concurrent use, so rules
// can be edited while a session runs on a prepared snapshot.
type List struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewList creates a list holding a copy of rules
func NewList(rules []Rule) *List {
	l := &List{}
	l.rules = append(l.rules, rules...)
	return l
}

// Rules returns a snapshot of the rules
func (l *List) Rules() []Rule {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Rule(nil), l.rules...)
}

// Prepare prepares a snapshot of the current rules
func (l *List) Prepare() *Filter {
	return Prepare(l.Rules())
}

// Len returns the number of rules, enabled or not
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rules)
}

// Add appends a rule
func (l *List) Add(r Rule) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rules = append(l.rules, r)
}

// AddUnique enables the rule that already names path, or appends a new
// enabled one. Paths compare case-insensitively without trailing separator.
// It reports whether a rule was appended.
func (l *List) AddUnique(path string) bool {
	key := ruleKey(path)

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.rules {
		if ruleKey(l.rules[i].Path) == key {
			l.rules[i].Enabled = true
			return false
		}
	}
	l.rules = append(l.rules, Rule{Enabled: true, Path: path})
	return true
}

// Set replaces the rule at index i
func (l *List) Set(i int, r Rule) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.rules) {
		return fmt.Errorf("rule index %d out of range", i)
	}
	l.rules[i] = r
	return nil
}

// Remove deletes the rule at index i
func (l *List) Remove(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.rules) {
		return fmt.Errorf("rule index %d out of range", i)
	}
	l.rules = append(l.rules[:i], l.rules[i+1:]...)
	return nil
}

// Move relocates the rule at index from to index to, shifting the others
func (l *List) Move(from, to int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.rules)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("cannot move rule %d to %d: %d rules", from, to, n)
	}
	r := l.rules[from]
	l.rules = append(l.rules[:from], l.rules[from+1:]...)
	l.rules = append(l.rules[:to], append([]Rule{r}, l.rules[to:]...)...)
	return nil
}

// Reset restores the default rules
func (l *List) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rules = Defaults()
}

func ruleKey(path string) string {
	key := fold(strings.TrimLeft(path, " "))
	return strings.TrimRight(key, "/")
}
