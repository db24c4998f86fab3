// Package grep decides whether a file's content matches a search pattern.
//
// Files are scanned through a window of bounded size, so memory use does not
// depend on file size. Literal and hex patterns are searched in the raw
// window; regular expressions are applied line by line.
package grep

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/sdejongh/filescout/pkg/logging"
	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/ratelimit"
)

const (
	// DefaultWindowSize is 40 MiB of content plus 1 KiB for alignment slack
	DefaultWindowSize = 40<<20 + 1024

	// DefaultMaxLineLength caps the length of a regex line
	DefaultMaxLineLength = 16 << 20

	// minWindowSize keeps tiny configured windows usable for regex lines
	minWindowSize = 16
)

// ErrPattern is wrapped by every pattern compilation error
var ErrPattern = errors.New("invalid search pattern")

// Options tune a Matcher
type Options struct {
	// WindowSize is the number of bytes viewed at once
	WindowSize int
	// MaxLineLength is the longest regex line; longer lines are cut
	MaxLineLength int
	// Limiter throttles window reads; nil means unlimited
	Limiter *ratelimit.Limiter
	// Logger receives I/O errors with the offending path
	Logger logging.Logger
}

// Matcher is a compiled pattern. It is safe for use by one goroutine at a time.
type Matcher struct {
	pattern models.GrepPattern
	literal *literalSearcher
	re      *regexp.Regexp
	opts    Options
}

// Compile validates and prepares a pattern
func Compile(p models.GrepPattern, opts Options) (*Matcher, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPattern, err)
	}

	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultWindowSize
	}
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = DefaultMaxLineLength
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNullLogger()
	}

	m := &Matcher{pattern: p, opts: opts}

	switch p.Kind {
	case models.PatternLiteral:
		m.literal = newLiteralSearcher([]byte(p.Text), p.CaseSensitive)

	case models.PatternHex:
		b, err := ParseHex(p.Text)
		if err != nil {
			return nil, err
		}
		m.literal = newLiteralSearcher(b, true)

	case models.PatternRegex:
		expr := p.Text
		if !p.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPattern, err)
		}
		m.re = re
	}

	if m.literal != nil && opts.WindowSize < len(m.literal.pat)+2 {
		m.opts.WindowSize = len(m.literal.pat) + 2
	}
	if m.opts.WindowSize < minWindowSize {
		m.opts.WindowSize = minWindowSize
	}

	return m, nil
}

// ParseHex converts "41 42 0d0a" into bytes
func ParseHex(s string) ([]byte, error) {
	digits := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ',', '-':
			return -1
		}
		return r
	}, s)
	if digits == "" {
		return nil, fmt.Errorf("%w: hex pattern is empty", ErrPattern)
	}
	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("%w: hex pattern has an odd number of digits", ErrPattern)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPattern, err)
	}
	return b, nil
}

// Pattern returns the source pattern
func (m *Matcher) Pattern() models.GrepPattern {
	return m.pattern
}

// Matches reports whether the file at path contains the pattern.
// size is the enumerated size; symbolic links have theirs probed through
// the opened target. Any I/O error is logged and reported as no match.
// Cancellation of ctx returns false without logging.
func (m *Matcher) Matches(ctx context.Context, path string, size int64, isLink bool) (matched bool) {
	if size == 0 && !isLink {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		m.opts.Logger.Error(ctx, "cannot open file", err, logging.Path(path))
		return false
	}
	defer f.Close()

	// The open handle bounds the scan: mapping past the current end of a
	// file that shrank since enumeration would fault.
	info, err := f.Stat()
	if err != nil {
		m.opts.Logger.Error(ctx, "cannot read file size", err, logging.Path(path))
		return false
	}
	if isLink || info.Size() < size {
		size = info.Size()
	}
	if size == 0 {
		return false
	}

	w := newWindow(f)
	defer w.close()

	// A file truncated while mapped raises a fault instead of an error
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			m.opts.Logger.Error(ctx, "file changed while reading", fmt.Errorf("%v", r), logging.Path(path))
			matched = false
		}
	}()

	var scanErr error
	if m.re != nil {
		matched, scanErr = m.scanLines(ctx, w, size)
	} else {
		matched, scanErr = m.scanLiteral(ctx, w, size)
	}

	if scanErr != nil && ctx.Err() == nil {
		m.opts.Logger.Error(ctx, "cannot read file", scanErr, logging.Path(path))
		return false
	}
	return matched && ctx.Err() == nil
}

// view throttles and maps [off, off+n)
func (m *Matcher) view(ctx context.Context, w window, off int64, n int) ([]byte, error) {
	if err := m.opts.Limiter.WaitN(ctx, n); err != nil {
		return nil, err
	}
	return w.view(off, n)
}
