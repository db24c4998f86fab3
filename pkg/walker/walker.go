// Package walker enumerates the directory trees of a search and emits the
// entries that pass every filter.
//
// Directories are scheduled on an explicit stack: the subdirectories found
// while listing one directory are deferred until the listing is finished and
// are then walked in enumeration order, each one completely before the next.
// The stack is allocated once per Walker and reused across roots.
package walker

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/sdejongh/filescout/internal/platform"
	"github.com/sdejongh/filescout/pkg/ignore"
	"github.com/sdejongh/filescout/pkg/logging"
	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/storage"
)

const (
	// DefaultMaxDeferred bounds the pending directory stack
	DefaultMaxDeferred = 1 << 16

	// DefaultBatchSize is the number of entries read per directory call
	DefaultBatchSize = 256
)

// Predicate is the attribute, size and date filter
type Predicate interface {
	Test(attrs models.Attributes, size int64, modTime time.Time) bool
}

// NameMatcher is the file name mask
type NameMatcher interface {
	Matches(name string) bool
}

// ContentTester decides whether a file's content matches
type ContentTester interface {
	Matches(ctx context.Context, path string, size int64, isLink bool) bool
}

// EmitFunc receives every matching entry. A non-nil error stops the walk.
type EmitFunc func(models.MatchedFile) error

// Options configure a Walker
type Options struct {
	// Criteria filters entries by attributes, size and date; nil accepts all
	Criteria Predicate
	// Content is consulted for files only; nil disables content search
	Content ContentTester
	// Ignore hides directories; nil ignores nothing
	Ignore *ignore.Filter
	// Logger receives skipped directories and enumeration errors
	Logger logging.Logger
	// Status receives the directory or file currently examined
	Status func(path string)
	// MaxDeferred caps the pending directory stack; when it is full the
	// walker descends into a directory as soon as it is found
	MaxDeferred int
	// BatchSize is the number of entries read per directory call
	BatchSize int
	// MaxPathLength rejects longer paths
	MaxPathLength int
}

// Stats are the walk counters. They may be read while a walk runs.
type Stats struct {
	DirsScanned     atomic.Int64
	DirsIgnored     atomic.Int64
	EntriesExamined atomic.Int64
	FilesGrepped    atomic.Int64
	Matches         atomic.Int64
	Errors          atomic.Int64
}

// Fill copies the counters into s
func (st *Stats) Fill(s *models.Statistics) {
	s.DirsScanned = st.DirsScanned.Load()
	s.DirsIgnored = st.DirsIgnored.Load()
	s.EntriesExamined = st.EntriesExamined.Load()
	s.FilesGrepped = st.FilesGrepped.Load()
	s.Matches = st.Matches.Load()
	s.Errors = st.Errors.Load()
}

// Walker walks search roots. It is used by one goroutine at a time.
type Walker struct {
	backend storage.Backend
	opts    Options
	stats   Stats

	// pending holds directories waiting to be walked
	pending []string
	// fallbacks counts directories walked immediately because pending was full
	fallbacks int
}

// New creates a walker over backend
func New(backend storage.Backend, opts Options) *Walker {
	if opts.Logger == nil {
		opts.Logger = logging.NewNullLogger()
	}
	if opts.MaxDeferred <= 0 {
		opts.MaxDeferred = DefaultMaxDeferred
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxPathLength <= 0 {
		opts.MaxPathLength = platform.MaxPathLength()
	}

	return &Walker{
		backend: backend,
		opts:    opts,
		pending: make([]string, 0, min(opts.MaxDeferred, 1024)),
	}
}

// Stats returns the live counters
func (w *Walker) Stats() *Stats {
	return &w.stats
}

// Walk enumerates root and, when root.Recurse is set, every directory below
// it. Matching entries are passed to emit in enumeration order.
// Walk returns ctx's error when cancelled and emit's error when it fails;
// file system errors are logged and skipped.
func (w *Walker) Walk(ctx context.Context, root models.SearchRoot, mask NameMatcher, emit EmitFunc) error {
	// the root prefix includes its separator: an ignore rule must end past it
	rootLen := len(platform.WithTrailingSeparator(root.Path))

	return w.walkTree(ctx, root.Path, rootLen, root.Recurse, mask, emit)
}

// walkTree walks dir and every directory deferred below it. Only entries
// pushed after its own starting mark are consumed, so a nested call made
// while pending is full leaves its caller's entries alone.
func (w *Walker) walkTree(ctx context.Context, dir string, rootLen int, recurse bool, mask NameMatcher, emit EmitFunc) error {
	base := len(w.pending)
	w.pending = append(w.pending, dir)
	defer func() {
		clear(w.pending[base:])
		w.pending = w.pending[:base]
	}()

	for len(w.pending) > base {
		if err := ctx.Err(); err != nil {
			return err
		}

		top := len(w.pending) - 1
		current := w.pending[top]
		w.pending = w.pending[:top]

		mark := len(w.pending)
		if err := w.walkDir(ctx, current, rootLen, recurse, mask, emit); err != nil {
			return err
		}

		// pop in enumeration order
		children := w.pending[mark:]
		for i, j := 0, len(children)-1; i < j; i, j = i+1, j-1 {
			children[i], children[j] = children[j], children[i]
		}
	}
	return nil
}

// walkDir lists one directory, emits its matching entries and defers its
// subdirectories
func (w *Walker) walkDir(ctx context.Context, dir string, rootLen int, recurse bool, mask NameMatcher, emit EmitFunc) error {
	log := w.opts.Logger

	if w.opts.Ignore.Contains(platform.WithTrailingSeparator(dir), rootLen) {
		w.stats.DirsIgnored.Add(1)
		log.Info(ctx, "skipped ignored directory", logging.Path(dir))
		return nil
	}

	w.status(dir)

	reader, err := w.backend.OpenDir(ctx, dir)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !platform.IsNotFound(err) {
			w.stats.Errors.Add(1)
			log.Warn(ctx, "cannot list directory: "+err.Error(), logging.Path(dir))
		}
		return nil
	}
	defer reader.Close()

	w.stats.DirsScanned.Add(1)

	for {
		batch, err := reader.Next(ctx, w.opts.BatchSize)
		for i := range batch {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if eerr := w.examine(ctx, &batch[i], rootLen, recurse, mask, emit); eerr != nil {
				return eerr
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			w.stats.Errors.Add(1)
			log.Warn(ctx, "cannot read directory: "+err.Error(), logging.Path(dir))
			return nil
		}
	}
}

// examine filters one entry, emits it on a match and schedules directories
func (w *Walker) examine(ctx context.Context, e *storage.FileInfo, rootLen int, recurse bool, mask NameMatcher, emit EmitFunc) error {
	if e.Name == "." || e.Name == ".." {
		return nil
	}
	w.stats.EntriesExamined.Add(1)

	path := e.Path()
	if len(path) > w.opts.MaxPathLength {
		w.stats.Errors.Add(1)
		w.opts.Logger.Error(ctx, "path too long", nil, logging.Path(path))
		return nil
	}

	if w.matches(ctx, e, path, mask) {
		w.stats.Matches.Add(1)
		if err := emit(e.Matched()); err != nil {
			return err
		}
	}

	// links are reported but never followed
	if !e.IsDir || e.IsLink || !recurse {
		return nil
	}

	if len(w.pending) < w.opts.MaxDeferred {
		w.pending = append(w.pending, path)
		return nil
	}

	w.fallbacks++
	return w.walkTree(ctx, path, rootLen, recurse, mask, emit)
}

func (w *Walker) matches(ctx context.Context, e *storage.FileInfo, path string, mask NameMatcher) bool {
	if w.opts.Criteria != nil && !w.opts.Criteria.Test(e.Attributes, e.Size, e.ModTime) {
		return false
	}
	if mask != nil && !mask.Matches(e.Name) {
		return false
	}
	if w.opts.Content == nil {
		return true
	}
	if e.IsDir {
		return false
	}

	w.status(path)
	w.stats.FilesGrepped.Add(1)
	return w.opts.Content.Matches(ctx, path, e.Size, e.IsLink)
}

func (w *Walker) status(path string) {
	if w.opts.Status != nil {
		w.opts.Status(path)
	}
}
