// Package search runs search sessions: one worker goroutine walks the
// configured roots, or re-tests previous results, and fills a ResultList
// while reporting its progress on a status channel.
package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/sdejongh/filescout/internal/platform"
	"github.com/sdejongh/filescout/pkg/config"
	"github.com/sdejongh/filescout/pkg/criteria"
	"github.com/sdejongh/filescout/pkg/dupes"
	"github.com/sdejongh/filescout/pkg/ignore"
	"github.com/sdejongh/filescout/pkg/logging"
	"github.com/sdejongh/filescout/pkg/mask"
	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/storage"
)

// ErrAlreadyStarted is returned by Start on a session that already ran
var ErrAlreadyStarted = errors.New("session already started")

// Options are the tuning values of a session
type Options struct {
	WindowSize     int
	MaxLineLength  int
	HashBufferSize int
	// HashAlgorithm is "md5" or "xxhash"
	HashAlgorithm string
	// ReadLimit throttles content reads in bytes per second; 0 is unlimited
	ReadLimit int64
	// MaxResults caps the result list; 0 is unlimited
	MaxResults     int
	MaxDeferred    int
	RedrawInterval time.Duration
	RedrawBatch    int
	// LogLimit caps the log entries kept in the report; 0 keeps all
	LogLimit int
}

// DefaultOptions mirrors the configuration defaults
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig extracts the session options from a configuration
func OptionsFromConfig(cfg *config.Config) Options {
	p := cfg.Performance
	return Options{
		WindowSize:     p.WindowSize,
		MaxLineLength:  p.MaxLineLength,
		HashBufferSize: p.HashBufferSize,
		HashAlgorithm:  cfg.Duplicates.Hash,
		ReadLimit:      p.ReadLimit,
		MaxResults:     p.MaxResults,
		MaxDeferred:    p.MaxDeferred,
		RedrawInterval: time.Duration(p.RedrawIntervalMS) * time.Millisecond,
		RedrawBatch:    p.RedrawBatch,
		LogLimit:       p.LogLimit,
	}
}

// EngineConfig describes one session. It is read, never modified, by the
// session it is passed to.
type EngineConfig struct {
	// Roots are walked in order; refine modes use the first root's mask only
	Roots []models.SearchRoot

	// Pattern enables content search when set
	Pattern *models.GrepPattern

	// Ignore is the rule list snapshot taken when the session is created
	Ignore []ignore.Rule

	// Criteria filters entries by attributes, size and date
	Criteria criteria.Criteria

	Mode models.SearchMode

	// Duplicates selects the identity used by ModeDuplicates
	Duplicates models.DuplicateCriteria

	// Previous holds the results re-tested by the refine modes
	Previous []models.MatchedFile

	Options Options
}

// Validate checks the configuration before a session uses it
func (c *EngineConfig) Validate() error {
	switch c.Mode {
	case models.ModeFresh, models.ModeDuplicates:
		if len(c.Roots) == 0 {
			return &models.ValidationError{Field: "roots", Message: "at least one directory is required"}
		}
	case models.ModeIntersect, models.ModeSubtract:
	default:
		return &models.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", c.Mode)}
	}

	for i, r := range c.Roots {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("root %d: %w", i+1, err)
		}
		if _, err := mask.Parse(r.Mask); err != nil {
			return fmt.Errorf("root %d: %w", i+1, err)
		}
	}

	if c.Pattern != nil {
		if err := c.Pattern.Validate(); err != nil {
			return err
		}
	}

	if c.Mode == models.ModeDuplicates {
		if err := c.Duplicates.Validate(); err != nil {
			return err
		}
		switch c.Options.HashAlgorithm {
		case "", dupes.HashMD5, dupes.HashXXHash:
		default:
			return &models.ValidationError{Field: "hash", Message: "must be 'md5' or 'xxhash'"}
		}
	}

	return c.Criteria.Validate()
}

// Engine creates sessions sharing one storage backend and base logger
type Engine struct {
	backend storage.Backend
	logger  logging.Logger
}

// NewEngine creates an engine; logger may be nil
func NewEngine(backend storage.Backend, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{backend: backend, logger: logger}
}

// NewSession validates cfg and prepares a session. Root paths are made
// absolute; cfg itself is left untouched.
func (e *Engine) NewSession(cfg *EngineConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	roots := make([]models.SearchRoot, len(cfg.Roots))
	for i, r := range cfg.Roots {
		path, err := platform.NormalizeRoot(r.Path)
		if err != nil {
			return nil, err
		}
		r.Path = path
		roots[i] = r
	}

	return newSession(e, cfg, roots), nil
}
