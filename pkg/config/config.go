package config

import (
	"fmt"

	"github.com/sdejongh/filescout/pkg/criteria"
	"github.com/sdejongh/filescout/pkg/ignore"
	"github.com/sdejongh/filescout/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Search      SearchConfig       `yaml:"search"`
	Performance PerformanceConfig  `yaml:"performance"`
	Duplicates  DuplicatesConfig   `yaml:"duplicates"`
	Output      OutputConfig       `yaml:"output"`
	Logging     LoggingConfig      `yaml:"logging"`
	Ignore      []ignore.Rule      `yaml:"ignore"`
	Profiles    map[string]Profile `yaml:"profiles,omitempty"`
}

// SearchConfig holds defaults for new searches
type SearchConfig struct {
	Mask          string             `yaml:"mask"`
	Recurse       bool               `yaml:"recurse"`
	CaseSensitive bool               `yaml:"case_sensitive"`
	WholeWords    bool               `yaml:"whole_words"`
	LineEndings   models.LineEndings `yaml:"line_endings"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	// WindowSize is the size of one mapped view during content search
	WindowSize int `yaml:"window_size"`
	// MaxLineLength caps a regex line; longer lines are cut
	MaxLineLength int `yaml:"max_line_length"`
	// HashBufferSize is the read buffer used when hashing duplicates
	HashBufferSize int `yaml:"hash_buffer_size"`
	// ReadLimit throttles content reads in bytes per second (0 = unlimited)
	ReadLimit int64 `yaml:"read_limit"`
	// MaxResults rejects results past this count (0 = unlimited)
	MaxResults int `yaml:"max_results"`
	// MaxDeferred bounds the pending directory stack
	MaxDeferred int `yaml:"max_deferred"`
	// RedrawIntervalMS and RedrawBatch throttle result redraw signals
	RedrawIntervalMS int `yaml:"redraw_interval_ms"`
	RedrawBatch      int `yaml:"redraw_batch"`
	// LogLimit caps the log entries kept in a report (0 = unlimited)
	LogLimit int `yaml:"log_limit"`
}

// DuplicatesConfig holds duplicate search defaults
type DuplicatesConfig struct {
	models.DuplicateCriteria `yaml:",inline"`
	// Hash is the content hash: md5 or xxhash
	Hash string `yaml:"hash"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show status line while searching
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	File   string `yaml:"file"`   // Log file path (empty = console only)
}

// Profile is a named, saved search
type Profile struct {
	LookIn        []string           `yaml:"look_in"`
	Mask          string             `yaml:"mask,omitempty"`
	NoSubdirs     bool               `yaml:"no_subdirs,omitempty"`
	Containing    string             `yaml:"containing,omitempty"`
	Kind          models.PatternKind `yaml:"kind,omitempty"`
	CaseSensitive bool               `yaml:"case_sensitive,omitempty"`
	WholeWords    bool               `yaml:"whole_words,omitempty"`
	Criteria      criteria.Criteria  `yaml:"criteria,omitempty"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Mask:        "*",
			Recurse:     true,
			LineEndings: models.AllLineEndings(),
		},
		Performance: PerformanceConfig{
			WindowSize:       40<<20 + 1024,
			MaxLineLength:    16 << 20,
			HashBufferSize:   16 * 1024,
			ReadLimit:        0,
			MaxResults:       0,
			MaxDeferred:      1 << 16,
			RedrawIntervalMS: 500,
			RedrawBatch:      100,
			LogLimit:         10000,
		},
		Duplicates: DuplicatesConfig{
			DuplicateCriteria: models.DuplicateCriteria{ByName: true, BySize: true},
			Hash:              "md5",
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "warn",
			File:   "",
		},
		Ignore: ignore.Defaults(),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Performance.WindowSize < 64*1024 {
		return &models.ValidationError{
			Field:   "performance.window_size",
			Message: "must be at least 65536 bytes",
		}
	}

	if c.Performance.MaxLineLength < 1024 {
		return &models.ValidationError{
			Field:   "performance.max_line_length",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.HashBufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.hash_buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.ReadLimit < 0 || c.Performance.MaxResults < 0 || c.Performance.LogLimit < 0 {
		return &models.ValidationError{
			Field:   "performance",
			Message: "limits cannot be negative",
		}
	}

	if c.Performance.MaxDeferred < 1 {
		return &models.ValidationError{
			Field:   "performance.max_deferred",
			Message: "must be at least 1",
		}
	}

	if c.Performance.RedrawIntervalMS < 1 || c.Performance.RedrawBatch < 1 {
		return &models.ValidationError{
			Field:   "performance.redraw",
			Message: "interval and batch must be positive",
		}
	}

	if err := c.Duplicates.Validate(); err != nil {
		return err
	}

	validHashes := map[string]bool{"md5": true, "xxhash": true}
	if !validHashes[c.Duplicates.Hash] {
		return &models.ValidationError{
			Field:   "duplicates.hash",
			Message: "must be 'md5' or 'xxhash'",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	for name, p := range c.Profiles {
		if len(p.LookIn) == 0 {
			return &models.ValidationError{
				Field:   fmt.Sprintf("profiles.%s.look_in", name),
				Message: "needs at least one directory",
			}
		}
		if err := p.Criteria.Validate(); err != nil {
			return fmt.Errorf("profiles.%s: %w", name, err)
		}
	}

	return nil
}
