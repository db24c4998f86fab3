package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdejongh/filescout/pkg/config"
	"github.com/sdejongh/filescout/pkg/criteria"
	"github.com/sdejongh/filescout/pkg/logging"
	"github.com/sdejongh/filescout/pkg/models"
)

// timeLayouts are tried in order by parseTime
var timeLayouts = []string{
	time.RFC3339,
	time.DateTime,
	"2006-01-02 15:04",
	time.DateOnly,
}

// configPath returns the --config file or the default location
func configPath() (string, error) {
	if globalFlags.ConfigFile != "" {
		return globalFlags.ConfigFile, nil
	}
	return config.DefaultConfigPath()
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		cfg, err := config.LoadFromFile(globalFlags.ConfigFile)
		if errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return cfg, err
	}
	return config.LoadDefault()
}

// applyGlobalFlags overrides config values with the global flags
func applyGlobalFlags(cfg *config.Config) {
	if globalFlags.LogFile != "" {
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogFormat != "" {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
		if globalFlags.LogLevel == "" {
			cfg.Logging.Level = "error"
		}
	}

	if globalFlags.Verbose && globalFlags.LogLevel == "" {
		cfg.Logging.Level = "info"
	}
}

// createLogger creates the logger the engine forwards its messages to
func createLogger(cfg *config.Config) (logging.Logger, error) {
	level := logging.ParseLevel(cfg.Logging.Level)

	if cfg.Logging.File == "" {
		return logging.NewConsoleLogger(os.Stderr, level), nil
	}

	var format logging.Format
	switch cfg.Logging.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.Logging.File,
		Format:     format,
		Level:      level,
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
}

// criteriaFlags are the attribute, size and date filters shared by find
// and dupes
type criteriaFlags struct {
	MinSize        string
	MaxSize        string
	ModifiedWithin string
	ModifiedAfter  string
	ModifiedBefore string
	Attrs          string
}

func addCriteriaFlags(cmd *cobra.Command, f *criteriaFlags) {
	cmd.Flags().StringVar(&f.MinSize, "min-size", "", "minimum file size (e.g. \"10KB\", \"1.5MiB\")")
	cmd.Flags().StringVar(&f.MaxSize, "max-size", "", "maximum file size")
	cmd.Flags().StringVar(&f.ModifiedWithin, "modified-within", "", "modified within a span: 90s, 15m, 3h, 2d, 1w, 6mo, 1y")
	cmd.Flags().StringVar(&f.ModifiedAfter, "modified-after", "", "modified after a date (YYYY-MM-DD[ HH:MM[:SS]])")
	cmd.Flags().StringVar(&f.ModifiedBefore, "modified-before", "", "modified before a date")
	cmd.Flags().StringVar(&f.Attrs, "attrs", "", "required attributes, e.g. \"+hidden,-readonly\"")
}

// set reports whether any criteria flag was given
func (f *criteriaFlags) set() bool {
	return *f != criteriaFlags{}
}

// build converts the flags into validated criteria
func (f *criteriaFlags) build() (criteria.Criteria, error) {
	var c criteria.Criteria

	if f.Attrs != "" {
		mask, value, err := criteria.ParseAttributes(f.Attrs)
		if err != nil {
			return c, err
		}
		c.AttributesMask, c.AttributesValue = mask, value
	}

	if f.MinSize != "" {
		n, err := criteria.ParseSize(f.MinSize)
		if err != nil {
			return c, err
		}
		c.MinSize = &n
	}
	if f.MaxSize != "" {
		n, err := criteria.ParseSize(f.MaxSize)
		if err != nil {
			return c, err
		}
		c.MaxSize = &n
	}

	switch {
	case f.ModifiedWithin != "" && (f.ModifiedAfter != "" || f.ModifiedBefore != ""):
		return c, fmt.Errorf("--modified-within cannot be combined with --modified-after or --modified-before")
	case f.ModifiedWithin != "":
		span, err := criteria.ParseSpan(f.ModifiedWithin)
		if err != nil {
			return c, err
		}
		c.TimeMode, c.During = criteria.TimeDuring, span
	case f.ModifiedAfter != "" || f.ModifiedBefore != "":
		c.TimeMode = criteria.TimeBetween
		var err error
		if f.ModifiedAfter != "" {
			if c.From, err = parseTime(f.ModifiedAfter); err != nil {
				return c, err
			}
		}
		if f.ModifiedBefore != "" {
			if c.To, err = parseTime(f.ModifiedBefore); err != nil {
				return c, err
			}
		}
	default:
		c.TimeMode = criteria.TimeAny
	}

	return c, c.Validate()
}

// parseTime parses a date in local time
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)", s)
}

// parseRoots splits "dir1;dir2" into search roots sharing mask and recurse
func parseRoots(lookIn []string, mask string, recurse bool) ([]models.SearchRoot, error) {
	var roots []models.SearchRoot
	for _, arg := range lookIn {
		for _, dir := range strings.Split(arg, ";") {
			dir = strings.TrimSpace(dir)
			if dir == "" {
				continue
			}
			roots = append(roots, models.SearchRoot{Path: dir, Mask: mask, Recurse: recurse})
		}
	}
	if len(roots) == 0 {
		return nil, &models.ValidationError{Field: "look-in", Message: "at least one directory is required"}
	}
	return roots, nil
}
