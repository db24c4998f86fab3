package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/search"
)

// StartInfo describes the session about to be displayed
type StartInfo struct {
	SessionID string
	Mode      models.SearchMode
	Roots     []string
	// Criteria describes the attribute, size and date filters, if any
	Criteria string
	// Results is the live result list; formatters that redraw while the
	// session runs read new results from it
	Results *search.ResultList
}

// Formatter defines the interface for output formatting
// Implementations include human-readable, JSON and progress formatters
type Formatter interface {
	// Start initializes the formatter for a new session
	Start(writer io.Writer, info StartInfo) error

	// Progress reports a status update while the session runs
	Progress(update search.StatusUpdate) error

	// Complete displays the results and the summary
	Complete(report *models.SearchReport, results []models.Result) error

	// Error reports an error that ended the command
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for format ("human" or "json"). With progress
// set, human output is preceded by a live status line.
func New(format string, progress bool) (Formatter, error) {
	switch format {
	case "", "human":
		if progress {
			return NewProgressFormatter(), nil
		}
		return NewHumanFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want human or json)", format)
	}
}
