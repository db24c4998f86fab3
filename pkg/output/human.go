package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/sdejongh/filescout/pkg/logging"
	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/search"
)

// maxLoggedErrors caps the error lines printed in the summary
const maxLoggedErrors = 20

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer io.Writer
	info   StartInfo
	color  bool

	// group tags flip colour between consecutive duplicate groups
	groupColors [2]*color.Color
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{
		groupColors: [2]*color.Color{
			color.New(color.FgCyan),
			color.New(color.FgYellow),
		},
	}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, info StartInfo) error {
	f.writer = writer
	f.info = info
	f.color = logging.IsTerminal(writer)

	for _, c := range f.groupColors {
		if f.color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return nil
}

// Progress is ignored; the human formatter prints once the session ends
func (f *HumanFormatter) Progress(update search.StatusUpdate) error {
	return nil
}

// Complete prints one line per result followed by the summary
func (f *HumanFormatter) Complete(report *models.SearchReport, results []models.Result) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	for i := range results {
		fmt.Fprintln(f.writer, f.formatResult(&results[i]))
	}
	if len(results) > 0 {
		fmt.Fprintln(f.writer)
	}

	f.writeSummary(report)
	return nil
}

func (f *HumanFormatter) formatResult(r *models.Result) string {
	size := humanize.IBytes(uint64(r.Size))
	if r.IsDir {
		size = "<DIR>"
	}

	line := fmt.Sprintf("%10s  %s  %s", size, r.ModTime.Local().Format("2006-01-02 15:04"), r.Path())
	if r.Group == nil {
		return line
	}

	alt := 0
	if r.Alternation {
		alt = 1
	}
	tag := f.groupColors[alt].Sprintf("[%4d]", *r.Group)
	if r.Digest != "" {
		line += "  " + r.Digest
	}
	return tag + " " + line
}

func (f *HumanFormatter) writeSummary(report *models.SearchReport) {
	w := f.writer
	s := report.Stats

	fmt.Fprintf(w, "Search %s in %s\n", report.Status, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	if f.info.Criteria != "" {
		fmt.Fprintf(w, "  Criteria:             %s\n", f.info.Criteria)
	}
	fmt.Fprintf(w, "  Directories scanned:  %d\n", s.DirsScanned)
	if s.DirsIgnored > 0 {
		fmt.Fprintf(w, "  Directories ignored:  %d\n", s.DirsIgnored)
	}
	fmt.Fprintf(w, "  Entries examined:     %d\n", s.EntriesExamined)
	if s.FilesGrepped > 0 {
		fmt.Fprintf(w, "  Files searched:       %d\n", s.FilesGrepped)
	}
	if report.Mode == models.ModeDuplicates {
		fmt.Fprintf(w, "  Duplicate groups:     %d\n", s.Groups)
		if s.BytesHashed > 0 {
			fmt.Fprintf(w, "  Data hashed:          %s\n", humanize.IBytes(uint64(s.BytesHashed)))
		}
	}
	fmt.Fprintf(w, "  Matches:              %s\n", humanize.Comma(s.Matches))

	if report.Error != "" {
		fmt.Fprintf(w, "\nError: %s\n", report.Error)
	}

	var errs []models.LogEntry
	for _, e := range report.Log {
		if e.Severity == models.SeverityError {
			errs = append(errs, e)
		}
	}
	if len(errs) == 0 {
		return
	}

	fmt.Fprintf(w, "\nErrors:\n")
	for i, e := range errs {
		if i == maxLoggedErrors {
			fmt.Fprintf(w, "  ... and %d more\n", s.Errors-int64(i))
			break
		}
		if e.Path != "" && !strings.Contains(e.Message, e.Path) {
			fmt.Fprintf(w, "  %s: %s\n", e.Path, e.Message)
		} else {
			fmt.Fprintf(w, "  %s\n", e.Message)
		}
	}
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
