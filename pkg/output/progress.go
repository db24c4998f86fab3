package output

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/search"
)

const defaultTermWidth = 120

// percentTemplate renders the secondary progress value (hashing, refining)
const percentTemplate = `{{string . "path"}} {{bar . "[" "█" "█" "░" "]"}} {{percent . "%3.0f%%"}}`

// getUpdateInterval returns the status line refresh interval based on OS
// Windows terminals have higher latency with ANSI sequences, so we use a longer interval
func getUpdateInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// ProgressFormatter shows a single live status line while the session runs,
// then prints the results like HumanFormatter
type ProgressFormatter struct {
	*HumanFormatter

	mu          sync.Mutex
	out         io.Writer
	termWidth   int
	interval    time.Duration
	lastDisplay time.Time
	shown       bool

	// printed counts the results already written above the status line
	printed int

	// bar is created on the first update carrying a percentage
	bar *pb.ProgressBar
}

// NewProgressFormatter creates a new status line formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{
		HumanFormatter: NewHumanFormatter(),
		interval:       getUpdateInterval(),
	}
}

// Start initializes the formatter
func (f *ProgressFormatter) Start(writer io.Writer, info StartInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.out = writer

	// Detect terminal width to prevent line wrapping issues
	if file, ok := writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			f.termWidth = width
		}
	}
	// Default to 120 if we couldn't detect (pipe, redirect, etc.)
	if f.termWidth == 0 {
		f.termWidth = defaultTermWidth
	}

	return f.HumanFormatter.Start(writer, info)
}

// Progress redraws the status line, at most once per interval
func (f *ProgressFormatter) Progress(u search.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.out == nil {
		return nil
	}

	if u.Redraw && f.info.Results != nil {
		f.printNew()
	}

	now := time.Now()
	if f.shown && now.Sub(f.lastDisplay) < f.interval {
		return nil
	}
	f.lastDisplay = now
	f.shown = true

	if u.Percent >= 0 {
		f.renderBar(u)
		return nil
	}

	line := fmt.Sprintf("%s matches  %s", humanize.Comma(int64(u.Results)), u.Path)
	fmt.Fprint(f.out, "\r\033[2K"+f.truncateLine(line))
	return nil
}

func (f *ProgressFormatter) renderBar(u search.StatusUpdate) {
	if f.bar == nil {
		f.bar = pb.New(100)
		f.bar.SetTemplateString(percentTemplate)
		f.bar.SetWriter(f.out)
		f.bar.SetWidth(f.termWidth)
		f.bar.Set(pb.Static, true)
		f.bar.Start()
	}

	pathWidth := f.termWidth / 2
	f.bar.Set("path", truncateLeft(u.Path, pathWidth))
	f.bar.SetCurrent(int64(u.Percent))
	fmt.Fprint(f.out, "\r\033[2K")
	f.bar.Write()
}

// truncateLine ensures a line doesn't exceed terminal width
func (f *ProgressFormatter) truncateLine(line string) string {
	runes := []rune(line)
	if len(runes) > f.termWidth-1 {
		return string(runes[:f.termWidth-4]) + "..."
	}
	return line
}

// truncateLeft keeps the end of a path, which is the informative part
func truncateLeft(s string, width int) string {
	runes := []rune(s)
	if width < 4 || len(runes) <= width {
		return s
	}
	return "..." + string(runes[len(runes)-width+3:])
}

// printNew writes the results added since the last redraw above the
// status line. Must hold f.mu.
func (f *ProgressFormatter) printNew() {
	if f.shown {
		fmt.Fprint(f.out, "\r\033[2K")
		f.shown = false
	}
	f.printed = f.info.Results.Range(f.printed, func(_ int, r models.Result) {
		fmt.Fprintln(f.out, f.formatResult(&r))
	})
}

// Complete clears the status line and prints the results not shown yet
func (f *ProgressFormatter) Complete(report *models.SearchReport, results []models.Result) error {
	f.clear()

	f.mu.Lock()
	printed := f.printed
	f.mu.Unlock()

	if printed == 0 || printed > len(results) {
		return f.HumanFormatter.Complete(report, results)
	}
	for i := range results[printed:] {
		fmt.Fprintln(f.out, f.formatResult(&results[printed+i]))
	}
	fmt.Fprintln(f.out)
	f.writeSummary(report)
	return nil
}

// Error clears the status line and reports err
func (f *ProgressFormatter) Error(err error) error {
	f.clear()
	return f.HumanFormatter.Error(err)
}

func (f *ProgressFormatter) clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	if f.shown {
		fmt.Fprint(f.out, "\r\033[2K")
		f.shown = false
	}
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
