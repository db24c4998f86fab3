package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleLogger writes human readable lines, typically to stderr.
// Levels are coloured when the writer is a terminal.
type ConsoleLogger struct {
	writer io.Writer
	level  Level
	color  bool
	mu     *sync.Mutex
	fields Fields
}

var levelColors = map[Level]*color.Color{
	DebugLevel: color.New(color.FgHiBlack),
	InfoLevel:  color.New(color.FgCyan),
	WarnLevel:  color.New(color.FgYellow),
	ErrorLevel: color.New(color.FgRed, color.Bold),
}

// NewConsoleLogger creates a console logger writing to w (stderr if nil)
func NewConsoleLogger(w io.Writer, level Level) *ConsoleLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleLogger{
		writer: w,
		level:  level,
		color:  IsTerminal(w),
		mu:     &sync.Mutex{},
	}
}

// IsTerminal reports whether w is a terminal that accepts colour.
// NO_COLOR and similar settings are honoured through color.NoColor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debug logs a debug message
func (l *ConsoleLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *ConsoleLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *ConsoleLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *ConsoleLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields
func (l *ConsoleLogger) WithFields(fields Fields) Logger {
	child := *l
	child.fields = mergeFields(l.fields, fields)
	return &child
}

// Close does nothing; the writer belongs to the caller
func (l *ConsoleLogger) Close() error {
	return nil
}

func (l *ConsoleLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.level {
		return
	}

	tag := fmt.Sprintf("[%s]", level.String())
	if l.color {
		tag = levelColors[level].Sprint(tag)
	}

	line := fmt.Sprintf("[%s] %s %s", time.Now().Format("15:04:05"), tag, msg)

	all := mergeFields(l.fields, fields)
	if p, ok := all[FieldPath]; ok {
		line += fmt.Sprintf(": %v", p)
		delete(all, FieldPath)
	}
	if err != nil {
		line += fmt.Sprintf(" (%v)", err)
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line += fmt.Sprintf(" %s=%v", k, all[k])
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.writer, line)
}
