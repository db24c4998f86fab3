package logging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sdejongh/filescout/pkg/models"
)

// Collector keeps every info and error message as a models.LogEntry and
// forwards all messages to an optional next logger. A search session logs
// through a Collector so the report carries the engine's log.
type Collector struct {
	state  *collectorState
	next   Logger
	fields Fields
}

type collectorState struct {
	mu      sync.Mutex
	entries []models.LogEntry
	errors  int64
	limit   int
	dropped int
}

// NewCollector creates a collector forwarding to next (may be nil).
// limit caps the number of kept entries; 0 keeps everything.
func NewCollector(next Logger, limit int) *Collector {
	if next == nil {
		next = NewNullLogger()
	}
	return &Collector{
		state: &collectorState{limit: limit},
		next:  next,
	}
}

// Debug forwards a debug message; debug messages are not collected
func (c *Collector) Debug(ctx context.Context, msg string, fields Fields) {
	c.next.Debug(ctx, msg, fields)
}

// Info collects and forwards an info message
func (c *Collector) Info(ctx context.Context, msg string, fields Fields) {
	c.record(models.SeverityInfo, msg, nil, fields)
	c.next.Info(ctx, msg, fields)
}

// Warn collects a warning as an error entry and forwards it
func (c *Collector) Warn(ctx context.Context, msg string, fields Fields) {
	c.record(models.SeverityError, msg, nil, fields)
	c.next.Warn(ctx, msg, fields)
}

// Error collects and forwards an error message
func (c *Collector) Error(ctx context.Context, msg string, err error, fields Fields) {
	c.record(models.SeverityError, msg, err, fields)
	c.next.Error(ctx, msg, err, fields)
}

// WithFields returns a collector sharing the same entries
func (c *Collector) WithFields(fields Fields) Logger {
	return &Collector{
		state:  c.state,
		next:   c.next.WithFields(fields),
		fields: mergeFields(c.fields, fields),
	}
}

// Close closes the next logger
func (c *Collector) Close() error {
	return c.next.Close()
}

// Entries returns a copy of the collected entries
func (c *Collector) Entries() []models.LogEntry {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return append([]models.LogEntry(nil), c.state.entries...)
}

// ErrorCount returns the number of error entries seen, including dropped ones
func (c *Collector) ErrorCount() int64 {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.errors
}

// Dropped returns how many entries were discarded because of the limit
func (c *Collector) Dropped() int {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.dropped
}

func (c *Collector) record(sev models.Severity, msg string, err error, fields Fields) {
	entry := models.LogEntry{
		Time:     time.Now(),
		Severity: sev,
		Message:  msg,
	}
	if err != nil {
		entry.Message = fmt.Sprintf("%s: %v", msg, err)
	}
	if p, ok := fields[FieldPath]; ok {
		entry.Path = fmt.Sprint(p)
	} else if p, ok := c.fields[FieldPath]; ok {
		entry.Path = fmt.Sprint(p)
	}

	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	if sev == models.SeverityError {
		c.state.errors++
	}
	if c.state.limit > 0 && len(c.state.entries) >= c.state.limit {
		c.state.dropped++
		return
	}
	c.state.entries = append(c.state.entries, entry)
}
