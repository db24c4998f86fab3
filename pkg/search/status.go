package search

import (
	"time"
)

// StatusUpdate is sent by the worker while a session runs
type StatusUpdate struct {
	// Path is the directory or file being examined
	Path string
	// Percent is the secondary progress value (hashing or refining);
	// -1 when there is none
	Percent int
	// Redraw asks the reader to re-render the result list
	Redraw bool
	// Results is the current number of results
	Results int
}

// statusChannel delivers updates without ever blocking the worker.
// When the reader lags, the pending update is replaced by the newer one
// and its redraw request carried over.
type statusChannel struct {
	ch chan StatusUpdate
}

func newStatusChannel() *statusChannel {
	return &statusChannel{ch: make(chan StatusUpdate, 1)}
}

// send must only be called by the single worker goroutine
func (s *statusChannel) send(u StatusUpdate) {
	select {
	case s.ch <- u:
		return
	default:
	}

	select {
	case old := <-s.ch:
		u.Redraw = u.Redraw || old.Redraw
	default:
	}

	select {
	case s.ch <- u:
	default:
	}
}

func (s *statusChannel) close() {
	close(s.ch)
}

// redrawThrottle decides when new results deserve a redraw: after batch
// results or interval, whichever comes first
type redrawThrottle struct {
	interval time.Duration
	batch    int
	now      func() time.Time

	last    time.Time
	pending int
}

func newRedrawThrottle(interval time.Duration, batch int) *redrawThrottle {
	return &redrawThrottle{interval: interval, batch: batch, now: time.Now}
}

// added records one new result and reports whether to redraw
func (t *redrawThrottle) added() bool {
	t.pending++
	now := t.now()
	if t.pending >= t.batch || now.Sub(t.last) >= t.interval {
		t.pending = 0
		t.last = now
		return true
	}
	return false
}

// flush reports whether results are waiting for a redraw and resets
func (t *redrawThrottle) flush() bool {
	had := t.pending > 0
	t.pending = 0
	t.last = t.now()
	return had
}
