package search

import (
	"errors"
	"sync"

	"github.com/sdejongh/filescout/pkg/models"
)

// ErrSinkFull is returned when the result list refuses another entry
var ErrSinkFull = errors.New("result list is full")

// ResultList is the growing result collection of a session. The worker
// appends while readers take lengths and snapshots.
type ResultList struct {
	mu       sync.Mutex
	items    []models.Result
	capacity int
}

// NewResultList creates a list; capacity 0 means unbounded
func NewResultList(capacity int) *ResultList {
	return &ResultList{capacity: capacity}
}

// Add appends r, or returns ErrSinkFull when the list is at capacity
func (l *ResultList) Add(r models.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.capacity > 0 && len(l.items) >= l.capacity {
		return ErrSinkFull
	}
	l.items = append(l.items, r)
	return nil
}

// Len returns the number of results
func (l *ResultList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Snapshot returns a copy of the results
func (l *ResultList) Snapshot() []models.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Result(nil), l.items...)
}

// Range calls fn for results [from, Len()) in order, without holding the
// lock while fn runs. It returns the new length.
func (l *ResultList) Range(from int, fn func(i int, r models.Result)) int {
	l.mu.Lock()
	items := l.items[from:len(l.items):len(l.items)]
	l.mu.Unlock()

	for i, r := range items {
		fn(from+i, r)
	}
	return from + len(items)
}
