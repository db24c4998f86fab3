// Package dupes groups files that share a name, a size and optionally their
// content.
package dupes

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"sync"

	"github.com/sdejongh/filescout/pkg/logging"
	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/ratelimit"
	"github.com/sdejongh/filescout/pkg/sorting"
)

// Options configure a Detector
type Options struct {
	// Hash is the content hash algorithm: "md5" (default) or "xxhash"
	Hash string
	// BufferSize is the read size used while hashing
	BufferSize int
	// Limiter throttles hashing reads; nil means unlimited
	Limiter *ratelimit.Limiter
	// Logger receives read errors with the offending path
	Logger logging.Logger
	// Progress receives the file being hashed and the aggregate percentage
	// of bytes hashed so far. It is called once per change of either.
	Progress func(path string, percent int)
}

// Stats describes one Examine run
type Stats struct {
	BytesHashed int64
	Groups      int64
	// Dropped counts candidates lost to read errors or cancellation
	Dropped int
}

// Detector collects candidates and groups the duplicates among them
type Detector struct {
	criteria models.DuplicateCriteria
	opts     Options
	hasher   *Hasher

	mu         sync.Mutex
	candidates []Candidate
}

// New creates a detector for the given identity criteria
func New(criteria models.DuplicateCriteria, opts Options) (*Detector, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNullLogger()
	}

	hasher, err := NewHasher(opts.Hash, opts.BufferSize, opts.Limiter)
	if err != nil {
		return nil, err
	}

	return &Detector{
		criteria: criteria,
		opts:     opts,
		hasher:   hasher,
	}, nil
}

// Add queues a file; directories are ignored
func (d *Detector) Add(f models.MatchedFile) error {
	if f.IsDir {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.candidates = append(d.candidates, newCandidate(f))
	return nil
}

// Len returns the number of queued candidates
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.candidates)
}

// Examine sorts the queued candidates, drops those without a partner,
// hashes the rest when content comparison is on, and assigns group ids.
// The detector is emptied. On cancellation the candidates hashed so far are
// still grouped and returned together with ctx's error.
func (d *Detector) Examine(ctx context.Context) ([]Candidate, Stats, error) {
	d.mu.Lock()
	list := d.candidates
	d.candidates = nil
	d.mu.Unlock()

	var stats Stats

	d.sort(list)
	list = d.dropSingletons(list)

	var hashErr error
	if d.criteria.ByContent && len(list) > 0 {
		var dropped int
		list, dropped, stats.BytesHashed, hashErr = d.hashAll(ctx, list)
		stats.Dropped += dropped

		d.sort(list)
		list = d.dropSingletons(list)
	}

	stats.Groups = int64(d.assignGroups(list))
	return list, stats, hashErr
}

// compareIdentity orders two candidates by the selected identity keys:
// name, size then digest. Candidates not yet hashed compare equal on content.
func (d *Detector) compareIdentity(a, b *Candidate) int {
	if d.criteria.ByName {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}
	}
	if d.criteria.BySize {
		if c := cmp.Compare(a.File.Size, b.File.Size); c != 0 {
			return c
		}
	}
	if d.criteria.ByContent && a.hasDigest && b.hasDigest {
		return bytes.Compare(a.digest[:], b.digest[:])
	}
	return 0
}

func (d *Detector) sort(list []Candidate) {
	sorting.QuickSort(list, func(a, b Candidate) int {
		if c := d.compareIdentity(&a, &b); c != 0 {
			return c
		}
		if c := cmp.Compare(a.File.Dir, b.File.Dir); c != 0 {
			return c
		}
		return cmp.Compare(a.File.Name, b.File.Name)
	})
}

// dropSingletons keeps the candidates equal to one of their sorted neighbours
func (d *Detector) dropSingletons(list []Candidate) []Candidate {
	kept := list[:0]
	for i := range list {
		prev := i > 0 && d.compareIdentity(&list[i-1], &list[i]) == 0
		next := i+1 < len(list) && d.compareIdentity(&list[i], &list[i+1]) == 0
		if prev || next {
			kept = append(kept, list[i])
		}
	}
	clear(list[len(kept):])
	return kept
}

// hashAll computes the digest of every candidate, last to first. A read
// error drops that candidate only; cancellation drops every candidate not
// hashed yet.
func (d *Detector) hashAll(ctx context.Context, list []Candidate) ([]Candidate, int, int64, error) {
	var total int64
	for i := range list {
		total += list[i].File.Size
	}

	var done int64
	lastPercent := -1
	lastPath := ""
	report := func(path string) {
		if d.opts.Progress == nil {
			return
		}
		percent := 100
		if total > 0 {
			percent = int(done * 100 / total)
		}
		if percent != lastPercent || path != lastPath {
			lastPercent, lastPath = percent, path
			d.opts.Progress(path, percent)
		}
	}

	failed := make([]bool, len(list))
	var hashErr error
	cut := 0

	for i := len(list) - 1; i >= 0; i-- {
		c := &list[i]
		if c.File.Size == 0 {
			c.setDigest(Digest{})
			continue
		}
		if err := ctx.Err(); err != nil {
			hashErr = err
			cut = i + 1
			break
		}

		path := c.File.Path()
		report(path)

		digest, err := d.hasher.HashFile(ctx, path, func(n int64) {
			done += n
			report(path)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				hashErr = ctxErr
				cut = i + 1
				break
			}
			d.opts.Logger.Error(ctx, "cannot hash file", err, logging.Path(path))
			failed[i] = true
			continue
		}
		c.setDigest(digest)
	}

	kept := list[:0]
	dropped := cut
	for i := cut; i < len(list); i++ {
		if failed[i] {
			dropped++
			continue
		}
		kept = append(kept, list[i])
	}
	clear(list[len(kept):])

	return kept, dropped, done, hashErr
}

// assignGroups flips the alternation bit at every identity change and
// numbers the runs densely from 0. It returns the number of groups.
func (d *Detector) assignGroups(list []Candidate) int {
	group := -1
	alt := true
	for i := range list {
		if i == 0 || d.compareIdentity(&list[i-1], &list[i]) != 0 {
			alt = !alt
			group++
		}
		list[i].setGroup(group, alt)
	}
	return group + 1
}
