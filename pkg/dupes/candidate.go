package dupes

import (
	"encoding/hex"

	"github.com/sdejongh/filescout/pkg/models"
)

// State is the lifecycle stage of a candidate
type State int

const (
	// Unhashed candidates have not had their content read
	Unhashed State = iota
	// Hashed candidates carry a content digest
	Hashed
	// Grouped candidates carry a group id; the digest is kept when one was computed
	Grouped
)

func (s State) String() string {
	switch s {
	case Unhashed:
		return "unhashed"
	case Hashed:
		return "hashed"
	case Grouped:
		return "grouped"
	default:
		return "unknown"
	}
}

// Digest is a content hash. Shorter hashes are zero padded.
type Digest [16]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Candidate is a file held for duplicate analysis
type Candidate struct {
	File models.MatchedFile

	state     State
	hasDigest bool
	digest    Digest
	group     int
	alt       bool

	// name folded once for comparisons
	key string
}

func newCandidate(f models.MatchedFile) Candidate {
	return Candidate{File: f, key: foldName(f.Name)}
}

// State returns the lifecycle stage
func (c *Candidate) State() State {
	return c.state
}

// Digest returns the content digest, if the candidate was hashed
func (c *Candidate) Digest() (Digest, bool) {
	return c.digest, c.hasDigest
}

// Group returns the dense group id, if the candidate was grouped
func (c *Candidate) Group() (int, bool) {
	return c.group, c.state == Grouped
}

// Alternation flips between consecutive groups
func (c *Candidate) Alternation() bool {
	return c.alt
}

func (c *Candidate) setDigest(d Digest) {
	c.digest = d
	c.hasDigest = true
	c.state = Hashed
}

func (c *Candidate) setGroup(id int, alt bool) {
	c.group = id
	c.alt = alt
	c.state = Grouped
}

func foldName(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
