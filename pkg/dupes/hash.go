package dupes

import (
	"context"
	"crypto/md5"
	"fmt"
	"hash"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/sdejongh/filescout/pkg/ratelimit"
)

// Hash algorithm names accepted by NewHasher
const (
	HashMD5    = "md5"
	HashXXHash = "xxhash"
)

// DefaultBufferSize is the read size used while hashing
const DefaultBufferSize = 16 * 1024

// Hasher streams files through a content hash with pooled buffers
type Hasher struct {
	newHash    func() hash.Hash
	bufferPool *sync.Pool
	limiter    *ratelimit.Limiter
}

// NewHasher creates a hasher for algorithm ("md5" or "xxhash").
// limiter may be nil.
func NewHasher(algorithm string, bufferSize int, limiter *ratelimit.Limiter) (*Hasher, error) {
	var newHash func() hash.Hash
	switch algorithm {
	case HashMD5, "":
		newHash = md5.New
	case HashXXHash:
		newHash = func() hash.Hash { return xxhash.New() }
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
	}

	if bufferSize < 4096 {
		bufferSize = 4096
	}

	return &Hasher{
		newHash: newHash,
		limiter: limiter,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}, nil
}

// HashFile hashes the file at path. progress, when set, receives the bytes
// read by each chunk. Cancellation is checked between chunks.
func (h *Hasher) HashFile(ctx context.Context, path string, progress func(n int64)) (Digest, error) {
	var d Digest

	f, err := os.Open(path)
	if err != nil {
		return d, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := ratelimit.NewReader(ctx, f, h.limiter)
	hasher := h.newHash()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		if err := ctx.Err(); err != nil {
			return d, err
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			if progress != nil {
				progress(int64(n))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return d, fmt.Errorf("failed to read file: %w", err)
		}
	}

	copy(d[:], hasher.Sum(nil))
	return d, nil
}
