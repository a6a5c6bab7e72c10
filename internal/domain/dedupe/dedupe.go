// Package dedupe provides idempotency tracking for event intake. Clients
// deliver events at-least-once; the deduper lets intake acknowledge a
// repeat without appending it twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen event IDs to ensure at-most-once appends.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set, allowing a retry after an
	// event was marked seen but failed to be appended.
	Unrecord(ctx context.Context, id string)

	// Size returns the current number of tracked IDs.
	Size() int64
}

// inMemoryDeduper implements Deduper with a map plus a FIFO ring of ids.
// When the ring is full the oldest id is evicted, which is acceptable here:
// a duplicate of an event older than the window would also be rejected by
// the reducer's own id deduplication on fold.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]bool
	ring    []string
	head    int
	maxSize int
	size    atomic.Int64
}

const defaultMaxSize = 50000

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxSize <= 0 {
		d.maxSize = defaultMaxSize
	}
	d.seen = make(map[string]bool, d.maxSize)
	d.ring = make([]string, d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen[id] {
		return true
	}

	// Evict the slot's previous occupant once the ring has wrapped.
	if old := d.ring[d.head]; old != "" && d.seen[old] {
		delete(d.seen, old)
		d.size.Add(-1)
	}
	d.ring[d.head] = id
	d.head = (d.head + 1) % d.maxSize
	d.seen[id] = true
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen[id] {
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
