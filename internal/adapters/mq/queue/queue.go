// Package queue defines the contract for enqueuing and consuming
// durable-save requests. Saves are fire-and-forget from the engine's
// perspective: a full enqueue drops the request and the next trigger
// retries, so the queue never blocks the scoring path.
package queue

import (
	"context"
	"sync"

	"github.com/okian/sideout/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// SaveRequest asks the save worker to persist one match's full event list.
// The worker reads the list at drain time, so a request enqueued before
// further appends still captures them.
type SaveRequest struct {
	MatchID string
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a save request. Requests for a match that already has
	// one pending coalesce into it. Returns false if the queue is full.
	Enqueue(ctx context.Context, req SaveRequest) bool

	// Dequeue returns a channel that will receive requests as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan SaveRequest

	// Len returns the current number of pending requests.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel plus a pending
// set for per-match coalescing.
type InMemoryQueue struct {
	requests chan SaveRequest
	capacity int

	mu      sync.Mutex
	pending map[string]bool
	closed  bool
}

// NewInMemoryQueue creates a new in-memory save queue with configuration
// options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
		pending:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.requests = make(chan SaveRequest, q.capacity)
	metrics.UpdateSaveQueueSize(0)
	return q
}

// Enqueue adds a save request, coalescing with any pending one for the
// same match.
func (q *InMemoryQueue) Enqueue(ctx context.Context, req SaveRequest) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordErrorByComponent("save_queue", "closed")
		return false
	}
	if q.pending[req.MatchID] {
		// A pending save will pick up the latest event list anyway.
		return true
	}

	select {
	case q.requests <- req:
		q.pending[req.MatchID] = true
		metrics.RecordSaveRequest()
		metrics.UpdateSaveQueueSize(len(q.requests))
		return true
	case <-ctx.Done():
		metrics.RecordErrorByComponent("save_queue", "context_cancelled")
		return false
	default:
		metrics.RecordErrorByComponent("save_queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive save requests as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan SaveRequest {
	out := make(chan SaveRequest)
	go func() {
		defer close(out)
		for req := range q.requests {
			q.mu.Lock()
			delete(q.pending, req.MatchID)
			q.mu.Unlock()
			select {
			case out <- req:
				metrics.UpdateSaveQueueSize(len(q.requests))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of pending requests.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.requests)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.requests)
	q.closed = true
	return nil
}
