// Package worker drains the save queue into the durable event store.
// Failures are logged and counted, never surfaced to the scoring path;
// the next save trigger retries.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/sideout/internal/adapters/mq/queue"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/pkg/logger"
	"github.com/okian/sideout/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 1
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Source defines how workers receive save requests.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.SaveRequest
}

// EventLister supplies the current event list for a match. The worker reads
// at drain time so a coalesced request captures every append up to then.
type EventLister interface {
	EventsForSave(matchID string) ([]model.Event, bool)
}

// Writer persists a match's full event list.
type Writer interface {
	ReplaceEvents(ctx context.Context, matchID string, events []model.Event) error
}

// Worker drains save requests until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// SaveWorker implements Worker for persisting event logs.
type SaveWorker struct {
	source Source
	lister EventLister
	writer Writer
	name   string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewSaveWorker creates a new worker with configuration options.
func NewSaveWorker(source Source, lister EventLister, writer Writer, opts ...Option) *SaveWorker {
	w := &SaveWorker{
		source:   source,
		lister:   lister,
		writer:   writer,
		name:     "save-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("save-worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop.
func (w *SaveWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			if err := w.save(ctx, req); err != nil {
				w.logger.Error(ctx, "durable save failed",
					logger.String("matchID", req.MatchID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *SaveWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// save persists one match's current event list.
func (w *SaveWorker) save(ctx context.Context, req queue.SaveRequest) error {
	events, ok := w.lister.EventsForSave(req.MatchID)
	if !ok {
		// Match was unloaded between trigger and drain; nothing to save.
		w.logger.Debug(ctx, "save request for unknown match, skipping",
			logger.String("matchID", req.MatchID),
		)
		return nil
	}

	start := time.Now()
	err := w.writer.ReplaceEvents(ctx, req.MatchID, events)
	metrics.RecordSaveLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordSaveFailure()
		metrics.RecordErrorByComponent("save_worker", "write_error")
		return fmt.Errorf("persist %d events for match %s: %w", len(events), req.MatchID, err)
	}

	metrics.UpdateLastSaveTime(time.Now())
	w.logger.Debug(ctx, "durable save completed",
		logger.String("matchID", req.MatchID),
		logger.Int("events", len(events)),
	)
	return nil
}

// Pool manages multiple save workers.
type Pool struct {
	workers []*SaveWorker

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger

	source Source
}

// NewPool creates a new save worker pool.
func NewPool(workerCount int, source Source, lister EventLister, writer Writer) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*SaveWorker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("save-pool"),
		source:   source,
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewSaveWorker(
			source,
			lister,
			writer,
			WithName("save-worker-"+strconv.Itoa(i)),
		)
	}
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown gracefully shuts down the entire pool, closing the queue first
// so no new requests arrive.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing save queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "save worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
