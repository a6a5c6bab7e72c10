package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/sideout/internal/adapters/mq/queue"
	"github.com/okian/sideout/internal/adapters/mq/worker"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// memoryLister serves a fixed event list per match.
type memoryLister struct {
	events map[string][]model.Event
}

func (l *memoryLister) EventsForSave(matchID string) ([]model.Event, bool) {
	events, ok := l.events[matchID]
	return events, ok
}

// captureWriter records writes and can be told to fail.
type captureWriter struct {
	mu     sync.Mutex
	writes map[string]int
	fail   bool
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{writes: make(map[string]int)}
}

func (w *captureWriter) ReplaceEvents(_ context.Context, matchID string, _ []model.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("disk unavailable")
	}
	w.writes[matchID]++
	return nil
}

func (w *captureWriter) count(matchID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes[matchID]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSaveWorker(t *testing.T) {
	Convey("Given a worker draining a save queue", t, func() {
		q := queue.NewInMemoryQueue()
		lister := &memoryLister{events: map[string][]model.Event{
			"m-1": {model.SetStarted{Meta: model.Meta{ID: "ev-1", MatchID: "m-1"}, SetNumber: 1}},
		}}
		writer := newCaptureWriter()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := worker.NewSaveWorker(q, lister, writer, worker.WithName("save-worker-test"))
		go w.Run(ctx)
		defer func() { _ = w.Shutdown(context.Background()) }()

		Convey("When a save request is enqueued", func() {
			So(q.Enqueue(ctx, queue.SaveRequest{MatchID: "m-1"}), ShouldBeTrue)

			Convey("Then the match's event list is written", func() {
				waitFor(t, func() bool { return writer.count("m-1") > 0 })
				So(writer.count("m-1"), ShouldEqual, 1)
			})
		})

		Convey("When a request names an unloaded match", func() {
			So(q.Enqueue(ctx, queue.SaveRequest{MatchID: "ghost"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.SaveRequest{MatchID: "m-1"}), ShouldBeTrue)

			Convey("Then it is skipped and later requests still drain", func() {
				waitFor(t, func() bool { return writer.count("m-1") > 0 })
				So(writer.count("ghost"), ShouldEqual, 0)
				So(writer.count("m-1"), ShouldEqual, 1)
			})
		})

		Convey("When a write fails", func() {
			writer.mu.Lock()
			writer.fail = true
			writer.mu.Unlock()
			So(q.Enqueue(ctx, queue.SaveRequest{MatchID: "m-1"}), ShouldBeTrue)

			Convey("Then the worker keeps draining afterwards", func() {
				waitFor(t, func() bool { return q.Len(ctx) == 0 })

				writer.mu.Lock()
				writer.fail = false
				writer.mu.Unlock()
				So(q.Enqueue(ctx, queue.SaveRequest{MatchID: "m-1"}), ShouldBeTrue)
				waitFor(t, func() bool { return writer.count("m-1") > 0 })
				So(writer.count("m-1"), ShouldEqual, 1)
			})
		})
	})
}

func TestPoolShutdown(t *testing.T) {
	Convey("Given a running pool of two workers", t, func() {
		q := queue.NewInMemoryQueue()
		lister := &memoryLister{events: map[string][]model.Event{}}
		writer := newCaptureWriter()

		pool := worker.NewPool(2, q, lister, writer)
		pool.Start(context.Background())

		Convey("When the pool shuts down", func() {
			err := pool.Shutdown(context.Background())

			Convey("Then shutdown completes and the queue refuses new work", func() {
				So(err, ShouldBeNil)
				So(q.Enqueue(context.Background(), queue.SaveRequest{MatchID: "m-1"}), ShouldBeFalse)
			})
		})
	})
}
