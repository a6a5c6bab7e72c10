package ws_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/sideout/internal/adapters/ws"
	"github.com/okian/sideout/internal/domain/replay"
	"github.com/okian/sideout/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func runHub(t *testing.T) *ws.Hub {
	t.Helper()
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, c *ws.Client) ws.Snapshot {
	t.Helper()
	select {
	case snap := <-c.Send:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		return ws.Snapshot{}
	}
}

func TestHubBroadcast(t *testing.T) {
	Convey("Given a running hub with subscribers on two matches", t, func() {
		hub := runHub(t)

		alpha := ws.NewClient("c-1", "m-alpha", nil, hub)
		beta := ws.NewClient("c-2", "m-beta", nil, hub)
		hub.Register(alpha)
		hub.Register(beta)

		Convey("When a snapshot for one match is broadcast", func() {
			hub.Broadcast("m-alpha", replay.State{MatchID: "m-alpha", HomeScore: 7})

			Convey("Then only that match's subscriber receives it", func() {
				snap := receive(t, alpha)
				So(snap.MatchID, ShouldEqual, "m-alpha")
				So(snap.State.HomeScore, ShouldEqual, 7)

				select {
				case <-beta.Send:
					t.Fatal("snapshot leaked to another match's subscriber")
				case <-time.After(50 * time.Millisecond):
				}
			})
		})

		Convey("When a subscriber unregisters", func() {
			hub.Unregister(alpha)

			Convey("Then its send channel closes", func() {
				select {
				case _, open := <-alpha.Send:
					So(open, ShouldBeFalse)
				case <-time.After(2 * time.Second):
					t.Fatal("send channel was not closed")
				}
			})

			Convey("Then remaining subscribers keep receiving", func() {
				hub.Broadcast("m-beta", replay.State{MatchID: "m-beta", AwayScore: 3})
				snap := receive(t, beta)
				So(snap.State.AwayScore, ShouldEqual, 3)
			})
		})
	})
}

func TestHubSlowSubscriber(t *testing.T) {
	Convey("Given a subscriber that never drains its send buffer", t, func() {
		hub := runHub(t)
		slow := ws.NewClient("c-slow", "m-1", nil, hub)
		hub.Register(slow)

		Convey("When more snapshots arrive than the buffer holds", func() {
			for i := 0; i < 200; i++ {
				hub.Broadcast("m-1", replay.State{MatchID: "m-1", HomeScore: i})
			}

			Convey("Then the hub stays responsive and drops the overflow", func() {
				deadline := time.Now().Add(2 * time.Second)
				for len(slow.Send) < cap(slow.Send) && time.Now().Before(deadline) {
					time.Sleep(10 * time.Millisecond)
				}
				So(len(slow.Send), ShouldEqual, cap(slow.Send))

				// A fresh subscriber still receives new snapshots.
				fresh := ws.NewClient("c-fresh", "m-1", nil, hub)
				hub.Register(fresh)
				hub.Broadcast("m-1", replay.State{MatchID: "m-1", HomeScore: 999})
				snap := receive(t, fresh)
				So(snap.State.HomeScore, ShouldEqual, 999)
			})
		})
	})
}

func TestHubShutdown(t *testing.T) {
	Convey("Given a running hub with a subscriber", t, func() {
		hub := ws.NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		go hub.Run(ctx)

		c := ws.NewClient("c-1", "m-1", nil, hub)
		hub.Register(c)

		Convey("When the context is canceled", func() {
			cancel()

			Convey("Then the subscriber's channel closes", func() {
				deadline := time.After(2 * time.Second)
				for {
					select {
					case _, open := <-c.Send:
						if !open {
							So(open, ShouldBeFalse)
							return
						}
					case <-deadline:
						t.Fatal("send channel was not closed on shutdown")
					}
				}
			})
		})
	})
}
