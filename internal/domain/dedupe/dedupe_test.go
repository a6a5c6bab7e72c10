package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/sideout/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new in-memory deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When an id is recorded for the first time", func() {
			seen := d.SeenAndRecord(context.Background(), "ev-1")

			Convey("Then it reports unseen and is tracked afterwards", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(context.Background(), "ev-1"), ShouldBeTrue)
			})
		})

		Convey("When a recorded id is unrecorded", func() {
			d.SeenAndRecord(context.Background(), "ev-1")
			d.Unrecord(context.Background(), "ev-1")

			Convey("Then the id may be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(context.Background(), "ev-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an id that was never seen", func() {
			d.Unrecord(context.Background(), "ghost")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestDeduperEviction(t *testing.T) {
	Convey("Given a deduper bounded to three ids", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When a fourth id is recorded", func() {
			for i := 1; i <= 4; i++ {
				d.SeenAndRecord(context.Background(), fmt.Sprintf("ev-%d", i))
			}

			Convey("Then the oldest id is evicted first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(context.Background(), "ev-1"), ShouldBeFalse)
				So(d.SeenAndRecord(context.Background(), "ev-4"), ShouldBeTrue)
			})
		})
	})
}

func TestDeduperConcurrency(t *testing.T) {
	Convey("Given concurrent recording of the same ids", t, func() {
		d := dedupe.NewInMemoryDeduper()
		const workers = 8
		const ids = 100

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < ids; i++ {
					d.SeenAndRecord(context.Background(), fmt.Sprintf("ev-%d", i))
				}
			}()
		}
		wg.Wait()

		Convey("Then each id is tracked exactly once", func() {
			So(d.Size(), ShouldEqual, int64(ids))
		})
	})
}
