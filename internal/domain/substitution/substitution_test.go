package substitution_test

import (
	"fmt"
	"testing"

	"github.com/okian/sideout/internal/domain/substitution"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Given an empty substitution record", t, func() {
		rec := substitution.NewRecord()
		onCourt := []string{"a", "b", "c", "d", "e", "f"}

		Convey("When a fresh starter/substitute pair is proposed", func() {
			err := rec.Validate("a", "x", onCourt)

			Convey("Then it is legal", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the leaving player is not on court", func() {
			err := rec.Validate("x", "y", onCourt)

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, substitution.ErrNotOnCourt)
			})
		})

		Convey("When the entering player is already on court", func() {
			err := rec.Validate("a", "b", onCourt)

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, substitution.ErrAlreadyOnCourt)
			})
		})
	})
}

func TestPairRules(t *testing.T) {
	Convey("Given a record where x replaced starter a", t, func() {
		rec := substitution.NewRecord().Apply("a", "x")
		onCourt := []string{"x", "b", "c", "d", "e", "f"}

		Convey("When the starter re-enters for their substitute", func() {
			err := rec.Validate("x", "a", onCourt)

			Convey("Then the second use of the pair is legal", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the substitute tries to replace a different starter", func() {
			err := rec.Validate("b", "x", []string{"a", "b", "c", "d", "e", "f"})

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, substitution.ErrPairedElsewhere)
			})
		})

		Convey("When a third use of the pair is proposed", func() {
			rec = rec.Apply("x", "a")
			err := rec.Validate("a", "x", []string{"a", "b", "c", "d", "e", "f"})

			Convey("Then the pair is exhausted", func() {
				So(err, ShouldEqual, substitution.ErrPairExhausted)
			})
		})
	})
}

func TestSetLimit(t *testing.T) {
	Convey("Given a set with six substitutions already used", t, func() {
		rec := substitution.NewRecord()
		onCourt := make([]string, 0, 6)
		for i := 0; i < substitution.MaxPerSet; i++ {
			starter := fmt.Sprintf("s%d", i)
			sub := fmt.Sprintf("r%d", i)
			rec = rec.Apply(starter, sub)
			onCourt = append(onCourt, sub)
		}
		So(rec.Total, ShouldEqual, substitution.MaxPerSet)

		Convey("When a seventh substitution uses a brand-new pair", func() {
			err := rec.Validate(onCourt[0], "fresh", onCourt)

			Convey("Then the set limit rejects it", func() {
				So(err, ShouldEqual, substitution.ErrLimitReached)
			})
		})
	})
}

func TestApplyIsImmutable(t *testing.T) {
	Convey("Given a record with one pair", t, func() {
		base := substitution.NewRecord().Apply("a", "x")

		Convey("When a further substitution is applied", func() {
			next := base.Apply("b", "y")

			Convey("Then the original record is unchanged", func() {
				So(base.Total, ShouldEqual, 1)
				So(len(base.Pairs), ShouldEqual, 1)
				So(next.Total, ShouldEqual, 2)
				So(len(next.Pairs), ShouldEqual, 2)
			})
		})

		Convey("When the same pair is used again", func() {
			next := base.Apply("x", "a")

			Convey("Then the pair's use count increments without a new pair", func() {
				So(len(next.Pairs), ShouldEqual, 1)
				So(next.Pairs[0].Uses, ShouldEqual, 2)
				So(base.Pairs[0].Uses, ShouldEqual, 1)
			})
		})
	})
}
