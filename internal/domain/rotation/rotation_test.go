package rotation_test

import (
	"testing"

	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/domain/rotation"
	. "github.com/smartystreets/goconvey/convey"
)

func courtOrder() [6]model.Player {
	return [6]model.Player{
		{ID: "p1", Number: 1, Role: model.RoleSetter},
		{ID: "p2", Number: 2, Role: model.RoleOutside},
		{ID: "p3", Number: 3, Role: model.RoleMiddleBlocker},
		{ID: "p4", Number: 4, Role: model.RoleOpposite},
		{ID: "p5", Number: 5, Role: model.RoleOutside},
		{ID: "p6", Number: 6, Role: model.RoleMiddleBlocker},
	}
}

func TestRotate(t *testing.T) {
	Convey("Given a six-player rotation order", t, func() {
		order := courtOrder()

		Convey("When the team rotates", func() {
			rotated := rotation.Rotate(order)

			Convey("Then position 2 moves to 1 and position 1 moves to 6", func() {
				So(rotated[0].ID, ShouldEqual, "p2")
				So(rotated[1].ID, ShouldEqual, "p3")
				So(rotated[2].ID, ShouldEqual, "p4")
				So(rotated[3].ID, ShouldEqual, "p5")
				So(rotated[4].ID, ShouldEqual, "p6")
				So(rotated[5].ID, ShouldEqual, "p1")
			})

			Convey("Then the input order is left untouched", func() {
				So(order[0].ID, ShouldEqual, "p1")
				So(order[5].ID, ShouldEqual, "p6")
			})
		})

		Convey("When the team rotates six times", func() {
			rotated := order
			for i := 0; i < 6; i++ {
				rotated = rotation.Rotate(rotated)
			}

			Convey("Then the order returns to the starting rotation", func() {
				So(rotated, ShouldResemble, order)
			})
		})
	})
}

func TestResolveLineup(t *testing.T) {
	Convey("Given a rotation with middle blockers at positions 3 and 6", t, func() {
		order := courtOrder()
		libero := &model.Player{ID: "lib", Number: 17, Role: model.RoleLibero}

		Convey("When the lineup is resolved while receiving", func() {
			resolved := rotation.ResolveLineup(order, libero, false)

			Convey("Then the back-row middle blocker shows as the libero", func() {
				So(resolved[5].ID, ShouldEqual, "lib")
			})

			Convey("Then the front-row middle blocker is untouched", func() {
				So(resolved[2].ID, ShouldEqual, "p3")
			})
		})

		Convey("When a middle blocker rotates to position 1", func() {
			rotated := order
			for i := 0; i < 4; i++ {
				rotated = rotation.Rotate(rotated)
			}
			So(rotated[0].ID, ShouldEqual, "p6")

			Convey("And the team is serving", func() {
				resolved := rotation.ResolveLineup(rotated, libero, true)

				Convey("Then position 1 keeps the middle blocker", func() {
					So(resolved[0].ID, ShouldEqual, "p6")
				})
			})

			Convey("And the team is receiving", func() {
				resolved := rotation.ResolveLineup(rotated, libero, false)

				Convey("Then position 1 shows the libero", func() {
					So(resolved[0].ID, ShouldEqual, "lib")
				})
			})
		})

		Convey("When no libero is registered", func() {
			resolved := rotation.ResolveLineup(order, nil, false)

			Convey("Then the base order is returned unchanged", func() {
				So(resolved, ShouldResemble, order)
			})
		})
	})
}

func TestOnCourtIDs(t *testing.T) {
	Convey("Given a full six-player order", t, func() {
		ids := rotation.OnCourtIDs(courtOrder())

		Convey("Then all six ids are listed in position order", func() {
			So(ids, ShouldResemble, []string{"p1", "p2", "p3", "p4", "p5", "p6"})
		})
	})

	Convey("Given an order with empty slots", t, func() {
		ids := rotation.OnCourtIDs([6]model.Player{{ID: "p1", Number: 1}})

		Convey("Then only filled slots are listed", func() {
			So(ids, ShouldResemble, []string{"p1"})
		})
	})
}
