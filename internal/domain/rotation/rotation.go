// Package rotation implements the volleyball rotation engine and the
// libero lineup resolver. Both are pure functions over six-player orders;
// index i holds the player at court position i+1.
package rotation

import "github.com/okian/sideout/internal/domain/model"

// Back-row court positions (1-based): 1 serves, 5 and 6 defend.
const (
	positionOne  = 0
	positionFive = 4
	positionSix  = 5
)

// Rotate applies the cyclic shift performed when a side gains serve: the
// player at position 2 moves to 1, 3 to 2, and so on, while the player at
// position 1 moves to 6. Total; no failure modes.
func Rotate(order [6]model.Player) [6]model.Player {
	var out [6]model.Player
	for i := 0; i < 5; i++ {
		out[i] = order[i+1]
	}
	out[5] = order[0]
	return out
}

// ResolveLineup computes who is effectively on court once the libero rule
// is applied to a base rotation. Middle blockers in the back row are shown
// as the libero, except at position 1 while the team is serving (a libero
// may not serve). Front-row positions are never altered. When no libero is
// active the base order is returned unchanged.
//
// The base rotation stays authoritative for rotate/serve mechanics; the
// resolved order is a projection used for display and substitution
// eligibility only.
func ResolveLineup(base [6]model.Player, libero *model.Player, serving bool) [6]model.Player {
	if libero == nil || libero.IsZero() {
		return base
	}
	out := base
	for _, pos := range []int{positionOne, positionFive, positionSix} {
		if out[pos].Role != model.RoleMiddleBlocker {
			continue
		}
		if pos == positionOne && serving {
			continue
		}
		out[pos] = *libero
	}
	return out
}

// OnCourtIDs lists the player ids of an order, in position order.
func OnCourtIDs(order [6]model.Player) []string {
	ids := make([]string, 0, len(order))
	for _, p := range order {
		if !p.IsZero() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
