package replay

import "github.com/okian/sideout/internal/domain/model"

// Set and match completion thresholds.
const (
	// SetsToWinMatch ends the match for the first side to take this many sets.
	SetsToWinMatch = 3
	// TimeoutsPerSet caps each side's timeouts in one set.
	TimeoutsPerSet = 2

	regularSetTarget  = 25
	decidingSetTarget = 15
	decidingSetNumber = 5
	winBy             = 2
)

// Target returns the score a side must reach to win the given set.
func Target(set int) int {
	if set == decidingSetNumber {
		return decidingSetTarget
	}
	return regularSetTarget
}

// CompletedWinner checks the active set against its target: a side wins at
// or above target with a lead of at least two. Consulted after every
// point-scoring fold; a true result means the caller should append a
// synthetic set-ended event (and a set-started one if the match goes on).
func (s State) CompletedWinner() (model.TeamSide, bool) {
	if s.SetFinished {
		return "", false
	}
	target := Target(s.CurrentSet)
	switch {
	case s.HomeScore >= target && s.HomeScore-s.AwayScore >= winBy:
		return model.TeamHome, true
	case s.AwayScore >= target && s.AwayScore-s.HomeScore >= winBy:
		return model.TeamAway, true
	default:
		return "", false
	}
}

// UndoSpan reports how many tail events make up one logical undo step.
// A point that triggered a synthetic set-ended (and possibly set-started)
// pair is undone together with them; everything else undoes one event at a
// time. Truncating the returned count and re-folding always yields the
// state as if those events never happened.
func UndoSpan(events []model.Event) int {
	n := len(events)
	if n == 0 {
		return 0
	}
	switch events[n-1].(type) {
	case model.SetStarted:
		if n >= 2 {
			if _, ok := events[n-2].(model.SetEnded); ok {
				if n >= 3 && isScoring(events[n-3]) {
					return 3
				}
				return 2
			}
		}
		return 1
	case model.SetEnded:
		if n >= 2 && isScoring(events[n-2]) {
			return 2
		}
		return 1
	default:
		return 1
	}
}

// isScoring reports whether an event can award a point and therefore
// trigger set completion.
func isScoring(e model.Event) bool {
	switch e.(type) {
	case model.PointForUs, model.PointForOpponent, model.ReceptionEvaluated:
		return true
	default:
		return false
	}
}
