package replay

import "github.com/okian/sideout/internal/domain/model"

// Option applies a configuration option to a fold.
type Option func(*State)

// WithOurSide sets which scoresheet side is "ours". Defaults to home.
func WithOurSide(side model.TeamSide) Option {
	return func(s *State) {
		if side == model.TeamHome || side == model.TeamAway {
			s.OurSide = side
		}
	}
}

// WithTeamNames sets the display names carried on the snapshot.
func WithTeamNames(home, away string) Option {
	return func(s *State) {
		s.HomeName = home
		s.AwayName = away
	}
}

// WithDismissedSets marks set summaries the caller already acknowledged,
// so re-folding does not re-surface them.
func WithDismissedSets(sets []int) Option {
	return func(s *State) {
		for _, n := range sets {
			s.dismissed[n] = true
		}
	}
}
