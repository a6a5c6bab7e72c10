// Package replay holds the derived-state reducer: a pure fold over a match
// event log that produces the current match snapshot. Nothing in this
// package performs I/O, reads the clock, or touches state outside the
// returned value, which is what makes undo a truncate-and-refold.
package replay

import (
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/domain/substitution"
)

// SetScore is one line of the per-set score history.
type SetScore struct {
	SetNumber int            `json:"set_number"`
	HomeScore int            `json:"home_score"`
	AwayScore int            `json:"away_score"`
	Winner    model.TeamSide `json:"winner"`
}

// SetSummary is the payload shown to the scorer when a set ends. It stays
// pending until the caller acknowledges it; acknowledged sets are tracked
// by a dismissed-set list supplied to the fold, not by deleting events.
type SetSummary struct {
	SetNumber  int                       `json:"set_number"`
	HomeScore  int                       `json:"home_score"`
	AwayScore  int                       `json:"away_score"`
	Winner     model.TeamSide            `json:"winner"`
	PointTypes map[model.PointReason]int `json:"point_types"`
}

// State is the complete derived match state. It is a pure function of the
// event log and is never stored independently of it.
type State struct {
	MatchID  string         `json:"match_id"`
	OurSide  model.TeamSide `json:"our_side"`
	HomeName string         `json:"home_name,omitempty"`
	AwayName string         `json:"away_name,omitempty"`

	CurrentSet int `json:"current_set"`
	HomeScore  int `json:"home_score"`
	AwayScore  int `json:"away_score"`

	SetsWonHome int `json:"sets_won_home"`
	SetsWonAway int `json:"sets_won_away"`

	// Serving is the logical side serving the next rally. Empty until a
	// service choice fixes it for the active set.
	Serving model.Side `json:"serving,omitempty"`

	// Lineup is the nominal six-player rotation: always the starters and
	// their field substitutes, regardless of any libero overlay. Use
	// EffectiveLineup for who is physically on court.
	Lineup    [6]model.Player `json:"lineup"`
	HasLineup bool            `json:"has_lineup"`
	Libero    *model.Player   `json:"libero,omitempty"`

	SetScores      []SetScore  `json:"set_scores,omitempty"`
	SetFinished    bool        `json:"set_finished"`
	MatchFinished  bool        `json:"match_finished"`
	PendingSummary *SetSummary `json:"pending_summary,omitempty"`

	Subs substitution.Record `json:"substitutions"`

	TimeoutsUs       int `json:"timeouts_us"`
	TimeoutsOpponent int `json:"timeouts_opponent"`

	// Active-set tallies used for summaries and statistics.
	PointTypes        map[model.PointReason]int `json:"point_types,omitempty"`
	ReceptionCount    int                       `json:"reception_count"`
	ReceptionSum      int                       `json:"reception_sum"`
	FreeballsSent     int                       `json:"freeballs_sent"`
	FreeballsReceived int                       `json:"freeballs_received"`

	// DuplicatesDropped counts events skipped by id deduplication, kept
	// for the caller's diagnostics.
	DuplicatesDropped int `json:"-"`

	// Service-choice memory across sets; sets 2-4 derive their first
	// server from set 1's choice.
	set1FirstServer model.Side
	set5FirstServer model.Side

	dismissed map[int]bool
}

// ServingTeam maps the logical serving side onto the scoresheet. The second
// return is false while no service choice is on record.
func (s State) ServingTeam() (model.TeamSide, bool) {
	switch s.Serving {
	case model.SideUs:
		return s.OurSide, true
	case model.SideOpponent:
		return s.OurSide.Opposite(), true
	default:
		return "", false
	}
}

// OurScore returns our side's running score in the active set.
func (s State) OurScore() int {
	if s.OurSide == model.TeamHome {
		return s.HomeScore
	}
	return s.AwayScore
}

// OpponentScore returns the opposing side's running score in the active set.
func (s State) OpponentScore() int {
	if s.OurSide == model.TeamHome {
		return s.AwayScore
	}
	return s.HomeScore
}
