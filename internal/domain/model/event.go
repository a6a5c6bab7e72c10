// Package model contains domain models passed between layers: the match
// event sum type, player snapshots, and the append-only event log.
package model

import "time"

// Side is the logical side of an event from the scorer's perspective.
type Side string

// Logical sides.
const (
	SideUs       Side = "us"
	SideOpponent Side = "opponent"
)

// Opposite returns the other logical side.
func (s Side) Opposite() Side {
	if s == SideUs {
		return SideOpponent
	}
	return SideUs
}

// TeamSide maps a logical side onto the scoresheet.
type TeamSide string

// Scoresheet sides.
const (
	TeamHome TeamSide = "home"
	TeamAway TeamSide = "away"
)

// Opposite returns the other scoresheet side.
func (t TeamSide) Opposite() TeamSide {
	if t == TeamHome {
		return TeamAway
	}
	return TeamHome
}

// PointReason classifies how a rally ended.
type PointReason string

// Point reason codes recorded into per-set tallies.
const (
	ReasonServe         PointReason = "serve"
	ReasonAttack        PointReason = "attack"
	ReasonBlock         PointReason = "block"
	ReasonOpponentError PointReason = "opponent_error"
	ReasonOther         PointReason = "other"
)

// Meta carries the identity fields shared by every event.
type Meta struct {
	ID      string    `json:"id"`
	MatchID string    `json:"match_id"`
	At      time.Time `json:"at"`
}

// Event is the closed set of facts appended to a match log. Each variant
// carries only the payload relevant to its tag, so the reducer's dispatch
// over variants stays exhaustive. Events are never mutated or reordered
// once appended; the log supports append and truncate-from-the-end only.
type Event interface {
	// Metadata returns the shared identity fields.
	Metadata() Meta

	eventTag()
}

// PointForUs records a rally won by our side.
type PointForUs struct {
	Meta
	Reason PointReason `json:"reason"`
	// PlayerID attributes the point to a player when the scorer knows who
	// finished the rally. Optional.
	PlayerID string `json:"player_id,omitempty"`
}

// PointForOpponent records a rally won by the opposing side.
type PointForOpponent struct {
	Meta
	Reason PointReason `json:"reason"`
}

// ReceptionEvaluated records a serve-reception quality rating from 0 to 4.
// A rating of zero is an opponent ace: the fold awards the opponent the
// point and flips serve without a separate point event.
type ReceptionEvaluated struct {
	Meta
	PlayerID string `json:"player_id"`
	Rating   int    `json:"rating"`
}

// Substitution records a player change. When LiberoSwap is set only the
// active libero changes and no field-substitution bookkeeping applies.
type Substitution struct {
	Meta
	SetNumber   int    `json:"set_number"`
	PlayerOutID string `json:"player_out_id"`
	PlayerIn    Player `json:"player_in"`
	Position    int    `json:"position"`
	LiberoSwap  bool   `json:"libero_swap"`
}

// LineupSet installs the six-player rotation and libero for a set.
type LineupSet struct {
	Meta
	SetNumber int       `json:"set_number"`
	Order     [6]Player `json:"order"`
	Libero    *Player   `json:"libero,omitempty"`
}

// ServiceChoice records which side serves first. Only sets 1 and 5 require
// an explicit choice; sets 2-4 alternate from set 1's.
type ServiceChoice struct {
	Meta
	SetNumber   int  `json:"set_number"`
	FirstServer Side `json:"first_server"`
}

// SetStarted opens a new set. Emitted explicitly for set 1 and
// synthetically by the completion detector for later sets.
type SetStarted struct {
	Meta
	SetNumber int `json:"set_number"`
}

// SetEnded closes a set with its final score and winner.
type SetEnded struct {
	Meta
	SetNumber int      `json:"set_number"`
	HomeScore int      `json:"home_score"`
	AwayScore int      `json:"away_score"`
	Winner    TeamSide `json:"winner"`
}

// TimeoutCalled records a timeout taken by one side.
type TimeoutCalled struct {
	Meta
	Side Side `json:"side"`
}

// FreeballSent records a freeball played over to the opponent.
type FreeballSent struct {
	Meta
}

// FreeballReceived records a freeball received from the opponent.
type FreeballReceived struct {
	Meta
}

// Metadata implements Event for every variant via the embedded Meta.
func (m Meta) Metadata() Meta { return m }

func (PointForUs) eventTag()         {}
func (PointForOpponent) eventTag()   {}
func (ReceptionEvaluated) eventTag() {}
func (Substitution) eventTag()       {}
func (LineupSet) eventTag()          {}
func (ServiceChoice) eventTag()      {}
func (SetStarted) eventTag()         {}
func (SetEnded) eventTag()           {}
func (TimeoutCalled) eventTag()      {}
func (FreeballSent) eventTag()       {}
func (FreeballReceived) eventTag()   {}
