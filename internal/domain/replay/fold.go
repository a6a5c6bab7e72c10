package replay

import (
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/domain/rotation"
	"github.com/okian/sideout/internal/domain/substitution"
)

// Fold reduces an ordered event list to the current derived state. The
// fold is left-to-right, single-pass after an id-deduplication sweep, and
// deterministic: folding the same list twice yields identical states.
// Events with a duplicate non-empty id are skipped (first occurrence wins)
// to tolerate at-least-once delivery from persistence.
func Fold(events []model.Event, opts ...Option) State {
	s := State{
		OurSide:    model.TeamHome,
		CurrentSet: 1,
		PointTypes: make(map[model.PointReason]int),
		dismissed:  make(map[int]bool),
	}
	for _, opt := range opts {
		opt(&s)
	}

	seen := make(map[string]bool, len(events))
	for _, e := range events {
		id := e.Metadata().ID
		if id != "" {
			if seen[id] {
				s.DuplicatesDropped++
				continue
			}
			seen[id] = true
		}
		if s.MatchID == "" {
			s.MatchID = e.Metadata().MatchID
		}
		s.apply(e)
	}
	return s
}

// apply folds one event into the state. Dispatch is exhaustive over the
// event sum type.
func (s *State) apply(e model.Event) {
	switch ev := e.(type) {
	case model.PointForUs:
		s.applyPoint(model.SideUs, ev.Reason)
	case model.PointForOpponent:
		s.applyPoint(model.SideOpponent, ev.Reason)
	case model.ReceptionEvaluated:
		s.applyReception(ev)
	case model.Substitution:
		s.applySubstitution(ev)
	case model.LineupSet:
		s.Lineup = ev.Order
		s.Libero = ev.Libero
		s.HasLineup = true
	case model.ServiceChoice:
		s.applyServiceChoice(ev)
	case model.SetStarted:
		s.applySetStarted(ev)
	case model.SetEnded:
		s.applySetEnded(ev)
	case model.TimeoutCalled:
		s.applyTimeout(ev)
	case model.FreeballSent:
		s.FreeballsSent++
	case model.FreeballReceived:
		s.FreeballsReceived++
	}
}

// applyPoint scores one rally for the given logical side. Rotation turns
// exactly when our side gains serve from a serving opponent; losing a
// rally never rotates our lineup.
func (s *State) applyPoint(winner model.Side, reason model.PointReason) {
	if s.MatchFinished || s.SetFinished {
		return
	}
	s.incrementScore(winner)
	if winner == model.SideUs {
		s.PointTypes[reason]++
		if s.Serving == model.SideOpponent {
			s.Lineup = rotation.Rotate(s.Lineup)
		}
		s.Serving = model.SideUs
		return
	}
	s.Serving = model.SideOpponent
}

// applyReception records reception quality. Rating zero is an opponent
// ace: the opponent scores and keeps serve, with no separate point event.
func (s *State) applyReception(ev model.ReceptionEvaluated) {
	if s.MatchFinished || s.SetFinished {
		return
	}
	s.ReceptionCount++
	s.ReceptionSum += ev.Rating
	if ev.Rating == 0 {
		s.incrementScore(model.SideOpponent)
		s.Serving = model.SideOpponent
	}
}

func (s *State) applySubstitution(ev model.Substitution) {
	if ev.LiberoSwap {
		in := ev.PlayerIn
		s.Libero = &in
		return
	}
	for i, p := range s.Lineup {
		if p.ID == ev.PlayerOutID {
			s.Lineup[i] = ev.PlayerIn
			break
		}
	}
	s.Subs = s.Subs.Apply(ev.PlayerOutID, ev.PlayerIn.ID)
}

func (s *State) applyServiceChoice(ev model.ServiceChoice) {
	switch ev.SetNumber {
	case 1:
		s.set1FirstServer = ev.FirstServer
	case 5:
		s.set5FirstServer = ev.FirstServer
	default:
		return
	}
	if s.CurrentSet == ev.SetNumber {
		s.Serving = ev.FirstServer
	}
}

func (s *State) applySetStarted(ev model.SetStarted) {
	s.CurrentSet = ev.SetNumber
	s.HomeScore = 0
	s.AwayScore = 0
	s.Subs = substitution.NewRecord()
	s.TimeoutsUs = 0
	s.TimeoutsOpponent = 0
	s.HasLineup = false
	s.Lineup = [6]model.Player{}
	s.Libero = nil
	s.SetFinished = false
	s.PointTypes = make(map[model.PointReason]int)
	s.ReceptionCount = 0
	s.ReceptionSum = 0
	s.FreeballsSent = 0
	s.FreeballsReceived = 0
	s.Serving = s.initialServer(ev.SetNumber)
}

func (s *State) applySetEnded(ev model.SetEnded) {
	s.SetFinished = true
	if ev.Winner == model.TeamHome {
		s.SetsWonHome++
	} else {
		s.SetsWonAway++
	}
	s.SetScores = append(s.SetScores, SetScore{
		SetNumber: ev.SetNumber,
		HomeScore: ev.HomeScore,
		AwayScore: ev.AwayScore,
		Winner:    ev.Winner,
	})
	if s.SetsWonHome >= SetsToWinMatch || s.SetsWonAway >= SetsToWinMatch {
		s.MatchFinished = true
	}

	if s.dismissed[ev.SetNumber] {
		s.PendingSummary = nil
		return
	}
	types := make(map[model.PointReason]int, len(s.PointTypes))
	for k, v := range s.PointTypes {
		types[k] = v
	}
	s.PendingSummary = &SetSummary{
		SetNumber:  ev.SetNumber,
		HomeScore:  ev.HomeScore,
		AwayScore:  ev.AwayScore,
		Winner:     ev.Winner,
		PointTypes: types,
	}
}

// applyTimeout clamps the derived counter at the per-set cap; rejecting an
// over-cap event is the intake's job, not the fold's.
func (s *State) applyTimeout(ev model.TimeoutCalled) {
	switch ev.Side {
	case model.SideUs:
		if s.TimeoutsUs < TimeoutsPerSet {
			s.TimeoutsUs++
		}
	case model.SideOpponent:
		if s.TimeoutsOpponent < TimeoutsPerSet {
			s.TimeoutsOpponent++
		}
	}
}

func (s *State) incrementScore(winner model.Side) {
	if (winner == model.SideUs) == (s.OurSide == model.TeamHome) {
		s.HomeScore++
	} else {
		s.AwayScore++
	}
}

// initialServer derives who serves first in a set: sets 1 and 5 come from
// their explicit choice, set 3 repeats set 1, sets 2 and 4 are the
// opposite of set 1. Empty until the relevant choice is on record.
func (s *State) initialServer(set int) model.Side {
	switch set {
	case 1:
		return s.set1FirstServer
	case 3:
		return s.set1FirstServer
	case 2, 4:
		if s.set1FirstServer == "" {
			return ""
		}
		return s.set1FirstServer.Opposite()
	case 5:
		return s.set5FirstServer
	default:
		return ""
	}
}

// EffectiveLineup is the libero-resolved projection of who is physically
// on court, used for display and substitution eligibility. The nominal
// Lineup stays authoritative for rotation and serve mechanics.
func (s State) EffectiveLineup() [6]model.Player {
	return rotation.ResolveLineup(s.Lineup, s.Libero, s.Serving == model.SideUs)
}
