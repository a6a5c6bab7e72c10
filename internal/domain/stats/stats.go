// Package stats computes per-player aggregates from a finalized match
// event list. It is a read-only consumer of the log: no state here feeds
// back into scoring.
package stats

import "github.com/okian/sideout/internal/domain/model"

// PlayerStats aggregates one player's contribution across a match.
type PlayerStats struct {
	PlayerID     string  `json:"player_id"`
	ServePoints  int     `json:"serve_points"`
	AttackPoints int     `json:"attack_points"`
	BlockPoints  int     `json:"block_points"`
	Receptions   int     `json:"receptions"`
	ReceptionAvg float64 `json:"reception_avg"`

	receptionSum int
}

// MatchStats is the full per-match aggregate set.
type MatchStats struct {
	MatchID string                  `json:"match_id"`
	Players map[string]*PlayerStats `json:"players"`

	TotalRallies      int `json:"total_rallies"`
	FreeballsSent     int `json:"freeballs_sent"`
	FreeballsReceived int `json:"freeballs_received"`
}

// Compute folds the event list into per-player aggregates. Point events
// without player attribution still count toward rally totals.
func Compute(events []model.Event) MatchStats {
	m := MatchStats{Players: make(map[string]*PlayerStats)}
	for _, e := range events {
		if m.MatchID == "" {
			m.MatchID = e.Metadata().MatchID
		}
		switch ev := e.(type) {
		case model.PointForUs:
			m.TotalRallies++
			if ev.PlayerID == "" {
				continue
			}
			p := m.player(ev.PlayerID)
			switch ev.Reason {
			case model.ReasonServe:
				p.ServePoints++
			case model.ReasonAttack:
				p.AttackPoints++
			case model.ReasonBlock:
				p.BlockPoints++
			}
		case model.PointForOpponent:
			m.TotalRallies++
		case model.ReceptionEvaluated:
			if ev.Rating == 0 {
				m.TotalRallies++
			}
			p := m.player(ev.PlayerID)
			p.Receptions++
			p.receptionSum += ev.Rating
			p.ReceptionAvg = float64(p.receptionSum) / float64(p.Receptions)
		case model.FreeballSent:
			m.FreeballsSent++
		case model.FreeballReceived:
			m.FreeballsReceived++
		}
	}
	return m
}

func (m *MatchStats) player(id string) *PlayerStats {
	if p, ok := m.Players[id]; ok {
		return p
	}
	p := &PlayerStats{PlayerID: id}
	m.Players[id] = p
	return p
}
