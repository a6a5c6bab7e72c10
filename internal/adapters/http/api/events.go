// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sideout/internal/domain/model"
)

// EventsHandler handles event intake requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// playerPayload mirrors a player snapshot on the wire.
type playerPayload struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (p playerPayload) toPlayer() model.Player {
	return model.Player{ID: p.ID, Number: p.Number, Name: p.Name, Role: model.Role(p.Role)}
}

// eventRequest is the intake schema for POST /matches/{id}/events. Only
// the fields relevant to the event type need to be set.
type eventRequest struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
	TS      string `json:"ts,omitempty"`

	Reason      string          `json:"reason,omitempty"`
	PlayerID    string          `json:"player_id,omitempty"`
	Rating      *int            `json:"rating,omitempty"`
	SetNumber   int             `json:"set_number,omitempty"`
	PlayerOutID string          `json:"player_out_id,omitempty"`
	PlayerIn    *playerPayload  `json:"player_in,omitempty"`
	Position    int             `json:"position,omitempty"`
	LiberoSwap  bool            `json:"libero_swap,omitempty"`
	Order       []playerPayload `json:"order,omitempty"`
	Libero      *playerPayload  `json:"libero,omitempty"`
	FirstServer string          `json:"first_server,omitempty"`
	Side        string          `json:"side,omitempty"`
}

func (e eventRequest) validate() error {
	if e.Type == "" {
		return fmt.Errorf("%w: type", ErrMissingField)
	}
	if e.TS != "" {
		if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
			return fmt.Errorf("invalid ts; must be RFC3339: %w", ErrBadRequest)
		}
	}
	switch e.Type {
	case model.KindReceptionEvaluated:
		if e.Rating == nil {
			return fmt.Errorf("%w: rating", ErrMissingField)
		}
		if *e.Rating < 0 || *e.Rating > 4 {
			return fmt.Errorf("rating must be 0-4: %w", ErrBadRequest)
		}
	case model.KindSubstitution:
		if e.PlayerOutID == "" || e.PlayerIn == nil {
			return fmt.Errorf("%w: player_out_id, player_in", ErrMissingField)
		}
	case model.KindLineupSet:
		if len(e.Order) != 6 {
			return fmt.Errorf("order must hold exactly six players: %w", ErrBadRequest)
		}
	case model.KindServiceChoice:
		if e.SetNumber != 1 && e.SetNumber != 5 {
			return fmt.Errorf("service choice applies to sets 1 and 5 only: %w", ErrBadRequest)
		}
		if e.FirstServer == "" {
			return fmt.Errorf("%w: first_server", ErrMissingField)
		}
	case model.KindTimeoutCalled:
		if e.Side == "" {
			return fmt.Errorf("%w: side", ErrMissingField)
		}
	}
	return nil
}

// toEvent builds the typed domain event after validation.
func (e eventRequest) toEvent(matchID string) (model.Event, error) {
	at := time.Now().UTC()
	if e.TS != "" {
		parsed, err := time.Parse(time.RFC3339, e.TS)
		if err != nil {
			return nil, fmt.Errorf("parse ts: %w", err)
		}
		at = parsed.UTC()
	}
	id := e.EventID
	if id == "" {
		id = uuid.NewString()
	}
	meta := model.Meta{ID: id, MatchID: matchID, At: at}

	switch e.Type {
	case model.KindPointForUs:
		return model.PointForUs{Meta: meta, Reason: model.PointReason(e.Reason), PlayerID: e.PlayerID}, nil
	case model.KindPointForOpponent:
		return model.PointForOpponent{Meta: meta, Reason: model.PointReason(e.Reason)}, nil
	case model.KindReceptionEvaluated:
		return model.ReceptionEvaluated{Meta: meta, PlayerID: e.PlayerID, Rating: *e.Rating}, nil
	case model.KindSubstitution:
		return model.Substitution{
			Meta:        meta,
			SetNumber:   e.SetNumber,
			PlayerOutID: e.PlayerOutID,
			PlayerIn:    e.PlayerIn.toPlayer(),
			Position:    e.Position,
			LiberoSwap:  e.LiberoSwap,
		}, nil
	case model.KindLineupSet:
		var order [6]model.Player
		for i, p := range e.Order {
			order[i] = p.toPlayer()
		}
		ev := model.LineupSet{Meta: meta, SetNumber: e.SetNumber, Order: order}
		if e.Libero != nil {
			libero := e.Libero.toPlayer()
			ev.Libero = &libero
		}
		return ev, nil
	case model.KindServiceChoice:
		return model.ServiceChoice{Meta: meta, SetNumber: e.SetNumber, FirstServer: model.Side(e.FirstServer)}, nil
	case model.KindSetStarted:
		return model.SetStarted{Meta: meta, SetNumber: e.SetNumber}, nil
	case model.KindTimeoutCalled:
		return model.TimeoutCalled{Meta: meta, Side: model.Side(e.Side)}, nil
	case model.KindFreeballSent:
		return model.FreeballSent{Meta: meta}, nil
	case model.KindFreeballReceived:
		return model.FreeballReceived{Meta: meta}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
}

// HandlePostEvent handles POST /matches/{id}/events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request, matchID string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	event, err := req.toEvent(matchID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Idempotency check for client-supplied ids - mark as seen first.
	eventID := event.Metadata().ID
	if req.EventID != "" && h.deps.SeenAndRecord(r.Context(), eventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	state, err := h.deps.AddEvent(r.Context(), matchID, event)
	if err != nil {
		// Roll back the "seen" status so a corrected retry may reuse the id.
		if req.EventID != "" {
			h.deps.Unrecord(r.Context(), eventID)
		}
		status, code := rejectionStatus(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, State: &state})
}
