// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/sideout/internal/app"
	"github.com/okian/sideout/internal/domain/dedupe"
	"github.com/okian/sideout/internal/domain/model"
	"github.com/okian/sideout/internal/domain/replay"
	"github.com/okian/sideout/internal/domain/stats"
	"github.com/okian/sideout/internal/domain/substitution"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// AddEvent validates and appends one event, returning the fresh
	// derived snapshot.
	AddEvent(ctx context.Context, matchID string, e model.Event) (replay.State, error)

	// State returns the current derived snapshot.
	State(ctx context.Context, matchID string) (replay.State, error)

	// Undo truncates one logical step and re-folds.
	Undo(ctx context.Context, matchID string) (replay.State, error)

	// DismissSummary acknowledges a pending set summary.
	DismissSummary(ctx context.Context, matchID string, setNumber int) (replay.State, error)

	// Stats computes per-player aggregates from the event list.
	Stats(ctx context.Context, matchID string) (stats.MatchStats, error)
}

// Subscriber attaches a websocket client for live snapshots.
type Subscriber interface {
	Subscribe(w http.ResponseWriter, r *http.Request, matchID string)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	stateHandler   *StateHandler
	undoHandler    *UndoHandler
	summaryHandler *SummaryHandler
	subscriber     Subscriber
}

// NewServer creates a new API server with all handlers. The subscriber may
// be nil, in which case websocket subscriptions 404.
func NewServer(deps Dependencies, statsProvider StatsProvider, subscriber Subscriber) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		eventsHandler:  NewEventsHandler(deps),
		stateHandler:   NewStateHandler(deps),
		undoHandler:    NewUndoHandler(deps),
		summaryHandler: NewSummaryHandler(deps),
		subscriber:     subscriber,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/matches/", s.routeMatch)
}

// routeMatch dispatches /matches/{id}/{action} to the action handlers.
func (s *Server) routeMatch(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/matches/")
	matchID, action, ok := strings.Cut(rest, "/")
	if !ok || matchID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch action {
	case "events":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.eventsHandler.HandlePostEvent(w, r, matchID)
		}, "events")(w, r)
	case "state":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.stateHandler.HandleGetState(w, r, matchID)
		}, "state")(w, r)
	case "undo":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.undoHandler.HandlePostUndo(w, r, matchID)
		}, "undo")(w, r)
	case "summary":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.summaryHandler.HandleDismiss(w, r, matchID)
		}, "summary")(w, r)
	case "stats":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.statsHandler.HandleMatchStats(w, r, matchID)
		}, "match_stats")(w, r)
	case "ws":
		if s.subscriber == nil {
			http.NotFound(w, r)
			return
		}
		s.subscriber.Subscribe(w, r, matchID)
	default:
		http.NotFound(w, r)
	}
}

type stateResponse struct {
	Status string       `json:"status"`
	State  replay.State `json:"state"`
}

type ackResponse struct {
	Status    string        `json:"status"`
	Duplicate bool          `json:"duplicate"`
	State     *replay.State `json:"state,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// rejectionStatus translates intake rejections to HTTP statuses: domain
// rule violations are conflicts, precondition violations are
// unprocessable, and an unloaded match is not found.
func rejectionStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnknownMatch):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrMatchFinished),
		errors.Is(err, service.ErrSetFinished),
		errors.Is(err, service.ErrNoLineup):
		return http.StatusUnprocessableEntity, "precondition"
	case errors.Is(err, service.ErrTimeoutLimit),
		errors.Is(err, service.ErrNothingToUndo),
		errors.Is(err, substitution.ErrLimitReached),
		errors.Is(err, substitution.ErrNotOnCourt),
		errors.Is(err, substitution.ErrAlreadyOnCourt),
		errors.Is(err, substitution.ErrPairedElsewhere),
		errors.Is(err, substitution.ErrPairExhausted):
		return http.StatusConflict, "rejected"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
