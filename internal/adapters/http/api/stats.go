package api

import "net/http"

// StatsProvider exposes service level counters and per-match aggregates.
type StatsProvider interface {
	Dependencies
	GetStats() map[string]interface{}
}

// StatsHandler serves service counters and per-player match statistics.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats requests with service wide counters.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}

// HandleMatchStats handles GET /matches/{id}/stats requests.
func (h *StatsHandler) HandleMatchStats(w http.ResponseWriter, r *http.Request, matchID string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	matchStats, err := h.provider.Stats(r.Context(), matchID)
	if err != nil {
		status, code := rejectionStatus(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, matchStats)
}
