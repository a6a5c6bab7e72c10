package api

import "net/http"

// StateHandler serves derived match snapshots.
type StateHandler struct {
	deps Dependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps Dependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleGetState handles GET /matches/{id}/state requests.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request, matchID string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	state, err := h.deps.State(r.Context(), matchID)
	if err != nil {
		status, code := rejectionStatus(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Status: "ok", State: state})
}
