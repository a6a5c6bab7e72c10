package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SummaryHandler acknowledges pending end-of-set summaries.
type SummaryHandler struct {
	deps Dependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps Dependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

type dismissRequest struct {
	SetNumber int `json:"set_number"`
}

// HandleDismiss handles DELETE /matches/{id}/summary requests.
func (h *SummaryHandler) HandleDismiss(w http.ResponseWriter, r *http.Request, matchID string) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	var req dismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.SetNumber < 1 || req.SetNumber > 5 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: set_number", ErrMissingField))
		return
	}
	state, err := h.deps.DismissSummary(r.Context(), matchID, req.SetNumber)
	if err != nil {
		status, code := rejectionStatus(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Status: "ok", State: state})
}
