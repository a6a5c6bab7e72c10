package api

import "net/http"

// UndoHandler reverts the most recent logical step of a match.
type UndoHandler struct {
	deps Dependencies
}

// NewUndoHandler creates a new undo handler.
func NewUndoHandler(deps Dependencies) *UndoHandler {
	return &UndoHandler{deps: deps}
}

// HandlePostUndo handles POST /matches/{id}/undo requests.
func (h *UndoHandler) HandlePostUndo(w http.ResponseWriter, r *http.Request, matchID string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	state, err := h.deps.Undo(r.Context(), matchID)
	if err != nil {
		status, code := rejectionStatus(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Status: "ok", State: state})
}
