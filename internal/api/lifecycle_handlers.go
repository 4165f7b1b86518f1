package api

import (
	"encoding/json"
	"net/http"

	"github.com/yomu-reader/yomu-go/internal/lifecycle"
)

func (s *Server) handleGetLifecycleState(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]lifecycle.State{"state": s.app.Lifecycle.State()})
}

// handleSetLifecycleState is called by the shell when the host app moves
// between the foreground and the background.
func (s *Server) handleSetLifecycleState(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		State lifecycle.State `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch payload.State {
	case lifecycle.StateForeground:
		s.app.Lifecycle.EnterForeground()
	case lifecycle.StateBackground:
		s.app.Lifecycle.EnterBackground()
	default:
		RespondWithError(w, http.StatusBadRequest, "State must be 'foreground' or 'background'")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]lifecycle.State{"state": s.app.Lifecycle.State()})
}
