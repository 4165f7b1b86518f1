package api

import (
	"net/http"
	"strconv"

	"github.com/yomu-reader/yomu-go/internal/models"
)

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	var entries []*models.HistoryEntry
	var err error
	if term := r.URL.Query().Get("q"); term != "" {
		entries, err = s.store.SearchHistory(term, limit)
	} else {
		entries, err = s.store.GetHistory(limit, offset)
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	if entries == nil {
		entries = []*models.HistoryEntry{}
	}
	RespondWithJSON(w, http.StatusOK, entries)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearHistory(); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
