// A handler file for all bookmark-related API endpoints.

package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yomu-reader/yomu-go/internal/models"
)

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	favoritesOnly := r.URL.Query().Get("favorites") == "true"
	bookmarks, err := s.store.GetBookmarks(favoritesOnly)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list bookmarks")
		return
	}
	if bookmarks == nil {
		bookmarks = []*models.Bookmark{}
	}
	RespondWithJSON(w, http.StatusOK, bookmarks)
}

func (s *Server) handleUpsertBookmark(w http.ResponseWriter, r *http.Request) {
	var payload models.Bookmark
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Title == "" || payload.URL == "" {
		RespondWithError(w, http.StatusBadRequest, "Title and URL are required")
		return
	}
	b, err := s.store.UpsertBookmark(&payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save bookmark")
		return
	}
	RespondWithJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookmarkID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid bookmark ID")
		return
	}
	if err := s.store.DeleteBookmark(id); err != nil {
		RespondWithError(w, http.StatusNotFound, "Bookmark not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSetFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookmarkID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid bookmark ID")
		return
	}
	var payload struct {
		Favorite bool `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.store.SetBookmarkFavorite(id, payload.Favorite); err != nil {
		RespondWithError(w, http.StatusNotFound, "Bookmark not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSetTags(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookmarkID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid bookmark ID")
		return
	}
	var payload struct {
		Tags string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.store.SetBookmarkTags(id, payload.Tags); err != nil {
		RespondWithError(w, http.StatusNotFound, "Bookmark not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondStoreError converts a sql.ErrNoRows into a 404, anything else
// into a 500.
func respondStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	if err == sql.ErrNoRows {
		RespondWithError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	RespondWithError(w, http.StatusInternalServerError, "Database error")
}
