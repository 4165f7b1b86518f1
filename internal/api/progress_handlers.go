package api

import (
	"net/http"

	"github.com/yomu-reader/yomu-go/internal/models"
)

// handleGetProgress returns the saved state for one chapter, so the
// reader can restore the scroll position when the chapter is reopened.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	mangaURL := r.URL.Query().Get("manga")
	chapterURL := r.URL.Query().Get("chapter")
	if mangaURL == "" || chapterURL == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing manga or chapter parameter")
		return
	}
	p, err := s.store.GetProgress(mangaURL, chapterURL)
	if err != nil {
		respondStoreError(w, err, "No progress for this chapter")
		return
	}
	RespondWithJSON(w, http.StatusOK, p)
}

// handleGetLatestProgress returns where the reader left off in a series.
func (s *Server) handleGetLatestProgress(w http.ResponseWriter, r *http.Request) {
	mangaURL := r.URL.Query().Get("manga")
	if mangaURL == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing manga parameter")
		return
	}
	p, err := s.store.GetLatestProgress(mangaURL)
	if err != nil {
		respondStoreError(w, err, "No progress for this series")
		return
	}
	RespondWithJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetMangaProgress(w http.ResponseWriter, r *http.Request) {
	mangaURL := r.URL.Query().Get("manga")
	if mangaURL == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing manga parameter")
		return
	}
	list, err := s.store.GetProgressForManga(mangaURL)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}
	if list == nil {
		list = []*models.ReadingProgress{}
	}
	RespondWithJSON(w, http.StatusOK, list)
}
