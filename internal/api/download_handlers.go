// A handler file for all download queue API endpoints.

package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yomu-reader/yomu-go/internal/downloader"
	"github.com/yomu-reader/yomu-go/internal/models"
)

func (s *Server) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.GetDownloads()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list downloads")
		return
	}
	if tasks == nil {
		tasks = []*models.DownloadTask{}
	}
	RespondWithJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleEnqueueDownload(w http.ResponseWriter, r *http.Request) {
	var payload models.DownloadTask
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.ChapterURL == "" || len(payload.ImageURLs) == 0 {
		RespondWithError(w, http.StatusBadRequest, "Chapter URL and image URLs are required")
		return
	}
	task, err := s.store.EnqueueDownload(&payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to enqueue download")
		return
	}
	s.app.Downloader.Wake()
	RespondWithJSON(w, http.StatusCreated, task)
}

func (s *Server) handleDeleteDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := downloadID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteDownload(id); err != nil {
		RespondWithError(w, http.StatusNotFound, "Download not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handlePauseDownload(w http.ResponseWriter, r *http.Request) {
	s.controlDownload(w, r, s.app.Downloader.Pause)
}

func (s *Server) handleResumeDownload(w http.ResponseWriter, r *http.Request) {
	s.controlDownload(w, r, s.app.Downloader.Resume)
}

func (s *Server) handleCancelDownload(w http.ResponseWriter, r *http.Request) {
	s.controlDownload(w, r, s.app.Downloader.Cancel)
}

func (s *Server) controlDownload(w http.ResponseWriter, r *http.Request, control func(int64) (*models.DownloadTask, error)) {
	id, ok := downloadID(w, r)
	if !ok {
		return
	}
	task, err := control(id)
	if err != nil {
		RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, task)
}

// handleListDownloadPages lists the pages inside a finished chapter
// archive, in reading order.
func (s *Server) handleListDownloadPages(w http.ResponseWriter, r *http.Request) {
	task, ok := s.archivedDownload(w, r)
	if !ok {
		return
	}
	pages, err := downloader.ListPages(r.Context(), *task.CBZPath)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read archive")
		return
	}
	RespondWithJSON(w, http.StatusOK, pages)
}

// handleGetDownloadPage streams one page image out of a chapter archive
// for the offline reader.
func (s *Server) handleGetDownloadPage(w http.ResponseWriter, r *http.Request) {
	task, ok := s.archivedDownload(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "pageIndex"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid page index")
		return
	}
	pages, err := downloader.ListPages(r.Context(), *task.CBZPath)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read archive")
		return
	}
	if index < 0 || index >= len(pages) {
		RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}
	data, err := downloader.ReadPage(r.Context(), *task.CBZPath, pages[index].FileName)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read page")
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(pages[index].FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) archivedDownload(w http.ResponseWriter, r *http.Request) (*models.DownloadTask, bool) {
	id, ok := downloadID(w, r)
	if !ok {
		return nil, false
	}
	task, err := s.store.GetDownloadByID(id)
	if err != nil {
		respondStoreError(w, err, "Download not found")
		return nil, false
	}
	if task.CBZPath == nil {
		RespondWithError(w, http.StatusConflict, "Download has no archive yet")
		return nil, false
	}
	return task, true
}

func downloadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "downloadID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid download ID")
		return 0, false
	}
	return id, true
}
