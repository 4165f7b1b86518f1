// Handlers for the notification inbox and the chapter update feed.

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yomu-reader/yomu-go/internal/jobs"
	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/notify"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.store.GetNotifications(r.URL.Query().Get("channel"), limit)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	RespondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.store.MarkAllNotificationsRead(); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}
	if err := s.store.MarkNotificationRead(id); err != nil {
		RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNotificationTap resolves where the shell should navigate when
// the user taps a notification, and marks it read.
func (s *Server) handleNotificationTap(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}
	n, err := s.store.GetNotificationByID(id)
	if err != nil {
		respondStoreError(w, err, "Notification not found")
		return
	}
	if err := s.store.MarkNotificationRead(id); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to mark notification read")
		return
	}
	RespondWithJSON(w, http.StatusOK, notify.RouteTap(n))
}

func (s *Server) handleListUpdates(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	list, err := s.store.GetUpdateNotifications(unreadOnly)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list updates")
		return
	}
	if list == nil {
		list = []*models.UpdateNotification{}
	}
	RespondWithJSON(w, http.StatusOK, list)
}

func (s *Server) handleTriggerUpdateCheck(w http.ResponseWriter, r *http.Request) {
	// Jobs outlive the request that started them.
	if err := s.app.JobManager.RunJob(context.Background(), jobs.JobUpdateCheck); err != nil {
		RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleMarkUpdateRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "updateID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid update ID")
		return
	}
	if err := s.store.MarkUpdateNotificationRead(id); err != nil {
		RespondWithError(w, http.StatusNotFound, "Update not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func notificationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return 0, false
	}
	return id, true
}
