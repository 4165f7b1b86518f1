package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yomu-reader/yomu-go/internal/models"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetAllSettings()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	if settings == nil {
		settings = []*models.Setting{}
	}
	RespondWithJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var payload struct {
		Value string `json:"value"`
		Type  string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Type == "" {
		payload.Type = models.SettingTypeString
	}
	if err := s.store.SetSetting(key, payload.Value, payload.Type); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	setting, err := s.store.GetSetting(key)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load setting")
		return
	}
	RespondWithJSON(w, http.StatusOK, setting)
}
