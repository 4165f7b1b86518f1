package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/yomu-reader/yomu-go/internal/pagescript"
	"github.com/yomu-reader/yomu-go/internal/sites"
)

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version})
}

// handleGetPageScript returns the injection script for a page. The shell
// passes either the full page URL or just the hostname; unknown hosts get
// the generic profile.
func (s *Server) handleGetPageScript(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	if pageURL := r.URL.Query().Get("url"); pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid url parameter")
			return
		}
		host = u.Hostname()
	}
	if host == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing url or host parameter")
		return
	}

	script, err := pagescript.BuildForHost(host)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to build page script")
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, script)
}

// handleListSites returns the registered site profiles so the shell can
// show which sites get tailored handling.
func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	type siteInfo struct {
		ID        string   `json:"id"`
		Fragments []string `json:"fragments"`
	}
	var out []siteInfo
	for _, p := range sites.All() {
		out = append(out, siteInfo{ID: p.ID, Fragments: p.Fragments})
	}
	RespondWithJSON(w, http.StatusOK, out)
}

// handlePostMessage accepts a single page message frame over HTTP, for
// shells that cannot hold a websocket open (e.g. during teardown).
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Failed to read body")
		return
	}
	if err := s.bridge.Dispatch(raw); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetJobsStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.JobManager.GetStatus())
}

func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing name parameter")
		return
	}
	// Jobs outlive the request, so they get a fresh context.
	if err := s.app.JobManager.RunJob(context.Background(), name); err != nil {
		RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
