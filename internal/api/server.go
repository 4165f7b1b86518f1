// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yomu-reader/yomu-go/internal/bridge"
	"github.com/yomu-reader/yomu-go/internal/core"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/websocket"
)

// Server holds the dependencies for our API.
type Server struct {
	app    *core.App
	store  *store.Store
	bridge *bridge.Router
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:    app,
		store:  app.Store,
		bridge: bridge.NewRouter(app.Store, app.Downloader.Wake),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	// The page-to-host channel. The shell connects once per webview and
	// relays every frame the injected script posts.
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(s.app.WsHub, s.bridge.HandleRaw, w, r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleGetVersion)
		r.Get("/pagescript", s.handleGetPageScript)
		r.Get("/sites", s.handleListSites)
		r.Post("/messages", s.handlePostMessage)

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", s.handleListBookmarks)
			r.Post("/", s.handleUpsertBookmark)
			r.Delete("/{bookmarkID}", s.handleDeleteBookmark)
			r.Post("/{bookmarkID}/favorite", s.handleSetFavorite)
			r.Post("/{bookmarkID}/tags", s.handleSetTags)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleGetHistory)
			r.Delete("/", s.handleClearHistory)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Get("/", s.handleGetProgress)
			r.Get("/latest", s.handleGetLatestProgress)
			r.Get("/manga", s.handleGetMangaProgress)
		})

		r.Route("/downloads", func(r chi.Router) {
			r.Get("/", s.handleListDownloads)
			r.Post("/", s.handleEnqueueDownload)
			r.Delete("/{downloadID}", s.handleDeleteDownload)
			r.Post("/{downloadID}/pause", s.handlePauseDownload)
			r.Post("/{downloadID}/resume", s.handleResumeDownload)
			r.Post("/{downloadID}/cancel", s.handleCancelDownload)
			r.Get("/{downloadID}/pages", s.handleListDownloadPages)
			r.Get("/{downloadID}/pages/{pageIndex}", s.handleGetDownloadPage)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Post("/read-all", s.handleMarkAllNotificationsRead)
			r.Post("/{notificationID}/read", s.handleMarkNotificationRead)
			r.Get("/{notificationID}/tap", s.handleNotificationTap)
		})

		r.Route("/updates", func(r chi.Router) {
			r.Get("/", s.handleListUpdates)
			r.Post("/check", s.handleTriggerUpdateCheck)
			r.Post("/{updateID}/read", s.handleMarkUpdateRead)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Put("/{key}", s.handlePutSetting)
		})

		r.Route("/lifecycle", func(r chi.Router) {
			r.Get("/", s.handleGetLifecycleState)
			r.Post("/", s.handleSetLifecycleState)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/status", s.handleGetJobsStatus)
			r.Post("/run", s.handleRunJob)
		})
	})

	return r
}
