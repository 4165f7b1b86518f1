// Package servertest builds a full application and API server for
// integration tests. It lives apart from testutil because it imports the
// packages whose own tests depend on testutil.
package servertest

import (
	"testing"
	"time"

	"github.com/yomu-reader/yomu-go/internal/api"
	"github.com/yomu-reader/yomu-go/internal/config"
	"github.com/yomu-reader/yomu-go/internal/core"
	"github.com/yomu-reader/yomu-go/internal/downloader"
	"github.com/yomu-reader/yomu-go/internal/jobs"
	"github.com/yomu-reader/yomu-go/internal/lifecycle"
	"github.com/yomu-reader/yomu-go/internal/notify"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/testutil"
	"github.com/yomu-reader/yomu-go/internal/tracker"
	"github.com/yomu-reader/yomu-go/internal/websocket"
)

// SetupTestApp wires a full core.App against an in-memory database and a
// temp downloads directory. Background services are constructed but not
// started; tests that need the worker or scheduler start them explicitly.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{}
	cfg.Downloads.Path = t.TempDir()
	cfg.Tracker.CheckInterval = 30
	cfg.Tracker.MinInterval = 15
	cfg.Reminder.Interval = 24

	st := store.New(db)
	hub := websocket.NewHub()
	go hub.Run()

	dispatcher := notify.New(st, hub)
	trackerSvc := tracker.New(st, dispatcher, time.Duration(cfg.Tracker.MinInterval)*time.Minute)
	worker := downloader.NewWorker(st, hub, dispatcher, cfg.Downloads.Path)

	jm := jobs.NewManager()
	jobs.RegisterAll(jm, st, trackerSvc, dispatcher, cfg.Reminder.Interval)

	app := &core.App{
		Config:     cfg,
		DB:         db,
		Store:      st,
		WsHub:      hub,
		JobManager: jm,
		Dispatcher: dispatcher,
		Tracker:    trackerSvc,
		Downloader: worker,
		Version:    "test",
	}
	app.Lifecycle = lifecycle.New(time.Duration(cfg.Tracker.CheckInterval)*time.Minute, func() {})

	t.Cleanup(app.Lifecycle.Shutdown)
	return app
}

// SetupTestServer initializes a full core.App and api.Server for
// integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *core.App) {
	t.Helper()
	app := SetupTestApp(t)
	return api.NewServer(app), app
}
