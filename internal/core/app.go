package core

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yomu-reader/yomu-go/internal/config"
	"github.com/yomu-reader/yomu-go/internal/db"
	"github.com/yomu-reader/yomu-go/internal/downloader"
	"github.com/yomu-reader/yomu-go/internal/jobs"
	"github.com/yomu-reader/yomu-go/internal/lifecycle"
	"github.com/yomu-reader/yomu-go/internal/notify"
	"github.com/yomu-reader/yomu-go/internal/pagescript"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/tracker"
	"github.com/yomu-reader/yomu-go/internal/websocket"
)

// App holds the core components of the application.
type App struct {
	Config     *config.Config
	DB         *sql.DB
	Store      *store.Store
	WsHub      *websocket.Hub
	JobManager *jobs.JobManager
	Dispatcher *notify.Dispatcher
	Tracker    *tracker.Service
	Downloader *downloader.Worker
	Lifecycle  *lifecycle.Manager
	Version    string

	scheduler *gocron.Scheduler
	watcher   *downloader.WatcherService
}

// New sets up and returns a new App instance: configuration, database,
// migrations, and every background service, not yet started.
func New(version string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// A broken script template should stop the server at boot, not break
	// every page at runtime.
	if err := pagescript.Validate(); err != nil {
		return nil, err
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	st := store.New(database)
	hub := websocket.NewHub()
	dispatcher := notify.New(st, hub)

	minInterval := time.Duration(cfg.Tracker.MinInterval) * time.Minute
	trackerSvc := tracker.New(st, dispatcher, minInterval)
	worker := downloader.NewWorker(st, hub, dispatcher, cfg.Downloads.Path)

	jm := jobs.NewManager()
	jobs.RegisterAll(jm, st, trackerSvc, dispatcher, cfg.Reminder.Interval)

	app := &App{
		Config:     cfg,
		DB:         database,
		Store:      st,
		WsHub:      hub,
		JobManager: jm,
		Dispatcher: dispatcher,
		Tracker:    trackerSvc,
		Downloader: worker,
		Version:    version,
	}
	app.Lifecycle = lifecycle.New(
		time.Duration(cfg.Tracker.CheckInterval)*time.Minute,
		app.triggerUpdateCheck,
	)

	log.Println("Core application setup complete.")
	return app, nil
}

// Start launches the websocket hub, download worker, downloads watcher,
// and job scheduler.
func (a *App) Start() {
	go a.WsHub.Run()
	a.Downloader.Start()

	a.watcher = downloader.NewWatcherService(a.Store, a.Config.Downloads.Path)
	if err := a.watcher.Start(); err != nil {
		// The watcher is a convenience; downloads still work without it.
		log.Printf("Downloads watcher not started: %v", err)
		a.watcher = nil
	}

	a.scheduler = jobs.Schedule(a.JobManager, a.Config.Tracker.CheckInterval, a.Config.Reminder.Interval)
}

// Close gracefully shuts down the application's resources.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.Lifecycle != nil {
		a.Lifecycle.Shutdown()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.Downloader != nil {
		a.Downloader.Stop()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func (a *App) triggerUpdateCheck() {
	if err := a.JobManager.RunJob(context.Background(), jobs.JobUpdateCheck); err != nil {
		log.Printf("Update check trigger: %v", err)
	}
}
