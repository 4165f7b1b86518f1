package models

import "time"

// UpdateNotification records that a new chapter was detected for a
// bookmarked series. At most one exists per (series, chapter title) pair.
type UpdateNotification struct {
	ID           int64     `json:"id"`
	MangaTitle   string    `json:"manga_title"`
	MangaURL     string    `json:"manga_url"`
	ChapterTitle string    `json:"chapter_title"`
	ChapterURL   *string   `json:"chapter_url,omitempty"`
	IsRead       bool      `json:"is_read"`
	Sent         bool      `json:"sent"`
	CreatedAt    time.Time `json:"created_at"`
}

// Notification channels, mirroring the channel set the shell registers
// with the OS.
const (
	ChannelMangaUpdates = "manga-updates"
	ChannelDownloads    = "downloads"
	ChannelGeneral      = "general"
)

// Notification is one local notification handed to the shell for display.
// Data carries the structured payload consumed on tap to route back into
// the UI.
type Notification struct {
	ID        int64             `json:"id"`
	Channel   string            `json:"channel"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}
