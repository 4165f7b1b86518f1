package models

import "time"

// Bookmark is a manga series the user is following, keyed by the canonical
// URL of its detail page on the source site.
type Bookmark struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	Description *string `json:"description,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	Status      *string `json:"status,omitempty"`
	Site        *string `json:"site,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	IsFavorite  bool    `json:"is_favorite"`

	// Last chapter seen by the update checker on the source site.
	LastChapterTitle *string `json:"last_chapter_title,omitempty"`
	LastChapterURL   *string `json:"last_chapter_url,omitempty"`

	// Chapter the user most recently had open, stamped from progress
	// reports so the library can offer a "continue reading" jump.
	CurrentChapterTitle *string `json:"current_chapter_title,omitempty"`
	CurrentChapterURL   *string `json:"current_chapter_url,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
}

// HistoryEntry records one navigation event inside the embedded browser.
type HistoryEntry struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Domain       *string   `json:"domain,omitempty"`
	ChapterTitle *string   `json:"chapter_title,omitempty"`
	ChapterURL   *string   `json:"chapter_url,omitempty"`
	VisitedAt    time.Time `json:"visited_at"`
}
