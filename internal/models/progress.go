package models

import "time"

// ReadingProgress is the per-chapter scroll state, unique per
// (manga URL, chapter URL). Last write wins.
type ReadingProgress struct {
	ID               int64     `json:"id"`
	MangaURL         string    `json:"manga_url"`
	ChapterURL       string    `json:"chapter_url"`
	ChapterTitle     *string   `json:"chapter_title,omitempty"`
	CurrentPage      int       `json:"current_page"`
	TotalPages       int       `json:"total_pages"`
	ScrollPosition   int       `json:"scroll_position"`
	ScrollPercentage int       `json:"scroll_percentage"`
	Completed        bool      `json:"completed"`
	ReadingTimeMs    int64     `json:"reading_time_ms"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProgressUpdate is the frame broadcast to connected shells when a
// background job or download changes state.
type ProgressUpdate struct {
	JobID    string  `json:"jobId"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	ItemID   int64   `json:"item_id"`
	Status   string  `json:"status"` // e.g. "downloading", "completed", "failed"
	Done     bool    `json:"done"`
}
