package models

import "time"

// Download statuses. Tasks move forward along
// pending -> downloading -> {completed | partial | failed}; paused and
// cancelled are side exits, an interrupted downloading task drops back to
// pending, and a completed task whose archive vanished from disk becomes
// missing until it is re-queued.
const (
	DownloadStatusPending     = "pending"
	DownloadStatusDownloading = "downloading"
	DownloadStatusCompleted   = "completed"
	DownloadStatusPartial     = "partial"
	DownloadStatusFailed      = "failed"
	DownloadStatusPaused      = "paused"
	DownloadStatusCancelled   = "cancelled"
	DownloadStatusMissing     = "missing"
)

// DownloadTask is one chapter queued for offline download. The image URL
// list is persisted so a paused or failed task can be resumed without
// re-scraping the chapter page.
type DownloadTask struct {
	ID               int64      `json:"id"`
	MangaTitle       string     `json:"manga_title"`
	MangaURL         string     `json:"manga_url"`
	ChapterTitle     string     `json:"chapter_title"`
	ChapterURL       string     `json:"chapter_url"`
	ImageURLs        []string   `json:"image_urls"`
	DownloadPath     *string    `json:"download_path,omitempty"`
	CBZPath          *string    `json:"cbz_path,omitempty"`
	Thumbnail        *string    `json:"thumbnail,omitempty"`
	TotalImages      int        `json:"total_images"`
	DownloadedImages int        `json:"downloaded_images"`
	FileSize         int64      `json:"file_size"`
	Status           string     `json:"status"`
	Message          string     `json:"message"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Page is a single image inside a downloaded chapter archive.
type Page struct {
	Index    int    `json:"index"`
	FileName string `json:"file_name"`
}

// ValidDownloadTransition reports whether a task may move from one status
// to another.
func ValidDownloadTransition(from, to string) bool {
	switch from {
	case DownloadStatusPending:
		return to == DownloadStatusDownloading || to == DownloadStatusPaused || to == DownloadStatusCancelled
	case DownloadStatusDownloading:
		// Pending is the requeue path for tasks interrupted by a restart.
		return to == DownloadStatusCompleted || to == DownloadStatusPartial ||
			to == DownloadStatusFailed || to == DownloadStatusPaused ||
			to == DownloadStatusCancelled || to == DownloadStatusPending
	case DownloadStatusCompleted:
		return to == DownloadStatusMissing
	case DownloadStatusPaused, DownloadStatusFailed, DownloadStatusPartial, DownloadStatusMissing:
		// Resume re-queues the task.
		return to == DownloadStatusPending || to == DownloadStatusCancelled
	default:
		return false
	}
}
