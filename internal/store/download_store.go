package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
)

const downloadColumns = `id, manga_title, manga_url, chapter_title, chapter_url, image_urls,
	download_path, cbz_path, thumbnail, total_images, downloaded_images, file_size,
	status, message, started_at, completed_at, created_at`

// EnqueueDownload appends a chapter to the download queue. The worker
// drains the queue strictly oldest-first, so insertion order is the
// download order.
func (s *Store) EnqueueDownload(task *models.DownloadTask) (*models.DownloadTask, error) {
	imageURLs, err := json.Marshal(task.ImageURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image urls: %w", err)
	}
	row := s.db.QueryRow(`
        INSERT INTO downloads
            (manga_title, manga_url, chapter_title, chapter_url, image_urls, total_images, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)
        RETURNING `+downloadColumns,
		task.MangaTitle, task.MangaURL, task.ChapterTitle, task.ChapterURL,
		string(imageURLs), len(task.ImageURLs), time.Now(),
	)
	return scanDownload(row)
}

// NextPendingDownload returns the oldest pending task, or nil when the
// queue is drained.
func (s *Store) NextPendingDownload() (*models.DownloadTask, error) {
	row := s.db.QueryRow(
		`SELECT ` + downloadColumns + ` FROM downloads
         WHERE status = 'pending' ORDER BY created_at ASC, id ASC LIMIT 1`,
	)
	task, err := scanDownload(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return task, err
}

// GetDownloads returns the whole queue, newest first.
func (s *Store) GetDownloads() ([]*models.DownloadTask, error) {
	rows, err := s.db.Query(
		`SELECT ` + downloadColumns + ` FROM downloads ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.DownloadTask
	for rows.Next() {
		task, err := scanDownload(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetDownloadByID fetches one task.
func (s *Store) GetDownloadByID(id int64) (*models.DownloadTask, error) {
	row := s.db.QueryRow(`SELECT `+downloadColumns+` FROM downloads WHERE id = ?`, id)
	return scanDownload(row)
}

// TransitionDownload moves a task to a new status, enforcing the status
// graph. The read and write happen in one transaction so two workers
// cannot both claim a task.
func (s *Store) TransitionDownload(id int64, to string) (*models.DownloadTask, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current string
	if err := tx.QueryRow(`SELECT status FROM downloads WHERE id = ?`, id).Scan(&current); err != nil {
		return nil, err
	}
	if !models.ValidDownloadTransition(current, to) {
		return nil, fmt.Errorf("download %d cannot move from %s to %s", id, current, to)
	}

	query := `UPDATE downloads SET status = ?`
	args := []any{to}
	switch to {
	case models.DownloadStatusDownloading:
		query += `, started_at = ?, message = ''`
		args = append(args, time.Now())
	case models.DownloadStatusCompleted, models.DownloadStatusPartial:
		query += `, completed_at = ?`
		args = append(args, time.Now())
	case models.DownloadStatusPending:
		// Resume keeps progress counters so the worker can skip images
		// already on disk.
		query += `, message = ''`
	}
	query += ` WHERE id = ?`
	args = append(args, id)
	if _, err := tx.Exec(query, args...); err != nil {
		return nil, err
	}

	row := tx.QueryRow(`SELECT `+downloadColumns+` FROM downloads WHERE id = ?`, id)
	task, err := scanDownload(row)
	if err != nil {
		return nil, err
	}
	return task, tx.Commit()
}

// UpdateDownloadProgress records per-image progress for a running task.
func (s *Store) UpdateDownloadProgress(id int64, downloadedImages int, fileSize int64) error {
	_, err := s.db.Exec(
		`UPDATE downloads SET downloaded_images = ?, file_size = ? WHERE id = ?`,
		downloadedImages, fileSize, id,
	)
	return err
}

// SetDownloadMessage stores a human-readable failure or status note.
func (s *Store) SetDownloadMessage(id int64, message string) error {
	_, err := s.db.Exec(`UPDATE downloads SET message = ? WHERE id = ?`, message, id)
	return err
}

// SetDownloadArtifacts records where the finished chapter landed on disk.
func (s *Store) SetDownloadArtifacts(id int64, downloadPath, cbzPath string, thumbnail *string) error {
	_, err := s.db.Exec(
		`UPDATE downloads SET download_path = ?, cbz_path = ?, thumbnail = ? WHERE id = ?`,
		downloadPath, cbzPath, thumbnail, id,
	)
	return err
}

// MarkDownloadMissing flags a completed task whose archive disappeared
// from disk. A task that is not completed anymore is left alone.
func (s *Store) MarkDownloadMissing(cbzPath string) error {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM downloads WHERE cbz_path = ? AND status = 'completed'`,
		cbzPath,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := s.TransitionDownload(id, models.DownloadStatusMissing); err != nil {
		return err
	}
	return s.SetDownloadMessage(id, "archive removed from disk")
}

// DeleteDownload removes a task record. The caller is responsible for any
// files already on disk.
func (s *Store) DeleteDownload(id int64) error {
	res, err := s.db.Exec(`DELETE FROM downloads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "download", id)
}

func scanDownload(row rowScanner) (*models.DownloadTask, error) {
	var t models.DownloadTask
	var imageURLs string
	err := row.Scan(
		&t.ID, &t.MangaTitle, &t.MangaURL, &t.ChapterTitle, &t.ChapterURL, &imageURLs,
		&t.DownloadPath, &t.CBZPath, &t.Thumbnail, &t.TotalImages, &t.DownloadedImages,
		&t.FileSize, &t.Status, &t.Message, &t.StartedAt, &t.CompletedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(imageURLs), &t.ImageURLs); err != nil {
		return nil, fmt.Errorf("failed to decode image urls for download %d: %w", t.ID, err)
	}
	return &t, nil
}
