package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
)

// HasUpdateNotification reports whether a new-chapter notification for
// this series and chapter title was ever recorded. The update checker
// uses this as its dedup check so a chapter is announced at most once.
func (s *Store) HasUpdateNotification(mangaURL, chapterTitle string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM update_notifications WHERE manga_url = ? AND chapter_title = ?`,
		mangaURL, chapterTitle,
	).Scan(&count)
	return count > 0, err
}

// AddUpdateNotification records a detected new chapter.
func (s *Store) AddUpdateNotification(n *models.UpdateNotification) (*models.UpdateNotification, error) {
	row := s.db.QueryRow(`
        INSERT INTO update_notifications (manga_title, manga_url, chapter_title, chapter_url, sent, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id, manga_title, manga_url, chapter_title, chapter_url, is_read, sent, created_at`,
		n.MangaTitle, n.MangaURL, n.ChapterTitle, n.ChapterURL, n.Sent, time.Now(),
	)
	var out models.UpdateNotification
	err := row.Scan(&out.ID, &out.MangaTitle, &out.MangaURL, &out.ChapterTitle,
		&out.ChapterURL, &out.IsRead, &out.Sent, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUpdateNotifications lists recorded chapter updates, newest first.
func (s *Store) GetUpdateNotifications(unreadOnly bool) ([]*models.UpdateNotification, error) {
	query := `SELECT id, manga_title, manga_url, chapter_title, chapter_url, is_read, sent, created_at
        FROM update_notifications`
	if unreadOnly {
		query += ` WHERE is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.UpdateNotification
	for rows.Next() {
		var n models.UpdateNotification
		if err := rows.Scan(&n.ID, &n.MangaTitle, &n.MangaURL, &n.ChapterTitle,
			&n.ChapterURL, &n.IsRead, &n.Sent, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkUpdateNotificationRead flags one chapter update as seen.
func (s *Store) MarkUpdateNotificationRead(id int64) error {
	res, err := s.db.Exec(`UPDATE update_notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "update notification", id)
}

// AddNotification persists a notification handed to the shell for display.
func (s *Store) AddNotification(n *models.Notification) (*models.Notification, error) {
	data := n.Data
	if data == nil {
		data = map[string]string{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification data: %w", err)
	}
	row := s.db.QueryRow(`
        INSERT INTO notifications (channel, title, body, data, created_at)
        VALUES (?, ?, ?, ?, ?)
        RETURNING id, channel, title, body, data, is_read, created_at`,
		n.Channel, n.Title, n.Body, string(encoded), time.Now(),
	)
	return scanNotification(row)
}

// GetNotifications lists notifications newest first, optionally filtered
// by channel. An empty channel means all channels.
func (s *Store) GetNotifications(channel string, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, channel, title, body, data, is_read, created_at FROM notifications`
	args := []any{}
	if channel != "" {
		query += ` WHERE channel = ?`
		args = append(args, channel)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// GetNotificationByID fetches a single notification.
func (s *Store) GetNotificationByID(id int64) (*models.Notification, error) {
	row := s.db.QueryRow(
		`SELECT id, channel, title, body, data, is_read, created_at FROM notifications WHERE id = ?`, id,
	)
	return scanNotification(row)
}

// MarkNotificationRead flags one notification as seen.
func (s *Store) MarkNotificationRead(id int64) error {
	res, err := s.db.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "notification", id)
}

// MarkAllNotificationsRead flags every notification as seen.
func (s *Store) MarkAllNotificationsRead() error {
	_, err := s.db.Exec(`UPDATE notifications SET is_read = 1`)
	return err
}

// PruneNotificationsOlderThan removes read notifications older than the
// cutoff. Used by the maintenance job.
func (s *Store) PruneNotificationsOlderThan(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM notifications WHERE is_read = 1 AND created_at < ?`, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	var data string
	if err := row.Scan(&n.ID, &n.Channel, &n.Title, &n.Body, &data, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &n.Data); err != nil {
		return nil, fmt.Errorf("failed to decode notification data for %d: %w", n.ID, err)
	}
	return &n, nil
}
