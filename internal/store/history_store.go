package store

import (
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
)

// historyCap is the maximum number of history rows kept. Older entries
// are pruned on insert.
const historyCap = 1000

// AddHistory records a page visit and prunes the table back down to the
// cap in the same transaction.
func (s *Store) AddHistory(entry *models.HistoryEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	visitedAt := entry.VisitedAt
	if visitedAt.IsZero() {
		visitedAt = time.Now()
	}
	res, err := tx.Exec(`
        INSERT INTO history (title, url, domain, chapter_title, chapter_url, visited_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Title, entry.URL, entry.Domain, entry.ChapterTitle, entry.ChapterURL, visitedAt,
	)
	if err != nil {
		return err
	}
	entry.ID, _ = res.LastInsertId()

	_, err = tx.Exec(`
        DELETE FROM history WHERE id NOT IN (
            SELECT id FROM history ORDER BY visited_at DESC, id DESC LIMIT ?
        )`, historyCap)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetHistory returns entries newest first. A limit of 0 means all.
func (s *Store) GetHistory(limit, offset int) ([]*models.HistoryEntry, error) {
	if limit <= 0 {
		limit = historyCap
	}
	rows, err := s.db.Query(`
        SELECT id, title, url, domain, chapter_title, chapter_url, visited_at
        FROM history ORDER BY visited_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.URL, &e.Domain, &e.ChapterTitle, &e.ChapterURL, &e.VisitedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// SearchHistory matches entries whose title or URL contains the term,
// newest first.
func (s *Store) SearchHistory(term string, limit int) ([]*models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + term + "%"
	rows, err := s.db.Query(`
        SELECT id, title, url, domain, chapter_title, chapter_url, visited_at
        FROM history WHERE title LIKE ? OR url LIKE ?
        ORDER BY visited_at DESC, id DESC LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.URL, &e.Domain, &e.ChapterTitle, &e.ChapterURL, &e.VisitedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ClearHistory removes every history entry.
func (s *Store) ClearHistory() error {
	_, err := s.db.Exec(`DELETE FROM history`)
	return err
}

// PruneHistoryOlderThan removes entries last visited before the cutoff.
// Used by the maintenance job.
func (s *Store) PruneHistoryOlderThan(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM history WHERE visited_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
