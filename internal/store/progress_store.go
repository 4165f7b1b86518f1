package store

import (
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
)

const progressColumns = `id, manga_url, chapter_url, chapter_title, current_page, total_pages,
	scroll_position, scroll_percentage, completed, reading_time_ms, updated_at`

// UpsertProgress writes the scroll state for one chapter. Progress is
// keyed by (manga URL, chapter URL); repeated writes overwrite. The
// reported reading time is a running session total, so the latest value
// replaces the stored one.
func (s *Store) UpsertProgress(p *models.ReadingProgress) (*models.ReadingProgress, error) {
	query := `
        INSERT INTO reading_progress
            (manga_url, chapter_url, chapter_title, current_page, total_pages,
             scroll_position, scroll_percentage, completed, reading_time_ms, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(manga_url, chapter_url) DO UPDATE SET
            chapter_title = excluded.chapter_title,
            current_page = excluded.current_page,
            total_pages = excluded.total_pages,
            scroll_position = excluded.scroll_position,
            scroll_percentage = excluded.scroll_percentage,
            completed = reading_progress.completed OR excluded.completed,
            reading_time_ms = excluded.reading_time_ms,
            updated_at = excluded.updated_at
        RETURNING ` + progressColumns
	row := s.db.QueryRow(query,
		p.MangaURL, p.ChapterURL, p.ChapterTitle, p.CurrentPage, p.TotalPages,
		p.ScrollPosition, p.ScrollPercentage, p.Completed, p.ReadingTimeMs, time.Now(),
	)
	return scanProgress(row)
}

// GetProgress fetches the saved state for one chapter. Returns
// sql.ErrNoRows when the chapter has never been opened.
func (s *Store) GetProgress(mangaURL, chapterURL string) (*models.ReadingProgress, error) {
	row := s.db.QueryRow(
		`SELECT `+progressColumns+` FROM reading_progress WHERE manga_url = ? AND chapter_url = ?`,
		mangaURL, chapterURL,
	)
	return scanProgress(row)
}

// GetLatestProgress returns the most recently updated chapter for a
// series, i.e. where the reader left off.
func (s *Store) GetLatestProgress(mangaURL string) (*models.ReadingProgress, error) {
	row := s.db.QueryRow(
		`SELECT `+progressColumns+` FROM reading_progress
         WHERE manga_url = ? ORDER BY updated_at DESC LIMIT 1`,
		mangaURL,
	)
	return scanProgress(row)
}

// GetProgressForManga lists every tracked chapter of a series, most
// recently read first.
func (s *Store) GetProgressForManga(mangaURL string) ([]*models.ReadingProgress, error) {
	rows, err := s.db.Query(
		`SELECT `+progressColumns+` FROM reading_progress
         WHERE manga_url = ? ORDER BY updated_at DESC`,
		mangaURL,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.ReadingProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// MarkChapterCompleted flags a chapter as finished. The unload report
// carries the full session total; the larger of it and the last scroll
// report is kept.
func (s *Store) MarkChapterCompleted(chapterURL string, readingTimeMs int64) error {
	_, err := s.db.Exec(`
        UPDATE reading_progress
        SET completed = 1, reading_time_ms = MAX(reading_time_ms, ?), updated_at = ?
        WHERE chapter_url = ?`,
		readingTimeMs, time.Now(), chapterURL,
	)
	return err
}

func scanProgress(row rowScanner) (*models.ReadingProgress, error) {
	var p models.ReadingProgress
	err := row.Scan(
		&p.ID, &p.MangaURL, &p.ChapterURL, &p.ChapterTitle, &p.CurrentPage, &p.TotalPages,
		&p.ScrollPosition, &p.ScrollPercentage, &p.Completed, &p.ReadingTimeMs, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
