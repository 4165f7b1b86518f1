package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
)

const bookmarkColumns = `id, title, url, thumbnail, description, genre, status, site, tags,
	is_favorite, last_chapter_title, last_chapter_url,
	current_chapter_title, current_chapter_url, created_at, last_read_at`

// UpsertBookmark inserts a bookmark or, if the URL is already bookmarked,
// refreshes its metadata. The URL is the identity; re-bookmarking a page
// never creates a duplicate and never clears reading state.
func (s *Store) UpsertBookmark(b *models.Bookmark) (*models.Bookmark, error) {
	query := `
        INSERT INTO bookmarks (title, url, thumbnail, description, genre, status, site, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(url) DO UPDATE SET
            title = excluded.title,
            thumbnail = COALESCE(excluded.thumbnail, bookmarks.thumbnail),
            description = COALESCE(excluded.description, bookmarks.description),
            genre = COALESCE(excluded.genre, bookmarks.genre),
            status = COALESCE(excluded.status, bookmarks.status),
            site = COALESCE(excluded.site, bookmarks.site)
        RETURNING ` + bookmarkColumns
	row := s.db.QueryRow(query, b.Title, b.URL, b.Thumbnail, b.Description, b.Genre, b.Status, b.Site, time.Now())
	return scanBookmark(row)
}

// GetBookmarks returns all bookmarks, favorites first, then most recently
// read.
func (s *Store) GetBookmarks(favoritesOnly bool) ([]*models.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks`
	if favoritesOnly {
		query += ` WHERE is_favorite = 1`
	}
	query += ` ORDER BY is_favorite DESC, last_read_at DESC, created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []*models.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// GetBookmarkByURL fetches a single bookmark. Returns sql.ErrNoRows when
// the URL is not bookmarked.
func (s *Store) GetBookmarkByURL(url string) (*models.Bookmark, error) {
	row := s.db.QueryRow(`SELECT `+bookmarkColumns+` FROM bookmarks WHERE url = ?`, url)
	return scanBookmark(row)
}

// SetBookmarkFavorite toggles the favorite flag.
func (s *Store) SetBookmarkFavorite(id int64, favorite bool) error {
	res, err := s.db.Exec(`UPDATE bookmarks SET is_favorite = ? WHERE id = ?`, favorite, id)
	if err != nil {
		return err
	}
	return requireRow(res, "bookmark", id)
}

// SetBookmarkTags replaces the free-form tags string.
func (s *Store) SetBookmarkTags(id int64, tags string) error {
	res, err := s.db.Exec(`UPDATE bookmarks SET tags = ? WHERE id = ?`, tags, id)
	if err != nil {
		return err
	}
	return requireRow(res, "bookmark", id)
}

// TouchBookmarkLastRead stamps last_read_at for the series a chapter
// belongs to. A no-op if the series is not bookmarked.
func (s *Store) TouchBookmarkLastRead(mangaURL string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE bookmarks SET last_read_at = ? WHERE url = ?`, at, mangaURL)
	return err
}

// SetBookmarkCurrentChapter records which chapter the user has open for
// the series. A no-op if the series is not bookmarked.
func (s *Store) SetBookmarkCurrentChapter(mangaURL string, chapterTitle *string, chapterURL string) error {
	_, err := s.db.Exec(
		`UPDATE bookmarks SET current_chapter_title = ?, current_chapter_url = ? WHERE url = ?`,
		chapterTitle, chapterURL, mangaURL,
	)
	return err
}

// AdvanceLastChapter moves the update-checker pointer for a bookmark to
// the given chapter.
func (s *Store) AdvanceLastChapter(id int64, chapterTitle, chapterURL string) error {
	res, err := s.db.Exec(
		`UPDATE bookmarks SET last_chapter_title = ?, last_chapter_url = ? WHERE id = ?`,
		chapterTitle, chapterURL, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "bookmark", id)
}

// DeleteBookmark removes a bookmark. Reading progress and history for the
// series are kept.
func (s *Store) DeleteBookmark(id int64) error {
	res, err := s.db.Exec(`DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "bookmark", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (*models.Bookmark, error) {
	var b models.Bookmark
	err := row.Scan(
		&b.ID, &b.Title, &b.URL, &b.Thumbnail, &b.Description, &b.Genre, &b.Status,
		&b.Site, &b.Tags, &b.IsFavorite, &b.LastChapterTitle, &b.LastChapterURL,
		&b.CurrentChapterTitle, &b.CurrentChapterURL,
		&b.CreatedAt, &b.LastReadAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func requireRow(res sql.Result, kind string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %d not found", kind, id)
	}
	return nil
}
