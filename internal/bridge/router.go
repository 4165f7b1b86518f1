// Package bridge routes messages from the injected page script to the
// persistence layer. It is the single place where the page-to-host wire
// format is decoded.
package bridge

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/store"
)

// Router dispatches decoded page messages to handlers. Messages arrive
// from untrusted pages, so a malformed or unknown frame is logged and
// dropped, never an error surfaced to the page.
type Router struct {
	st *store.Store

	// wakeDownloader pokes the download worker after an enqueue so it
	// picks the task up without waiting for its next poll.
	wakeDownloader func()
}

func NewRouter(st *store.Store, wakeDownloader func()) *Router {
	return &Router{st: st, wakeDownloader: wakeDownloader}
}

// HandleRaw is the websocket inbound handler. Decode failures are logged
// and swallowed so a misbehaving page cannot close the channel.
func (r *Router) HandleRaw(raw []byte) {
	if err := r.Dispatch(raw); err != nil {
		log.Printf("Dropped page message: %v", err)
	}
}

// Dispatch decodes one frame and runs its handler.
func (r *Router) Dispatch(raw []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("malformed message: %w", err)
	}

	switch head.Type {
	case models.MsgBookmarkAdd:
		var msg models.BookmarkAddMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("malformed %s: %w", head.Type, err)
		}
		return r.handleBookmarkAdd(msg)
	case models.MsgChapterProgress:
		var msg models.ChapterProgressMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("malformed %s: %w", head.Type, err)
		}
		return r.handleChapterProgress(msg)
	case models.MsgDownloadChapter:
		var msg models.DownloadChapterMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("malformed %s: %w", head.Type, err)
		}
		return r.handleDownloadChapter(msg)
	case models.MsgPageInfo:
		var msg models.PageInfoMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("malformed %s: %w", head.Type, err)
		}
		return r.handlePageInfo(msg)
	case models.MsgChapterComplete:
		var msg models.ChapterCompleteMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("malformed %s: %w", head.Type, err)
		}
		return r.handleChapterComplete(msg)
	default:
		return fmt.Errorf("unknown message type %q", head.Type)
	}
}

func (r *Router) handleBookmarkAdd(msg models.BookmarkAddMessage) error {
	if msg.Title == "" || msg.URL == "" {
		return fmt.Errorf("bookmark message missing title or url")
	}
	b := &models.Bookmark{Title: msg.Title, URL: msg.URL}
	if msg.Thumbnail != "" {
		b.Thumbnail = &msg.Thumbnail
	}
	if msg.Description != "" {
		b.Description = &msg.Description
	}
	if msg.Genre != "" {
		b.Genre = &msg.Genre
	}
	if msg.Status != "" {
		b.Status = &msg.Status
	}
	if msg.Site != "" {
		b.Site = &msg.Site
	}
	_, err := r.st.UpsertBookmark(b)
	return err
}

func (r *Router) handleChapterProgress(msg models.ChapterProgressMessage) error {
	if msg.MangaURL == "" || msg.ChapterURL == "" {
		return fmt.Errorf("progress message missing manga or chapter url")
	}
	p := &models.ReadingProgress{
		MangaURL:         msg.MangaURL,
		ChapterURL:       msg.ChapterURL,
		CurrentPage:      msg.CurrentPage,
		TotalPages:       msg.TotalPages,
		ScrollPosition:   msg.ScrollPosition,
		ScrollPercentage: clampPercent(msg.ScrollPercentage),
		Completed:        msg.ScrollPercentage >= 95,
		ReadingTimeMs:    msg.ReadingTimeMs,
	}
	if msg.ChapterTitle != "" {
		p.ChapterTitle = &msg.ChapterTitle
	}
	if _, err := r.st.UpsertProgress(p); err != nil {
		return err
	}
	// Reading activity also freshens the series in the bookmark list and
	// records which chapter is open; both are no-ops when the series is
	// not bookmarked.
	if err := r.st.SetBookmarkCurrentChapter(msg.MangaURL, p.ChapterTitle, msg.ChapterURL); err != nil {
		return err
	}
	return r.st.TouchBookmarkLastRead(msg.MangaURL, time.Now())
}

func (r *Router) handleDownloadChapter(msg models.DownloadChapterMessage) error {
	if msg.ChapterURL == "" || len(msg.Images) == 0 {
		return fmt.Errorf("download message missing chapter url or images")
	}
	_, err := r.st.EnqueueDownload(&models.DownloadTask{
		MangaTitle:   msg.MangaTitle,
		MangaURL:     msg.MangaURL,
		ChapterTitle: msg.ChapterTitle,
		ChapterURL:   msg.ChapterURL,
		ImageURLs:    msg.Images,
	})
	if err != nil {
		return err
	}
	if r.wakeDownloader != nil {
		r.wakeDownloader()
	}
	return nil
}

func (r *Router) handlePageInfo(msg models.PageInfoMessage) error {
	if msg.URL == "" {
		return fmt.Errorf("page info message missing url")
	}
	entry := &models.HistoryEntry{Title: msg.Title, URL: msg.URL}
	if entry.Title == "" {
		entry.Title = msg.URL
	}
	if msg.Domain != "" {
		entry.Domain = &msg.Domain
	}
	if msg.ChapterTitle != "" {
		entry.ChapterTitle = &msg.ChapterTitle
	}
	if msg.ChapterURL != "" {
		entry.ChapterURL = &msg.ChapterURL
	}
	return r.st.AddHistory(entry)
}

func (r *Router) handleChapterComplete(msg models.ChapterCompleteMessage) error {
	if msg.ChapterURL == "" {
		return fmt.Errorf("chapter complete message missing url")
	}
	return r.st.MarkChapterCompleted(msg.ChapterURL, msg.TotalReadingTimeMs)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
