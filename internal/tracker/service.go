// Package tracker periodically re-fetches bookmarked series pages and
// announces chapters the user has not seen yet.
package tracker

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/notify"
	"github.com/yomu-reader/yomu-go/internal/sites"
	"github.com/yomu-reader/yomu-go/internal/store"
)

// Sites serve a different (often chapter-less) layout to mobile agents,
// so checks always identify as a desktop browser.
const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodySize = 5 << 20 // 5 MB

// Service checks bookmarked series for new chapters.
type Service struct {
	st          *store.Store
	dispatcher  *notify.Dispatcher
	client      *http.Client
	minInterval time.Duration

	mu sync.Mutex // one check cycle at a time
}

// New creates a tracker service. minInterval is the floor between check
// cycles regardless of how often CheckAll is invoked.
func New(st *store.Store, dispatcher *notify.Dispatcher, minInterval time.Duration) *Service {
	return &Service{
		st:          st,
		dispatcher:  dispatcher,
		client:      &http.Client{Timeout: 30 * time.Second},
		minInterval: minInterval,
	}
}

// CheckAll runs one update cycle over every bookmark. The whole cycle is
// skipped when tracking is disabled or the previous cycle finished less
// than the floor interval ago; a foreground-triggered check and the
// scheduled one therefore cannot hammer the sites back to back.
func (s *Service) CheckAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.st.GetBoolSetting(models.SettingUpdateTrackingEnabled, true) {
		log.Println("Update check skipped: tracking disabled")
		return
	}

	lastMs := s.st.GetIntSetting(models.SettingLastUpdateCheck, 0)
	if lastMs > 0 {
		elapsed := time.Since(time.UnixMilli(lastMs))
		if elapsed < s.minInterval {
			log.Printf("Update check skipped: last check was %s ago (floor %s)", elapsed.Round(time.Second), s.minInterval)
			return
		}
	}

	bookmarks, err := s.st.GetBookmarks(false)
	if err != nil {
		log.Printf("Update check failed to load bookmarks: %v", err)
		return
	}
	log.Printf("Checking %d bookmarked series for updates...", len(bookmarks))

	// Fan out one fetch per series. Failures are per-series: one broken
	// site must not stall or abort the rest of the cycle.
	var wg sync.WaitGroup
	for _, b := range bookmarks {
		wg.Add(1)
		go func(b *models.Bookmark) {
			defer wg.Done()
			if err := s.CheckBookmark(ctx, b); err != nil {
				log.Printf("Update check failed for %q: %v", b.Title, err)
			}
		}(b)
	}
	wg.Wait()

	if err := s.st.SetIntSetting(models.SettingLastUpdateCheck, time.Now().UnixMilli()); err != nil {
		log.Printf("Failed to record update check time: %v", err)
	}
	log.Println("Update check finished.")
}

// CheckBookmark fetches one series page and records a new chapter if the
// newest listed chapter is one the user has not been told about. A
// chapter is "new" only if it differs from the stored pointer and was
// never announced before, so re-checks are silent.
func (s *Service) CheckBookmark(ctx context.Context, b *models.Bookmark) error {
	html, err := s.fetchPage(ctx, b.URL)
	if err != nil {
		return err
	}

	profile := profileForURL(b.URL)
	latest, ok := LatestChapter(profile.Chapter, html, b.URL)
	if !ok {
		// A page without recognizable chapter links is no signal, not an
		// error; the site may have changed layout or be mid-redesign.
		log.Printf("No chapters found on %s, skipping", b.URL)
		return nil
	}

	if b.LastChapterTitle != nil && *b.LastChapterTitle == latest.Title {
		return nil
	}
	// The user may already be reading the chapter without the pointer
	// having caught up; don't announce what they have open.
	if p, err := s.st.GetLatestProgress(b.URL); err == nil &&
		p.ChapterTitle != nil && *p.ChapterTitle == latest.Title {
		return nil
	}
	seen, err := s.st.HasUpdateNotification(b.URL, latest.Title)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	var chapterURL *string
	if latest.URL != "" {
		chapterURL = &latest.URL
	}
	if _, err := s.st.AddUpdateNotification(&models.UpdateNotification{
		MangaTitle:   b.Title,
		MangaURL:     b.URL,
		ChapterTitle: latest.Title,
		ChapterURL:   chapterURL,
		Sent:         true,
	}); err != nil {
		return err
	}
	if s.dispatcher != nil {
		s.dispatcher.ChapterUpdate(b.Title, b.URL, latest.Title, latest.URL)
	}
	if err := s.st.AdvanceLastChapter(b.ID, latest.Title, latest.URL); err != nil {
		return err
	}
	log.Printf("New chapter for %q: %s", b.Title, latest.Title)
	return nil
}

func (s *Service) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, pageURL)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", pageURL, err)
	}
	return string(body), nil
}

func profileForURL(pageURL string) sites.Profile {
	u, err := url.Parse(pageURL)
	if err != nil {
		return sites.Generic()
	}
	return sites.Match(u.Hostname())
}
