package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/notify"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/testutil"
)

func setupTracker(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	svc := New(st, notify.New(st, nil), 15*time.Minute)
	return svc, st
}

func chapterPage(title, href string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="` + href + `">` + title + `</a></body></html>`))
	}
}

func TestCheckBookmarkDetectsNewChapter(t *testing.T) {
	svc, st := setupTracker(t)

	server := httptest.NewServer(chapterPage("Chapter 6", "/solo-max-chapter-6/"))
	defer server.Close()

	b, err := st.UpsertBookmark(&models.Bookmark{Title: "Solo Max", URL: server.URL + "/manga/solo-max/"})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AdvanceLastChapter(b.ID, "Chapter 5", server.URL+"/solo-max-chapter-5/"); err != nil {
		t.Fatal(err)
	}
	b, _ = st.GetBookmarkByURL(b.URL)

	if err := svc.CheckBookmark(context.Background(), b); err != nil {
		t.Fatalf("CheckBookmark failed: %v", err)
	}

	updates, err := st.GetUpdateNotifications(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 1 {
		t.Fatalf("Expected exactly one update notification, got %d", len(updates))
	}
	if updates[0].ChapterTitle != "Chapter 6" {
		t.Errorf("Expected 'Chapter 6', got %q", updates[0].ChapterTitle)
	}

	got, _ := st.GetBookmarkByURL(b.URL)
	if got.LastChapterTitle == nil || *got.LastChapterTitle != "Chapter 6" {
		t.Errorf("Expected pointer advanced to Chapter 6, got %v", got.LastChapterTitle)
	}

	// A user-facing notification landed on the updates channel too.
	pushed, err := st.GetNotifications(models.ChannelMangaUpdates, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pushed) != 1 {
		t.Errorf("Expected one pushed notification, got %d", len(pushed))
	}
}

func TestCheckBookmarkIsIdempotent(t *testing.T) {
	svc, st := setupTracker(t)

	server := httptest.NewServer(chapterPage("Chapter 6", "/solo-max-chapter-6/"))
	defer server.Close()

	b, err := st.UpsertBookmark(&models.Bookmark{Title: "Solo Max", URL: server.URL + "/manga/solo-max/"})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		b, _ = st.GetBookmarkByURL(b.URL)
		if err := svc.CheckBookmark(context.Background(), b); err != nil {
			t.Fatalf("CheckBookmark run %d failed: %v", i+1, err)
		}
	}

	updates, err := st.GetUpdateNotifications(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 1 {
		t.Errorf("Expected repeated checks to record one notification, got %d", len(updates))
	}
}

func TestCheckBookmarkUnchangedChapterIsSilent(t *testing.T) {
	svc, st := setupTracker(t)

	server := httptest.NewServer(chapterPage("Chapter 5", "/solo-max-chapter-5/"))
	defer server.Close()

	b, err := st.UpsertBookmark(&models.Bookmark{Title: "Solo Max", URL: server.URL + "/manga/solo-max/"})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AdvanceLastChapter(b.ID, "Chapter 5", server.URL+"/solo-max-chapter-5/"); err != nil {
		t.Fatal(err)
	}
	b, _ = st.GetBookmarkByURL(b.URL)

	if err := svc.CheckBookmark(context.Background(), b); err != nil {
		t.Fatalf("CheckBookmark failed: %v", err)
	}
	updates, err := st.GetUpdateNotifications(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 0 {
		t.Errorf("Expected no notification for an unchanged chapter, got %d", len(updates))
	}
}

func TestCheckBookmarkSkipsChapterBeingRead(t *testing.T) {
	svc, st := setupTracker(t)

	server := httptest.NewServer(chapterPage("Chapter 6", "/solo-max-chapter-6/"))
	defer server.Close()

	b, err := st.UpsertBookmark(&models.Bookmark{Title: "Solo Max", URL: server.URL + "/manga/solo-max/"})
	if err != nil {
		t.Fatal(err)
	}
	// No pointer yet, but the user already has the chapter open.
	title := "Chapter 6"
	if _, err := st.UpsertProgress(&models.ReadingProgress{
		MangaURL:     b.URL,
		ChapterURL:   server.URL + "/solo-max-chapter-6/",
		ChapterTitle: &title,
		CurrentPage:  3,
	}); err != nil {
		t.Fatal(err)
	}

	if err := svc.CheckBookmark(context.Background(), b); err != nil {
		t.Fatalf("CheckBookmark failed: %v", err)
	}
	updates, err := st.GetUpdateNotifications(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 0 {
		t.Errorf("Expected no notification for a chapter already being read, got %d", len(updates))
	}
}

func TestCheckBookmarkChapterlessPageIsSilent(t *testing.T) {
	svc, st := setupTracker(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Series on hiatus</p></body></html>`))
	}))
	defer server.Close()

	b, err := st.UpsertBookmark(&models.Bookmark{Title: "Solo Max", URL: server.URL + "/manga/solo-max/"})
	if err != nil {
		t.Fatal(err)
	}

	// A page with no recognizable chapter links yields nothing, not an error.
	if err := svc.CheckBookmark(context.Background(), b); err != nil {
		t.Fatalf("Expected a chapterless page to be skipped quietly, got %v", err)
	}
	updates, err := st.GetUpdateNotifications(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 0 {
		t.Errorf("Expected no notifications from a chapterless page, got %d", len(updates))
	}
}

func TestCheckAllRespectsFloor(t *testing.T) {
	svc, st := setupTracker(t)

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		chapterPage("Chapter 1", "/x-chapter-1/")(w, r)
	}))
	defer server.Close()

	if _, err := st.UpsertBookmark(&models.Bookmark{Title: "X", URL: server.URL + "/manga/x/"}); err != nil {
		t.Fatal(err)
	}

	// Last cycle finished five minutes ago, under the fifteen minute floor.
	lastCheck := time.Now().Add(-5 * time.Minute).UnixMilli()
	if err := st.SetIntSetting(models.SettingLastUpdateCheck, lastCheck); err != nil {
		t.Fatal(err)
	}

	svc.CheckAll(context.Background())

	if hits.Load() != 0 {
		t.Errorf("Expected cycle skipped under the floor, but server saw %d requests", hits.Load())
	}
	if got := st.GetIntSetting(models.SettingLastUpdateCheck, 0); got != lastCheck {
		t.Error("A skipped cycle must not advance the last-check time")
	}
}

func TestCheckAllRunsWhenFloorElapsed(t *testing.T) {
	svc, st := setupTracker(t)

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		chapterPage("Chapter 2", "/x-chapter-2/")(w, r)
	}))
	defer server.Close()

	if _, err := st.UpsertBookmark(&models.Bookmark{Title: "X", URL: server.URL + "/manga/x/"}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetIntSetting(models.SettingLastUpdateCheck, time.Now().Add(-time.Hour).UnixMilli()); err != nil {
		t.Fatal(err)
	}

	before := time.Now().UnixMilli()
	svc.CheckAll(context.Background())

	if hits.Load() != 1 {
		t.Errorf("Expected one fetch, got %d", hits.Load())
	}
	if got := st.GetIntSetting(models.SettingLastUpdateCheck, 0); got < before {
		t.Error("Expected last-check time advanced after a full cycle")
	}
}

func TestCheckAllDisabled(t *testing.T) {
	svc, st := setupTracker(t)

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	if _, err := st.UpsertBookmark(&models.Bookmark{Title: "X", URL: server.URL + "/manga/x/"}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetBoolSetting(models.SettingUpdateTrackingEnabled, false); err != nil {
		t.Fatal(err)
	}

	svc.CheckAll(context.Background())
	if hits.Load() != 0 {
		t.Errorf("Expected no fetches with tracking disabled, got %d", hits.Load())
	}
}

func TestCheckAllSurvivesBrokenSite(t *testing.T) {
	svc, st := setupTracker(t)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()
	healthy := httptest.NewServer(chapterPage("Chapter 9", "/y-chapter-9/"))
	defer healthy.Close()

	if _, err := st.UpsertBookmark(&models.Bookmark{Title: "Broken", URL: broken.URL + "/manga/b/"}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.UpsertBookmark(&models.Bookmark{Title: "Healthy", URL: healthy.URL + "/manga/y/"}); err != nil {
		t.Fatal(err)
	}

	svc.CheckAll(context.Background())

	updates, err := st.GetUpdateNotifications(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(updates) != 1 || updates[0].MangaTitle != "Healthy" {
		t.Errorf("Expected the healthy site's update despite the broken one, got %+v", updates)
	}
}

func TestDesktopUserAgentSent(t *testing.T) {
	svc, st := setupTracker(t)

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		chapterPage("Chapter 1", "/x-chapter-1/")(w, r)
	}))
	defer server.Close()

	b, err := st.UpsertBookmark(&models.Bookmark{Title: "X", URL: server.URL + "/manga/x/"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.CheckBookmark(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if gotUA != desktopUserAgent {
		t.Errorf("Expected desktop user agent, got %q", gotUA)
	}
}
