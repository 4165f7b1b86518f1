package downloader

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/testutil"
)

// tinyPNG is a small encoded PNG for serving as page images.
var tinyPNG = func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

func setupWorker(t *testing.T) (*Worker, *store.Store, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	dir := t.TempDir()
	w := NewWorker(st, nil, nil, dir)
	w.imageDelay = 0
	return w, st, dir
}

func imageServer(t *testing.T, requests *[]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			*requests = append(*requests, r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(tinyPNG)
	}))
	t.Cleanup(server.Close)
	return server
}

func enqueue(t *testing.T, st *store.Store, server *httptest.Server, chapter string, pages int) *models.DownloadTask {
	t.Helper()
	var urls []string
	for i := 1; i <= pages; i++ {
		urls = append(urls, server.URL+"/"+chapter+"/"+string(rune('0'+i))+".png")
	}
	task, err := st.EnqueueDownload(&models.DownloadTask{
		MangaTitle:   "Test Manga",
		MangaURL:     server.URL + "/manga/test/",
		ChapterTitle: chapter,
		ChapterURL:   server.URL + "/" + chapter + "/",
		ImageURLs:    urls,
	})
	if err != nil {
		t.Fatal(err)
	}
	return task
}

func TestProcessTaskDownloadsChapter(t *testing.T) {
	w, st, dir := setupWorker(t)
	server := imageServer(t, nil)
	task := enqueue(t, st, server, "chapter-1", 3)

	w.drainQueue()

	got, err := st.GetDownloadByID(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.DownloadStatusCompleted {
		t.Fatalf("Expected completed, got %q (%s)", got.Status, got.Message)
	}
	if got.DownloadedImages != 3 {
		t.Errorf("Expected 3 images downloaded, got %d", got.DownloadedImages)
	}
	if got.CBZPath == nil {
		t.Fatal("Expected a CBZ path")
	}
	if _, err := os.Stat(*got.CBZPath); err != nil {
		t.Errorf("Expected CBZ on disk: %v", err)
	}
	if got.Thumbnail == nil || len(*got.Thumbnail) == 0 {
		t.Error("Expected an inline thumbnail")
	}
	// Images land under sanitized manga/chapter directories.
	if _, err := os.Stat(filepath.Join(dir, "Test_Manga", "chapter-1", "page_001.png")); err != nil {
		t.Errorf("Expected first page on disk: %v", err)
	}
}

func TestQueueProcessedInOrder(t *testing.T) {
	w, st, _ := setupWorker(t)
	var requests []string
	server := imageServer(t, &requests)

	enqueue(t, st, server, "chapter-a", 1)
	enqueue(t, st, server, "chapter-b", 1)

	w.drainQueue()

	if len(requests) != 2 {
		t.Fatalf("Expected 2 image fetches, got %d", len(requests))
	}
	if requests[0] != "/chapter-a/1.png" || requests[1] != "/chapter-b/1.png" {
		t.Errorf("Expected chapter-a fetched before chapter-b, got %v", requests)
	}
}

func TestRefererAndUserAgent(t *testing.T) {
	w, st, _ := setupWorker(t)

	var gotReferer, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotReferer = r.Referer()
		gotUA = r.UserAgent()
		rw.Write(tinyPNG)
	}))
	defer server.Close()

	task := enqueue(t, st, server, "chapter-1", 1)
	w.drainQueue()

	if gotReferer != task.ChapterURL {
		t.Errorf("Expected Referer %q, got %q", task.ChapterURL, gotReferer)
	}
	if gotUA != browserUserAgent {
		t.Errorf("Expected browser user agent, got %q", gotUA)
	}
}

func TestPartialDownload(t *testing.T) {
	w, st, _ := setupWorker(t)

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chapter-1/2.png" {
			rw.WriteHeader(http.StatusNotFound)
			return
		}
		rw.Write(tinyPNG)
	}))
	defer server.Close()

	task := enqueue(t, st, server, "chapter-1", 3)
	w.drainQueue()

	got, err := st.GetDownloadByID(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.DownloadStatusPartial {
		t.Errorf("Expected partial status with one failed image, got %q", got.Status)
	}
	if got.DownloadedImages != 2 {
		t.Errorf("Expected 2 of 3 images, got %d", got.DownloadedImages)
	}
}

func TestAllImagesFailedMarksFailed(t *testing.T) {
	w, st, _ := setupWorker(t)

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	task := enqueue(t, st, server, "chapter-1", 2)
	w.drainQueue()

	got, err := st.GetDownloadByID(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.DownloadStatusFailed {
		t.Errorf("Expected failed status, got %q", got.Status)
	}
}

func TestResumeSkipsExistingImages(t *testing.T) {
	w, st, _ := setupWorker(t)
	var requests []string
	server := imageServer(t, &requests)

	task := enqueue(t, st, server, "chapter-1", 3)

	// Seed the first page on disk as if a previous run fetched it.
	chapterDir := w.chapterDir(task)
	if err := os.MkdirAll(chapterDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(chapterDir, "page_001.png"), tinyPNG, 0644); err != nil {
		t.Fatal(err)
	}

	w.drainQueue()

	got, err := st.GetDownloadByID(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.DownloadStatusCompleted {
		t.Fatalf("Expected completed, got %q", got.Status)
	}
	if len(requests) != 2 {
		t.Errorf("Expected only the 2 missing pages fetched, got %v", requests)
	}
}

func TestRequeueInterrupted(t *testing.T) {
	w, st, _ := setupWorker(t)
	server := imageServer(t, nil)

	task := enqueue(t, st, server, "chapter-1", 1)
	if _, err := st.TransitionDownload(task.ID, models.DownloadStatusDownloading); err != nil {
		t.Fatal(err)
	}

	// A fresh worker start must not strand the task in downloading.
	if err := w.requeueInterrupted(); err != nil {
		t.Fatal(err)
	}
	got, err := st.GetDownloadByID(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.DownloadStatusPending {
		t.Errorf("Expected interrupted task re-queued, got %q", got.Status)
	}
}

func TestPauseResumeCancel(t *testing.T) {
	w, st, _ := setupWorker(t)
	server := imageServer(t, nil)
	task := enqueue(t, st, server, "chapter-1", 1)

	paused, err := w.Pause(task.ID)
	if err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if paused.Status != models.DownloadStatusPaused {
		t.Errorf("Expected paused, got %q", paused.Status)
	}

	resumed, err := w.Resume(task.ID)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if resumed.Status != models.DownloadStatusPending {
		t.Errorf("Expected pending after resume, got %q", resumed.Status)
	}
	// Resume left a wake signal for the loop.
	select {
	case <-w.wake:
	case <-time.After(time.Second):
		t.Error("Expected Resume to wake the worker")
	}

	cancelled, err := w.Cancel(task.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != models.DownloadStatusCancelled {
		t.Errorf("Expected cancelled, got %q", cancelled.Status)
	}
	if _, err := w.Resume(task.ID); err == nil {
		t.Error("Expected resume of a cancelled task to fail")
	}
}
