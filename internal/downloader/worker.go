// Package downloader drains the persistent download queue. One chapter
// downloads at a time, images strictly in order, with a fixed delay
// between requests so source sites are not hammered.
package downloader

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/notify"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/util"
	"github.com/yomu-reader/yomu-go/internal/websocket"
)

const (
	// Image hosts check the Referer against the chapter page; the fetch
	// must look like it came from the reader itself.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	pollInterval = 5 * time.Second
	maxImageSize = 20 << 20 // 20 MB
)

// Worker owns the download loop.
type Worker struct {
	st           *store.Store
	hub          *websocket.Hub
	dispatcher   *notify.Dispatcher
	client       *http.Client
	downloadsDir string
	imageDelay   time.Duration

	wake chan struct{}
	stop chan struct{}
}

func NewWorker(st *store.Store, hub *websocket.Hub, dispatcher *notify.Dispatcher, downloadsDir string) *Worker {
	return &Worker{
		st:           st,
		hub:          hub,
		dispatcher:   dispatcher,
		client:       &http.Client{Timeout: 60 * time.Second},
		downloadsDir: downloadsDir,
		imageDelay:   300 * time.Millisecond,
		wake:         make(chan struct{}, 1),
		stop:         make(chan struct{}),
	}
}

// Start launches the worker loop. Tasks that were mid-download when the
// process died are re-queued first so a crash never strands a chapter.
func (w *Worker) Start() {
	if err := w.requeueInterrupted(); err != nil {
		log.Printf("Failed to re-queue interrupted downloads: %v", err)
	}
	go w.run()
	log.Println("Download worker started.")
}

// Stop shuts the loop down after the current image finishes.
func (w *Worker) Stop() {
	close(w.stop)
}

// Wake nudges the loop after an enqueue so the task starts immediately
// instead of on the next poll.
func (w *Worker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) requeueInterrupted() error {
	tasks, err := w.st.GetDownloads()
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if task.Status != models.DownloadStatusDownloading {
			continue
		}
		if _, err := w.st.TransitionDownload(task.ID, models.DownloadStatusPending); err != nil {
			log.Printf("Failed to re-queue download %d: %v", task.ID, err)
		}
	}
	return nil
}

func (w *Worker) run() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		w.drainQueue()
		select {
		case <-w.stop:
			return
		case <-w.wake:
		case <-ticker.C:
		}
	}
}

// drainQueue processes pending tasks one at a time, oldest first.
func (w *Worker) drainQueue() {
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		task, err := w.st.NextPendingDownload()
		if err != nil {
			log.Printf("Failed to fetch next download: %v", err)
			return
		}
		if task == nil {
			return
		}
		w.processTask(task)
	}
}

func (w *Worker) processTask(task *models.DownloadTask) {
	taskID := task.ID
	task, err := w.st.TransitionDownload(taskID, models.DownloadStatusDownloading)
	if err != nil {
		// Someone paused or cancelled it between the poll and the claim.
		log.Printf("Skipping download %d: %v", taskID, err)
		return
	}
	w.sendProgress(task.ID, "Starting download...", models.DownloadStatusDownloading, 0, false)

	result, err := w.downloadImages(task)
	if err == errInterrupted {
		log.Printf("Download %d interrupted by user", task.ID)
		return
	}
	if err != nil {
		w.failTask(task, err)
		return
	}

	if result.downloaded == 0 {
		w.failTask(task, fmt.Errorf("no images could be downloaded"))
		return
	}

	if err := w.finishTask(task, result); err != nil {
		w.failTask(task, err)
	}
}

type downloadResult struct {
	dir        string
	downloaded int
	failed     int
	totalBytes int64
	firstImage []byte
}

var errInterrupted = fmt.Errorf("download interrupted")

// downloadImages fetches every image of a chapter into its directory.
// Images already on disk are skipped, which is what makes resume cheap:
// the URL list is persisted with the task, so a resumed task re-walks the
// list and only fetches what is missing.
func (w *Worker) downloadImages(task *models.DownloadTask) (*downloadResult, error) {
	dir := w.chapterDir(task)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chapter directory: %w", err)
	}

	result := &downloadResult{dir: dir}
	total := len(task.ImageURLs)

	for i, imageURL := range task.ImageURLs {
		// Pause and cancel take effect between images.
		current, err := w.st.GetDownloadByID(task.ID)
		if err != nil {
			return nil, err
		}
		if current.Status != models.DownloadStatusDownloading {
			return nil, errInterrupted
		}

		path := filepath.Join(dir, imageFileName(i, imageURL))
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			result.downloaded++
			result.totalBytes += info.Size()
			if result.firstImage == nil && i == 0 {
				result.firstImage, _ = os.ReadFile(path)
			}
			continue
		}

		time.Sleep(w.imageDelay)

		data, err := w.fetchImage(imageURL, task.ChapterURL)
		if err != nil {
			log.Printf("Download %d: image %d/%d failed: %v", task.ID, i+1, total, err)
			result.failed++
			continue
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write image %d: %w", i+1, err)
		}
		result.downloaded++
		result.totalBytes += int64(len(data))
		if i == 0 {
			result.firstImage = data
		}

		progress := float64(result.downloaded) / float64(total) * 100
		if err := w.st.UpdateDownloadProgress(task.ID, result.downloaded, result.totalBytes); err != nil {
			log.Printf("Failed to persist progress for download %d: %v", task.ID, err)
		}
		w.sendProgress(task.ID, fmt.Sprintf("Downloaded image %d of %d", i+1, total),
			models.DownloadStatusDownloading, progress, false)
	}
	return result, nil
}

func (w *Worker) finishTask(task *models.DownloadTask, result *downloadResult) error {
	cbzPath := result.dir + ".cbz"
	if err := WriteCBZ(result.dir, cbzPath); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	var thumbnail *string
	if result.firstImage != nil {
		if thumb, err := GenerateThumbnail(result.firstImage); err == nil {
			thumbnail = &thumb
		} else {
			log.Printf("Download %d: thumbnail generation failed: %v", task.ID, err)
		}
	}
	if err := w.st.SetDownloadArtifacts(task.ID, result.dir, cbzPath, thumbnail); err != nil {
		return err
	}

	status := models.DownloadStatusCompleted
	message := "Download finished."
	if result.failed > 0 {
		status = models.DownloadStatusPartial
		message = fmt.Sprintf("Downloaded %d of %d images.", result.downloaded, result.downloaded+result.failed)
	}
	if _, err := w.st.TransitionDownload(task.ID, status); err != nil {
		return err
	}
	if err := w.st.SetDownloadMessage(task.ID, message); err != nil {
		log.Printf("Failed to set message for download %d: %v", task.ID, err)
	}

	w.sendProgress(task.ID, message, status, 100, true)
	if w.dispatcher != nil {
		w.dispatcher.DownloadComplete(task)
	}
	log.Printf("Download %d finished: %s (%d images, %d failed)", task.ID, task.ChapterTitle, result.downloaded, result.failed)
	return nil
}

func (w *Worker) failTask(task *models.DownloadTask, cause error) {
	log.Printf("Download %d failed: %v", task.ID, cause)
	if _, err := w.st.TransitionDownload(task.ID, models.DownloadStatusFailed); err != nil {
		log.Printf("Failed to mark download %d failed: %v", task.ID, err)
	}
	if err := w.st.SetDownloadMessage(task.ID, cause.Error()); err != nil {
		log.Printf("Failed to set message for download %d: %v", task.ID, err)
	}
	w.sendProgress(task.ID, cause.Error(), models.DownloadStatusFailed, 0, true)
	if w.dispatcher != nil {
		w.dispatcher.DownloadFailed(task, cause.Error())
	}
}

func (w *Worker) fetchImage(imageURL, referer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Referer", referer)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
}

func (w *Worker) chapterDir(task *models.DownloadTask) string {
	return filepath.Join(w.downloadsDir,
		util.SanitizeFilename(task.MangaTitle),
		util.SanitizeFilename(task.ChapterTitle))
}

func imageFileName(index int, imageURL string) string {
	return fmt.Sprintf("page_%03d.%s", index+1, util.ImageExtension(imageURL))
}

func (w *Worker) sendProgress(taskID int64, message, status string, progress float64, done bool) {
	if w.hub == nil {
		return
	}
	w.hub.BroadcastJSON(models.ProgressUpdate{
		JobID:    "downloader",
		Message:  message,
		Progress: progress,
		ItemID:   taskID,
		Status:   status,
		Done:     done,
	})
}

// Pause asks a task to stop after the current image. Best effort: a task
// already past its last image completes normally.
func (w *Worker) Pause(taskID int64) (*models.DownloadTask, error) {
	return w.st.TransitionDownload(taskID, models.DownloadStatusPaused)
}

// Resume re-queues a paused, failed or partial task and wakes the loop.
// Images already on disk are kept.
func (w *Worker) Resume(taskID int64) (*models.DownloadTask, error) {
	task, err := w.st.TransitionDownload(taskID, models.DownloadStatusPending)
	if err != nil {
		return nil, err
	}
	w.Wake()
	return task, nil
}

// Cancel aborts a task permanently.
func (w *Worker) Cancel(taskID int64) (*models.DownloadTask, error) {
	return w.st.TransitionDownload(taskID, models.DownloadStatusCancelled)
}
