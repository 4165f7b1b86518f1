// Watches the downloads directory so records stay honest when the user
// deletes archives out from under the app.

package downloader

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/yomu-reader/yomu-go/internal/store"
)

// WatcherService flags completed downloads whose archive disappears from
// disk.
type WatcherService struct {
	st           *store.Store
	downloadsDir string
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
}

func NewWatcherService(st *store.Store, downloadsDir string) *WatcherService {
	return &WatcherService{
		st:           st,
		downloadsDir: downloadsDir,
		stopChan:     make(chan struct{}),
	}
}

// Start begins watching the downloads directory tree.
func (w *WatcherService) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	err = filepath.WalkDir(w.downloadsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	log.Printf("File watcher started for downloads: %s", w.downloadsDir)
	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *WatcherService) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *WatcherService) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Downloads watcher error: %v", err)
		case <-w.stopChan:
			return
		}
	}
}

func (w *WatcherService) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if strings.EqualFold(filepath.Ext(event.Name), ".cbz") {
			log.Printf("Archive removed from disk: %s", event.Name)
			if err := w.st.MarkDownloadMissing(event.Name); err != nil {
				log.Printf("Failed to flag missing archive %s: %v", event.Name, err)
			}
		}
	case event.Op.Has(fsnotify.Create):
		// New chapter directories need their own watch for deletions
		// inside them.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				log.Printf("Failed to watch new directory %s: %v", event.Name, err)
			}
		}
	}
}
