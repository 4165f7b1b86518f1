// Package notify hands notifications to connected shells. Every
// notification is persisted first so a shell that reconnects later still
// sees it, then pushed over the websocket hub for immediate display.
package notify

import (
	"log"
	"strconv"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/websocket"
)

// Dispatcher persists and pushes notifications.
type Dispatcher struct {
	st  *store.Store
	hub *websocket.Hub
}

func New(st *store.Store, hub *websocket.Hub) *Dispatcher {
	return &Dispatcher{st: st, hub: hub}
}

// notificationFrame is the websocket envelope for a pushed notification.
type notificationFrame struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification"`
}

// Send persists a notification and pushes it to connected shells.
// A push failure is not an error: the notification is already durable.
func (d *Dispatcher) Send(channel, title, body string, data map[string]string) (*models.Notification, error) {
	n, err := d.st.AddNotification(&models.Notification{
		Channel: channel,
		Title:   title,
		Body:    body,
		Data:    data,
	})
	if err != nil {
		return nil, err
	}
	if d.hub != nil {
		d.hub.BroadcastJSON(notificationFrame{Type: "notification", Notification: n})
	}
	return n, nil
}

// ChapterUpdate announces a newly detected chapter for a bookmarked
// series on the manga-updates channel.
func (d *Dispatcher) ChapterUpdate(mangaTitle, mangaURL, chapterTitle, chapterURL string) {
	data := map[string]string{
		"mangaUrl":     mangaURL,
		"chapterTitle": chapterTitle,
	}
	if chapterURL != "" {
		data["chapterUrl"] = chapterURL
	}
	if _, err := d.Send(models.ChannelMangaUpdates, mangaTitle, "New chapter: "+chapterTitle, data); err != nil {
		log.Printf("Failed to send chapter update notification for %s: %v", mangaTitle, err)
	}
}

// DownloadComplete announces a finished download on the downloads channel.
func (d *Dispatcher) DownloadComplete(task *models.DownloadTask) {
	data := map[string]string{"downloadId": formatID(task.ID)}
	if _, err := d.Send(models.ChannelDownloads, "Download complete",
		task.MangaTitle+" - "+task.ChapterTitle, data); err != nil {
		log.Printf("Failed to send download notification for task %d: %v", task.ID, err)
	}
}

// DownloadFailed announces a failed download on the downloads channel.
func (d *Dispatcher) DownloadFailed(task *models.DownloadTask, reason string) {
	data := map[string]string{"downloadId": formatID(task.ID)}
	if _, err := d.Send(models.ChannelDownloads, "Download failed",
		task.ChapterTitle+": "+reason, data); err != nil {
		log.Printf("Failed to send download failure notification for task %d: %v", task.ID, err)
	}
}

// ReadingReminder nudges the user back to their most recent series on the
// general channel.
func (d *Dispatcher) ReadingReminder(mangaTitle, mangaURL string) {
	data := map[string]string{"mangaUrl": mangaURL}
	if _, err := d.Send(models.ChannelGeneral, "Continue reading?",
		"Pick up where you left off in "+mangaTitle, data); err != nil {
		log.Printf("Failed to send reading reminder: %v", err)
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
