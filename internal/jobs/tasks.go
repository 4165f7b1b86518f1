package jobs

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/notify"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/tracker"
)

const (
	historyRetention      = 90 * 24 * time.Hour
	notificationRetention = 30 * 24 * time.Hour
)

// RegisterAll registers the standard background jobs.
func RegisterAll(jm *JobManager, st *store.Store, trackerSvc *tracker.Service, dispatcher *notify.Dispatcher, reminderIntervalHr int) {
	jm.Register(JobUpdateCheck, func(ctx context.Context) error {
		trackerSvc.CheckAll(ctx)
		return nil
	})
	jm.Register(JobReadingReminder, func(ctx context.Context) error {
		return SendReadingReminder(st, dispatcher, time.Duration(reminderIntervalHr)*time.Hour)
	})
	jm.Register(JobMaintenance, func(ctx context.Context) error {
		return RunMaintenance(st)
	})
}

// SendReadingReminder nudges the user about a bookmarked series with an
// unread chapter: the series has a known latest chapter and the reader
// either never opened it or last read a different chapter. At most one
// reminder per interval.
func SendReadingReminder(st *store.Store, dispatcher *notify.Dispatcher, interval time.Duration) error {
	if !st.GetBoolSetting(models.SettingReminderEnabled, true) {
		return nil
	}

	lastMs := st.GetIntSetting(models.SettingLastReadingReminder, 0)
	if lastMs > 0 && time.Since(time.UnixMilli(lastMs)) < interval {
		return nil
	}

	bookmarks, err := st.GetBookmarks(false)
	if err != nil {
		return err
	}
	for _, b := range bookmarks {
		unread, err := hasUnreadChapter(st, b)
		if err != nil {
			return err
		}
		if !unread {
			continue
		}
		dispatcher.ReadingReminder(b.Title, b.URL)
		return st.SetIntSetting(models.SettingLastReadingReminder, time.Now().UnixMilli())
	}
	return nil
}

// hasUnreadChapter reports whether the series' last-known chapter is one
// the reader has not reached. A series without a known chapter pointer
// has nothing to be behind on.
func hasUnreadChapter(st *store.Store, b *models.Bookmark) (bool, error) {
	if b.LastChapterTitle == nil {
		return false, nil
	}
	p, err := st.GetLatestProgress(b.URL)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if p.ChapterTitle == nil || *p.ChapterTitle != *b.LastChapterTitle {
		return true, nil
	}
	return false, nil
}

// RunMaintenance prunes aged-out history and read notifications.
func RunMaintenance(st *store.Store) error {
	pruned, err := st.PruneHistoryOlderThan(time.Now().Add(-historyRetention))
	if err != nil {
		return err
	}
	if pruned > 0 {
		log.Printf("Maintenance pruned %d history entries", pruned)
	}

	pruned, err = st.PruneNotificationsOlderThan(time.Now().Add(-notificationRetention))
	if err != nil {
		return err
	}
	if pruned > 0 {
		log.Printf("Maintenance pruned %d notifications", pruned)
	}
	return nil
}
