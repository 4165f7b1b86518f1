package jobs

import (
	"testing"
	"time"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/notify"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/testutil"
)

func TestSendReadingReminder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	dispatcher := notify.New(st, nil)

	// A known latest chapter the reader never opened is unread.
	b, err := st.UpsertBookmark(&models.Bookmark{Title: "One Piece", URL: "https://a.example/op/"})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AdvanceLastChapter(b.ID, "Chapter 370", "https://a.example/op-370/"); err != nil {
		t.Fatal(err)
	}

	if err := SendReadingReminder(st, dispatcher, 24*time.Hour); err != nil {
		t.Fatalf("SendReadingReminder failed: %v", err)
	}

	sent, err := st.GetNotifications(models.ChannelGeneral, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sent) != 1 {
		t.Fatalf("Expected one reminder, got %d", len(sent))
	}
	if sent[0].Data["mangaUrl"] != b.URL {
		t.Errorf("Expected reminder to point at the unread series, got %+v", sent[0].Data)
	}

	// A second run inside the interval is silent.
	if err := SendReadingReminder(st, dispatcher, 24*time.Hour); err != nil {
		t.Fatal(err)
	}
	sent, _ = st.GetNotifications(models.ChannelGeneral, 0)
	if len(sent) != 1 {
		t.Errorf("Expected no second reminder within the interval, got %d", len(sent))
	}
}

func TestReadingReminderSkipsCaughtUpSeries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	dispatcher := notify.New(st, nil)

	// The latest progress matches the last-known chapter: nothing unread,
	// however long ago the reader was last active.
	b, err := st.UpsertBookmark(&models.Bookmark{Title: "Naruto", URL: "https://a.example/n/"})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AdvanceLastChapter(b.ID, "Chapter 700", "https://a.example/n-700/"); err != nil {
		t.Fatal(err)
	}
	title := "Chapter 700"
	if _, err := st.UpsertProgress(&models.ReadingProgress{
		MangaURL: b.URL, ChapterURL: "https://a.example/n-700/", ChapterTitle: &title,
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.TouchBookmarkLastRead(b.URL, time.Now().Add(-72*time.Hour)); err != nil {
		t.Fatal(err)
	}

	if err := SendReadingReminder(st, dispatcher, 24*time.Hour); err != nil {
		t.Fatal(err)
	}
	sent, _ := st.GetNotifications(models.ChannelGeneral, 0)
	if len(sent) != 0 {
		t.Errorf("Expected no reminder for a caught-up series, got %d", len(sent))
	}
}

func TestReadingReminderFiresWhenBehind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	dispatcher := notify.New(st, nil)

	// The reader is on an older chapter than the last-known one.
	b, err := st.UpsertBookmark(&models.Bookmark{Title: "Berserk", URL: "https://a.example/b/"})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AdvanceLastChapter(b.ID, "Chapter 365", "https://a.example/b-365/"); err != nil {
		t.Fatal(err)
	}
	title := "Chapter 360"
	if _, err := st.UpsertProgress(&models.ReadingProgress{
		MangaURL: b.URL, ChapterURL: "https://a.example/b-360/", ChapterTitle: &title,
	}); err != nil {
		t.Fatal(err)
	}

	if err := SendReadingReminder(st, dispatcher, 24*time.Hour); err != nil {
		t.Fatal(err)
	}
	sent, _ := st.GetNotifications(models.ChannelGeneral, 0)
	if len(sent) != 1 {
		t.Errorf("Expected a reminder for the series the reader is behind on, got %d", len(sent))
	}
}

func TestReadingReminderSkipsUntrackedSeries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	dispatcher := notify.New(st, nil)

	// No known latest chapter: nothing to be behind on.
	if _, err := st.UpsertBookmark(&models.Bookmark{Title: "New Find", URL: "https://a.example/nf/"}); err != nil {
		t.Fatal(err)
	}

	if err := SendReadingReminder(st, dispatcher, 24*time.Hour); err != nil {
		t.Fatal(err)
	}
	sent, _ := st.GetNotifications(models.ChannelGeneral, 0)
	if len(sent) != 0 {
		t.Errorf("Expected no reminder without a chapter pointer, got %d", len(sent))
	}
}

func TestReadingReminderDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	dispatcher := notify.New(st, nil)

	if err := st.SetBoolSetting(models.SettingReminderEnabled, false); err != nil {
		t.Fatal(err)
	}
	b, _ := st.UpsertBookmark(&models.Bookmark{Title: "X", URL: "https://a.example/x/"})
	if err := st.AdvanceLastChapter(b.ID, "Chapter 12", "https://a.example/x-12/"); err != nil {
		t.Fatal(err)
	}

	if err := SendReadingReminder(st, dispatcher, 24*time.Hour); err != nil {
		t.Fatal(err)
	}
	sent, _ := st.GetNotifications(models.ChannelGeneral, 0)
	if len(sent) != 0 {
		t.Errorf("Expected reminders disabled, got %d", len(sent))
	}
}

func TestRunMaintenance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	// Aged-out history entry.
	if err := st.AddHistory(&models.HistoryEntry{
		Title: "ancient", URL: "https://a.example/old", VisitedAt: time.Now().Add(-120 * 24 * time.Hour),
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.AddHistory(&models.HistoryEntry{
		Title: "recent", URL: "https://a.example/new", VisitedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	if err := RunMaintenance(st); err != nil {
		t.Fatalf("RunMaintenance failed: %v", err)
	}

	entries, err := st.GetHistory(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Title != "recent" {
		t.Errorf("Expected only the recent entry to survive, got %+v", entries)
	}
}
