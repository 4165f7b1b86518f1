package notify_test

import (
	"testing"

	"github.com/yomu-reader/yomu-go/internal/models"
	"github.com/yomu-reader/yomu-go/internal/notify"
	"github.com/yomu-reader/yomu-go/internal/store"
	"github.com/yomu-reader/yomu-go/internal/testutil"
)

func TestSendPersists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	d := notify.New(st, nil) // no hub: persistence alone must work

	n, err := d.Send(models.ChannelGeneral, "hello", "world", nil)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if n.ID == 0 {
		t.Fatal("Expected persisted notification to have an ID")
	}

	stored, err := st.GetNotifications("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Title != "hello" {
		t.Errorf("Expected notification persisted, got %+v", stored)
	}
}

func TestChapterUpdateChannel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	d := notify.New(st, nil)

	d.ChapterUpdate("One Piece", "https://komikcast.li/komik/one-piece/", "Chapter 1100",
		"https://komikcast.li/one-piece-chapter-1100/")

	stored, err := st.GetNotifications(models.ChannelMangaUpdates, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected update on the manga-updates channel, got %d", len(stored))
	}
	if stored[0].Data["chapterUrl"] == "" {
		t.Error("Expected tap payload to carry the chapter URL")
	}
}

func TestRouteTap(t *testing.T) {
	cases := []struct {
		name string
		n    *models.Notification
		want notify.TapTarget
	}{
		{
			name: "chapter update with url opens the chapter",
			n: &models.Notification{
				Channel: models.ChannelMangaUpdates,
				Data:    map[string]string{"chapterUrl": "https://a.example/ch-1", "mangaUrl": "https://a.example/m"},
			},
			want: notify.TapTarget{Screen: notify.ScreenBrowser, URL: "https://a.example/ch-1"},
		},
		{
			name: "chapter update without chapter url falls back to the series",
			n: &models.Notification{
				Channel: models.ChannelMangaUpdates,
				Data:    map[string]string{"mangaUrl": "https://a.example/m"},
			},
			want: notify.TapTarget{Screen: notify.ScreenBrowser, URL: "https://a.example/m"},
		},
		{
			name: "download opens the downloads screen",
			n:    &models.Notification{Channel: models.ChannelDownloads, Data: map[string]string{}},
			want: notify.TapTarget{Screen: notify.ScreenDownloads},
		},
		{
			name: "general with no payload lands home",
			n:    &models.Notification{Channel: models.ChannelGeneral, Data: map[string]string{}},
			want: notify.TapTarget{Screen: notify.ScreenHome},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := notify.RouteTap(tc.n); got != tc.want {
				t.Errorf("RouteTap = %+v, want %+v", got, tc.want)
			}
		})
	}
}
