package notify

import "github.com/yomu-reader/yomu-go/internal/models"

// TapTarget is where the UI should navigate when a notification is
// tapped.
type TapTarget struct {
	Screen string `json:"screen"`
	URL    string `json:"url,omitempty"`
}

// Screens the shell can navigate to from a notification tap.
const (
	ScreenBrowser   = "browser"
	ScreenDownloads = "downloads"
	ScreenHome      = "home"
)

// RouteTap resolves the navigation target for a tapped notification. A
// chapter update opens the chapter (or the series page when the chapter
// URL is unknown), a download notification opens the downloads screen,
// and anything else lands on home.
func RouteTap(n *models.Notification) TapTarget {
	switch n.Channel {
	case models.ChannelMangaUpdates:
		if url := n.Data["chapterUrl"]; url != "" {
			return TapTarget{Screen: ScreenBrowser, URL: url}
		}
		if url := n.Data["mangaUrl"]; url != "" {
			return TapTarget{Screen: ScreenBrowser, URL: url}
		}
		return TapTarget{Screen: ScreenHome}
	case models.ChannelDownloads:
		return TapTarget{Screen: ScreenDownloads}
	default:
		if url := n.Data["mangaUrl"]; url != "" {
			return TapTarget{Screen: ScreenBrowser, URL: url}
		}
		return TapTarget{Screen: ScreenHome}
	}
}
