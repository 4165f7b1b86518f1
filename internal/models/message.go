package models

// Message type discriminators used on the page-to-host channel. These
// values are baked into the injected script, so they are part of the wire
// contract with the embedded browser.
const (
	MsgBookmarkAdd     = "BOOKMARK_ADD"
	MsgChapterProgress = "CHAPTER_PROGRESS"
	MsgDownloadChapter = "DOWNLOAD_CHAPTER"
	MsgPageInfo        = "PAGE_INFO"
	MsgChapterComplete = "CHAPTER_COMPLETE"
)

// PageMessage is the closed set of messages the injected script can send.
// Decoding happens once at the channel boundary; after that, handlers
// switch on the concrete type.
type PageMessage interface {
	MessageType() string
}

// BookmarkAddMessage asks the host to bookmark the series currently open
// in the embedded browser. Field names follow the injected script payload.
type BookmarkAddMessage struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Status      string `json:"status"`
	Site        string `json:"site"`
}

func (BookmarkAddMessage) MessageType() string { return MsgBookmarkAdd }

// ChapterProgressMessage is the scroll-debounced reading progress report.
type ChapterProgressMessage struct {
	MangaURL         string `json:"mangaUrl"`
	ChapterURL       string `json:"chapterUrl"`
	ChapterTitle     string `json:"chapterTitle"`
	CurrentPage      int    `json:"currentPage"`
	TotalPages       int    `json:"totalPages"`
	ScrollPosition   int    `json:"scrollPosition"`
	ScrollPercentage int    `json:"scrollPercentage"`
	ReadingTimeMs    int64  `json:"readingTime"`
	Timestamp        int64  `json:"timestamp"`
}

func (ChapterProgressMessage) MessageType() string { return MsgChapterProgress }

// DownloadChapterMessage requests an offline download of the chapter the
// user is reading, with the image URLs the script collected from the DOM.
type DownloadChapterMessage struct {
	MangaTitle   string   `json:"mangaTitle"`
	MangaURL     string   `json:"mangaUrl"`
	ChapterTitle string   `json:"chapterTitle"`
	ChapterURL   string   `json:"chapterUrl"`
	Images       []string `json:"images"`
}

func (DownloadChapterMessage) MessageType() string { return MsgDownloadChapter }

// PageInfoMessage reports a navigation event for the history log.
type PageInfoMessage struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Domain       string `json:"domain"`
	ChapterTitle string `json:"chapterTitle"`
	ChapterURL   string `json:"chapterUrl"`
}

func (PageInfoMessage) MessageType() string { return MsgPageInfo }

// ChapterCompleteMessage is emitted on page unload with the total time the
// chapter was open.
type ChapterCompleteMessage struct {
	ChapterURL         string `json:"chapterUrl"`
	TotalReadingTimeMs int64  `json:"totalReadingTime"`
}

func (ChapterCompleteMessage) MessageType() string { return MsgChapterComplete }
