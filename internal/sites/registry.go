package sites

import "strings"

// profiles is the ordered profile table. Lookup is substring containment
// against the hostname, first match wins, so more specific fragments must
// come before broader ones.
var profiles = []Profile{
	{
		ID:        "komikcast",
		Fragments: []string{"komikcast"},
		HideSelectors: []string{
			"header.header", ".header-wrapper", ".navbar", ".navigation",
			".ads", ".advertisement", ".adsense", ".sidebar",
			".footer", "#footer", ".social-share", ".comments",
			".related-posts", ".popup", ".modal", ".overlay",
			`[class*="ad-"]`, `[id*="ad-"]`,
			`iframe[src*="ads"]`, `script[src*="ads"]`,
		},
		ReadingAreaSelectors: []string{"#chapter_body", ".main-reading-area", ".reading-content", ".entry-content"},
		ImageSelectors: []string{
			".main-reading-area img", "#chapter_body img",
			".reading-content img", ".entry-content img",
		},
		Meta: MetaSelectors{
			Title:       "h1.komik_info-content-body-title, .entry-title, h1.title, .manga-title",
			Thumbnail:   ".komik_info-content-thumbnail img, .thumb img, .manga-thumb img",
			Description: ".komik_info-description-sinopsis, .summary, .manga-summary",
			Genre:       ".komik_info-content-genre a, .genre a, .manga-genre a",
			Status:      ".komik_info-content-info, .status, .manga-status",
		},
		Chapter: ChapterRule{
			Selector: "a.chapter-link-item",
			TitleRe:  `<a[^>]*class="[^"]*chapter-link-item[^"]*"[^>]*>(?P<title>[^<]+)</a>`,
			URLRe:    `<a[^>]*class="[^"]*chapter-link-item[^"]*"[^>]*href="(?P<url>[^"]+)"`,
		},
	},
	{
		ID:        "komiku",
		Fragments: []string{"komiku"},
		HideSelectors: []string{
			".header", ".navbar", ".sidebar", ".footer",
			".ads", ".advertisement", ".social-buttons", ".comments-area",
		},
		ReadingAreaSelectors: []string{".reading-content", ".chapter-content", ".entry-content"},
		ImageSelectors: []string{
			".reading-content img", ".chapter-content img", ".entry-content img",
		},
		Meta: MetaSelectors{
			Title:       "h1.title, .entry-title, .manga-title",
			Thumbnail:   ".thumb img, .manga-thumb img",
			Description: ".summary, .manga-summary",
			Genre:       ".genre a, .manga-genre a",
			Status:      ".status, .manga-status",
		},
		Chapter: ChapterRule{
			Selector: `a[class*="chapter"]`,
			TitleRe:  `<a[^>]*class="[^"]*chapter[^"]*"[^>]*>(?P<title>[^<]+)</a>`,
			URLRe:    `<a[^>]*class="[^"]*chapter[^"]*"[^>]*href="(?P<url>[^"]+)"`,
		},
	},
	{
		ID:        "mangaku",
		Fragments: []string{"mangaku"},
		HideSelectors: []string{
			".header-wrapper", ".navbar", ".sidebar", ".footer",
			".ads", ".advertisement", ".social-buttons",
		},
		ReadingAreaSelectors: []string{".reading-content", ".chapter-content"},
		ImageSelectors:       []string{".reading-content img", ".chapter-content img"},
		Meta: MetaSelectors{
			Title:       "h1.title, .entry-title",
			Thumbnail:   ".thumb img",
			Description: ".summary",
			Genre:       ".genre a",
			Status:      ".status",
		},
		Chapter: ChapterRule{
			Selector: `a[href*="chapter"]`,
			TitleRe:  `<a[^>]*href="[^"]*chapter[^"]*"[^>]*>(?P<title>[^<]+)</a>`,
			URLRe:    `<a[^>]*href="(?P<url>[^"]*chapter[^"]*)"[^>]*>`,
		},
	},
	{
		ID:        "westmanga",
		Fragments: []string{"westmanga", "bacamanga"},
		HideSelectors: []string{
			".site-header", ".site-footer", ".sidebar",
			".ads", ".advertisement", ".widget-area",
		},
		ReadingAreaSelectors: []string{".reading-content", ".entry-content"},
		ImageSelectors:       []string{`img[src*="manga"]`, `img[src*="chapter"]`},
		Meta: MetaSelectors{
			Title:       "h1.entry-title, .manga-title",
			Thumbnail:   ".thumb img, .manga-thumb img",
			Description: ".summary, .entry-content p",
			Genre:       ".genre a",
			Status:      ".status",
		},
		Chapter: ChapterRule{
			Selector: `a[href*="chapter"]`,
			TitleRe:  `<a[^>]*href="[^"]*chapter[^"]*"[^>]*>(?P<title>[^<]+)</a>`,
			URLRe:    `<a[^>]*href="(?P<url>[^"]*chapter[^"]*)"[^>]*>`,
		},
	},
	{
		ID:        "mangaindo",
		Fragments: []string{"mangaindo"},
		HideSelectors: []string{
			".header", ".navbar", ".sidebar", ".footer",
			".ads", ".advertisement",
		},
		ReadingAreaSelectors: []string{".reading-content", ".entry-content"},
		ImageSelectors:       []string{".reading-content img", ".entry-content img"},
		Meta: MetaSelectors{
			Title:       "h1.title, .entry-title",
			Thumbnail:   ".thumb img",
			Description: ".summary",
			Genre:       ".genre a",
			Status:      ".status",
		},
		Chapter: ChapterRule{
			Selector: `a[href*="chapter"]`,
			TitleRe:  `<a[^>]*href="[^"]*chapter[^"]*"[^>]*>(?P<title>[^<]+)</a>`,
			URLRe:    `<a[^>]*href="(?P<url>[^"]*chapter[^"]*)"[^>]*>`,
		},
	},
}

// generic is the fallback profile for unknown hosts. Its hide list is
// deliberately narrow and the injected script additionally refuses to
// remove any element containing an image.
var generic = Profile{
	ID:      "generic",
	Generic: true,
	HideSelectors: []string{
		"header:not(.manga-header)", "nav:not(.manga-nav)",
		".header:not(.manga-header)", ".navbar:not(.manga-navbar)",
		".navigation:not(.manga-navigation)", ".sidebar:not(.manga-sidebar)",
		".footer:not(.manga-footer)",
		".ads", ".advertisement", ".adsense", ".social",
		".comments:not(.manga-comments)", ".popup", ".modal:not(.manga-modal)",
		`[class*="ad-"]:not([class*="manga"])`, `[id*="ad-"]:not([id*="manga"])`,
	},
	ReadingAreaSelectors: []string{".manga-content", ".reading-area", "#chapter_body"},
	ImageSelectors: []string{
		`img[src*="manga"]`, `img[src*="chapter"]`, `img[src*="page"]`,
		".manga-image img", ".chapter-image img", ".reading-area img",
		`.content img[src*="wp-content"]`,
	},
	Meta: MetaSelectors{
		Title:       "h1.entry-title, h1.title, .manga-title, h1",
		Thumbnail:   ".thumb img, .manga-thumb img",
		Description: ".summary, .manga-summary, .description",
		Genre:       ".genre a, .manga-genre a",
		Status:      ".status, .manga-status",
	},
	Chapter: ChapterRule{
		Selector: `a[href*="chapter"]`,
		TitleRe:  `<a[^>]*href="[^"]*chapter[^"]*"[^>]*>(?P<title>[^<]+)</a>`,
		URLRe:    `<a[^>]*href="(?P<url>[^"]*chapter[^"]*)"[^>]*>`,
	},
}

// Match returns the profile for a hostname. Unknown hosts are not an
// error; they get the generic profile.
func Match(hostname string) Profile {
	host := strings.ToLower(hostname)
	for _, p := range profiles {
		for _, fragment := range p.Fragments {
			if strings.Contains(host, fragment) {
				return p
			}
		}
	}
	return generic
}

// Generic returns the fallback profile directly.
func Generic() Profile {
	return generic
}

// All returns every registered profile, fallback excluded.
func All() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}
