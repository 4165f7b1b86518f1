package tracker

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yomu-reader/yomu-go/internal/sites"
)

// Chapter is one chapter entry scraped from a series page.
type Chapter struct {
	Title string
	URL   string
}

// LatestChapter extracts the newest chapter from a series page. Sites
// list chapters newest-first, so the first match wins. The CSS selector
// is tried first; when it matches nothing (layout drift, partial render)
// the raw-HTML regex rule is the fallback.
func LatestChapter(rule sites.ChapterRule, html, baseURL string) (Chapter, bool) {
	if ch, ok := latestBySelector(rule.Selector, html, baseURL); ok {
		return ch, true
	}
	return latestByRegex(rule, html, baseURL)
}

func latestBySelector(selector, html, baseURL string) (Chapter, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Chapter{}, false
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return Chapter{}, false
	}
	title := strings.TrimSpace(sel.Text())
	href, _ := sel.Attr("href")
	if title == "" {
		return Chapter{}, false
	}
	return Chapter{Title: title, URL: resolveURL(baseURL, href)}, true
}

func latestByRegex(rule sites.ChapterRule, html, baseURL string) (Chapter, bool) {
	titleRe, err := regexp.Compile(rule.TitleRe)
	if err != nil {
		return Chapter{}, false
	}
	m := titleRe.FindStringSubmatch(html)
	if m == nil {
		return Chapter{}, false
	}
	title := strings.TrimSpace(m[titleRe.SubexpIndex("title")])
	if title == "" {
		return Chapter{}, false
	}

	ch := Chapter{Title: title}
	if urlRe, err := regexp.Compile(rule.URLRe); err == nil {
		if um := urlRe.FindStringSubmatch(html); um != nil {
			ch.URL = resolveURL(baseURL, um[urlRe.SubexpIndex("url")])
		}
	}
	return ch, true
}

// resolveURL makes scraped hrefs absolute against the series page.
func resolveURL(baseURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
