// Package sites holds the per-site extraction profiles. A profile bundles
// every hostname-specific rule the rest of the system needs: which DOM
// elements to strip, where the reader images live, where series metadata
// sits, and how to find the newest chapter link on a detail page.
//
// Profiles are fixed at build time. Scraping rules of this kind are
// inherently brittle against upstream markup changes; a profile going
// stale degrades to the generic behavior rather than erroring.
package sites

// MetaSelectors locate series metadata on a detail page.
type MetaSelectors struct {
	Title       string
	Thumbnail   string
	Description string
	Genre       string
	Status      string
}

// ChapterRule describes how to find the most recent chapter link on a
// series detail page. Selector is tried first against the parsed document;
// the regex pair is the fallback for markup goquery cannot reach. Both
// yield at most one result: the first match.
type ChapterRule struct {
	// Selector matches the newest chapter anchor. Title is the anchor
	// text, URL its href.
	Selector string
	// TitleRe and URLRe are applied to the raw HTML when the selector
	// finds nothing. TitleRe must expose a "title" capture group, URLRe a
	// "url" group.
	TitleRe string
	URLRe   string
}

// Profile is the full rule set for one site family.
type Profile struct {
	// ID is the hostname fragment the profile is keyed on, and doubles as
	// the profile's name in logs.
	ID string

	// Fragments are the hostname substrings that select this profile.
	// Matching is plain containment, checked in registry order.
	Fragments []string

	// HideSelectors are removed from the page by the injected script.
	HideSelectors []string

	// ReadingAreaSelectors locate the chapter reading container.
	ReadingAreaSelectors []string

	// ImageSelectors locate the chapter page images.
	ImageSelectors []string

	Meta    MetaSelectors
	Chapter ChapterRule

	// Generic marks the conservative fallback profile. The injected script
	// treats it more carefully: it must never remove an element that
	// contains an image, since the layout is unknown.
	Generic bool
}
