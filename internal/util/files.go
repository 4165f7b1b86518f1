package util

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[\x00\\/:*?"<>|]`)

// SanitizeFilename strips characters that are unsafe in file names on any
// of the platforms the shell runs on, and caps the length so deeply nested
// chapter titles cannot blow the path limit.
func SanitizeFilename(filename string) string {
	safe := unsafeFilenameChars.ReplaceAllString(filename, "-")
	safe = strings.Join(strings.Fields(safe), "_")

	for strings.HasPrefix(safe, ".") || strings.HasPrefix(safe, "-") {
		safe = safe[1:]
	}
	if len(safe) > 100 {
		safe = safe[:100]
	}
	if safe == "" {
		safe = "untitled"
	}
	return safe
}

var imageExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)(\?|$)`)

// ImageExtension extracts the image extension from a URL, defaulting to
// jpg when the URL carries none (common on CDN-proxied images).
func ImageExtension(url string) string {
	m := imageExtRe.FindStringSubmatch(url)
	if m == nil {
		return "jpg"
	}
	return strings.ToLower(m[1])
}

// IsImageFile checks if a filename has a common image file extension.
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".gif" || ext == ".webp"
}
