// Package pagescript builds the script injected into the embedded browser.
// The script runs inside third-party pages whose markup is untrusted and
// mutates under us, so everything it does is defensive: all DOM access is
// wrapped, initialization is guarded by an explicit lifecycle state so it
// can be re-applied after client-side navigation, and every failure is
// logged in-page rather than thrown.
package pagescript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/dop251/goja"

	"github.com/yomu-reader/yomu-go/internal/sites"
)

// adHostFragments is the network-level denylist. Requests whose URL
// contains any fragment are rejected inside the page. This runs in the
// same sandbox as the page itself, so it is best effort and fails open.
var adHostFragments = []string{
	"doubleclick",
	"googlesyndication",
	"googleadservices",
	"/ads/",
	"adsystem",
	"amazon-adsystem",
	"facebook.com/tr",
}

// scriptParams is the data handed to the script template.
type scriptParams struct {
	ProfileID     string
	Generic       bool
	HideSelectors string // JSON array
	ImageSelector string // comma-joined selector list
	ReadingAreas  string // JSON array
	MetaTitle     string
	MetaThumbnail string
	MetaDesc      string
	MetaGenre     string
	MetaStatus    string
	AdFragments   string // JSON array
}

// Build produces the complete injection script for one site profile. The
// result is a single self-contained IIFE; running it twice on the same
// page must be a no-op the second time.
func Build(profile sites.Profile) (string, error) {
	params, err := newParams(profile)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := scriptTmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to render page script: %w", err)
	}
	return buf.String(), nil
}

// BuildForHost is the common entry point: resolve the profile for a
// hostname and build its script.
func BuildForHost(hostname string) (string, error) {
	return Build(sites.Match(hostname))
}

// Validate compiles the generated script without running it. Called once
// at startup for every profile so a malformed template fails fast instead
// of silently breaking every page.
func Validate() error {
	all := append(sites.All(), sites.Generic())
	for _, p := range all {
		script, err := Build(p)
		if err != nil {
			return err
		}
		if _, err := goja.Compile("pagescript-"+p.ID, script, false); err != nil {
			return fmt.Errorf("generated script for profile %q does not compile: %w", p.ID, err)
		}
	}
	return nil
}

func newParams(profile sites.Profile) (scriptParams, error) {
	hide, err := json.Marshal(profile.HideSelectors)
	if err != nil {
		return scriptParams{}, err
	}
	areas, err := json.Marshal(profile.ReadingAreaSelectors)
	if err != nil {
		return scriptParams{}, err
	}
	ads, err := json.Marshal(adHostFragments)
	if err != nil {
		return scriptParams{}, err
	}
	imgSel, err := json.Marshal(joinSelectors(profile.ImageSelectors))
	if err != nil {
		return scriptParams{}, err
	}
	return scriptParams{
		ProfileID:     profile.ID,
		Generic:       profile.Generic,
		HideSelectors: string(hide),
		ImageSelector: string(imgSel),
		ReadingAreas:  string(areas),
		MetaTitle:     jsString(profile.Meta.Title),
		MetaThumbnail: jsString(profile.Meta.Thumbnail),
		MetaDesc:      jsString(profile.Meta.Description),
		MetaGenre:     jsString(profile.Meta.Genre),
		MetaStatus:    jsString(profile.Meta.Status),
		AdFragments:   string(ads),
	}, nil
}

func joinSelectors(selectors []string) string {
	out := ""
	for i, s := range selectors {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

var scriptTmpl = template.Must(template.New("pagescript").Parse(pageScriptSource))
