// Package wix extracts content from rendered pages of the legacy Wix site.
// It operates on serialized DOM snapshots so every heuristic is testable
// against fixture HTML without a live browser.
package wix

import "strings"

// PageShape selects the extraction strategy set. Blog posts get their body
// from one dedicated container to avoid bleeding in related-post cards;
// everything else walks the cascade of fallbacks.
type PageShape int

const (
	ShapeStandard PageShape = iota
	ShapeBlog
)

// ShapeForURL infers the page shape from the legacy URL layout, where blog
// posts live under /post/.
func ShapeForURL(url string) PageShape {
	if strings.Contains(url, "/post/") {
		return ShapeBlog
	}
	return ShapeStandard
}

// PageMapping drives one extraction: which legacy URL feeds which record.
// Mappings are static configuration, loaded from data/page-mappings.json.
type PageMapping struct {
	SourceURL string `json:"url"`
	TargetID  string `json:"id"`
	Category  string `json:"category"`
	ParentID  string `json:"parentPage"`
}

// ScrapedFile is a file attachment widget found on the page. The widget
// markup itself is not portable, so attachments are surfaced as data and
// stripped from the content HTML.
type ScrapedFile struct {
	Name string `json:"name"`
	Ext  string `json:"ext"`
}

// ScrapedPage is the raw extraction result for one page. It is never
// persisted directly; the record merger decides what survives.
type ScrapedPage struct {
	Title       string
	ContentHTML string
	Images      []string
	Videos      []string
	Files       []ScrapedFile
}
