package wix

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// Frame is one embedded sub-document of a rendered page. The legacy gallery
// widget renders inside a nested iframe, so carousel images are only visible
// by walking frames. A frame may be inaccessible (cross-origin); that is an
// expected outcome, not an error.
type Frame interface {
	URL() string
	Document() (*goquery.Document, error)
}

var (
	baseMediaRe   = regexp.MustCompile(`media/([^~]*)`)
	fillSegmentRe = regexp.MustCompile(`/v1/fill/[^/]+/`)
	bgImageRe     = regexp.MustCompile(`url\(["']?(.*?)["']?\)`)
)

// fullSizeFill is the CDN rendition profile substituted for whatever
// thumbnail sizing the carousel requested.
const fullSizeFill = "/v1/fill/w_1920,h_1200,al_c,q_85,usm_0.66_1.00_0.01,enc_avif,quality_auto/"

// BaseMediaID extracts the portion of a CDN URL that identifies the
// underlying asset, independent of the requested size and format suffix.
// URLs outside the expected grammar map to themselves.
func BaseMediaID(rawURL string) string {
	if m := baseMediaRe.FindStringSubmatch(rawURL); m != nil && m[1] != "" {
		return m[1]
	}
	return rawURL
}

// RewriteToFullSize upgrades a thumbnail rendition URL to the large profile
// by rewriting the /v1/fill/ parameter segment. URLs that do not carry such
// a segment pass through unchanged.
func RewriteToFullSize(rawURL string) string {
	if !fillSegmentRe.MatchString(rawURL) {
		return rawURL
	}
	return fillSegmentRe.ReplaceAllString(rawURL, fullSizeFill)
}

// ResolveCarousel walks every accessible frame, collects carousel thumbnail
// URLs, collapses size variants of the same asset to one entry (first seen
// wins, order preserved) and upgrades the survivors to full-size renditions.
func ResolveCarousel(frames []Frame) []string {
	var found []string
	for _, frame := range frames {
		doc, err := frame.Document()
		if err != nil {
			// Cross-origin or detached frame; skip it.
			continue
		}
		found = append(found, carouselImagesIn(doc)...)
	}

	seen := make(map[string]bool)
	var images []string
	for _, img := range found {
		base := BaseMediaID(img)
		if seen[base] {
			continue
		}
		seen[base] = true
		images = append(images, RewriteToFullSize(img))
	}
	return images
}

// carouselImagesIn pulls thumbnail URLs out of one frame document: the
// carousel item markers carry them in data-thumb, lazy-loaded fillers in a
// background-image declaration.
func carouselImagesIn(doc *goquery.Document) []string {
	var urls []string
	seen := make(map[string]bool)

	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	doc.Find(`.cycle-carousel-wrap .item[data-thumb]`).Each(func(_ int, s *goquery.Selection) {
		thumb, _ := s.Attr("data-thumb")
		add(thumb)
	})

	doc.Find(`.cycle-carousel-wrap .filler`).Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		if m := bgImageRe.FindStringSubmatch(style); m != nil {
			add(m[1])
		}
	})

	doc.Find(`[class*="carousel"] img`).Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			src, _ = s.Attr("data-src")
		}
		add(src)
	})

	return urls
}
