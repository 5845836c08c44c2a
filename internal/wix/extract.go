package wix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Fragments shorter than this are noise (stray punctuation, nav glyphs).
const minFragmentLen = 5

// Blog post pages share the DOM with "related posts" cards; capping the
// image count keeps sibling content from leaking into the record.
const maxBlogImages = 5

// Footer boilerplate the legacy site repeats on every page.
var boilerplateMarkers = []string{
	"©",
	"Proudly created",
	"Wix.com",
}

var titleSelectors = []string{
	`[data-hook="blog-post-title"]`,
	`.blog-post-title-font`,
	`h1`,
	`[data-testid="richTextElement"] h1`,
}

var (
	embedVideoRe     = regexp.MustCompile(`embed/([^?]+)`)
	fileViewerRe     = regexp.MustCompile(`(?s)<div[^>]*data-hook="file-upload-viewer"[^>]*>.*?</div>\s*</div>\s*</div>\s*</div>\s*</div>`)
	videoHostMarkers = []string{"youtube", "youtu.be"}
)

// Extract runs the full extraction cascade over one rendered page snapshot.
// All output fields are always present; finding nothing is not an error,
// only an unparsable snapshot is.
func Extract(pageHTML string, shape PageShape) (*ScrapedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	page := &ScrapedPage{
		Title:  extractTitle(doc),
		Images: []string{},
		Videos: []string{},
	}

	fragments := extractContent(doc, pageHTML, shape)
	page.ContentHTML = strings.Join(fragments, "\n")

	if page.ContentHTML == "" {
		if desc := metaDescription(doc); desc != "" {
			page.ContentHTML = "<p>" + desc + "</p>"
		}
	}

	if shape == ShapeBlog {
		page.Images = extractBlogImages(doc)
	} else {
		page.Images = extractImages(doc)
	}

	page.Videos = extractVideos(doc)
	page.Files = extractFiles(doc)
	if len(page.Files) > 0 {
		page.ContentHTML = fileViewerRe.ReplaceAllString(page.ContentHTML, "")
	}

	if links := extractButtonLinks(doc); len(links) > 0 {
		page.ContentHTML += "\n<div class=\"links-section\">\n" + strings.Join(links, "\n") + "\n</div>"
	}

	return page, nil
}

func extractTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// extractContent tries each body strategy in order and stops at the first
// one that yields any fragment. Fragment dedup by normalized text and the
// boilerplate filter are threaded through a seen-set scoped to this call.
func extractContent(doc *goquery.Document, pageHTML string, shape PageShape) []string {
	var fragments []string
	seen := make(map[string]bool)

	add := func(html, text string) {
		trimmed := strings.TrimSpace(text)
		if len([]rune(trimmed)) < minFragmentLen {
			return
		}
		for _, marker := range boilerplateMarkers {
			if strings.Contains(trimmed, marker) {
				return
			}
		}
		if seen[trimmed] {
			return
		}
		seen[trimmed] = true
		fragments = append(fragments, html)
	}

	addSelection := func(s *goquery.Selection) {
		html, err := s.Html()
		if err != nil {
			return
		}
		if html = strings.TrimSpace(html); html != "" {
			add(html, s.Text())
		}
	}

	// Blog posts are scoped to the dedicated post body; walking the wider
	// cascade would pull in related-post cards.
	if shape == ShapeBlog {
		body := doc.Find(`[data-hook="post-description"]`).First()
		if body.Length() > 0 {
			addSelection(body)
		}
		return fragments
	}

	doc.Find(`[data-testid="richTextElement"]`).Each(func(_ int, s *goquery.Selection) {
		addSelection(s)
	})

	if len(fragments) == 0 {
		doc.Find(`.blog-post-page-font, [data-hook="post-body"] [data-testid="richTextElement"]`).Each(func(_ int, s *goquery.Selection) {
			addSelection(s)
		})
	}

	if len(fragments) == 0 {
		doc.Find(`[id^="comp-"]`).Each(func(_ int, comp *goquery.Selection) {
			comp.Find("p, h2, h3, h4, h5, li, blockquote").Each(func(_ int, s *goquery.Selection) {
				text := strings.TrimSpace(s.Text())
				tag := goquery.NodeName(s)
				add("<"+tag+">"+text+"</"+tag+">", text)
			})
		})
	}

	// Last resort before the meta-description paragraph: let readability
	// salvage a body from the full document.
	if len(fragments) == 0 {
		if article, err := readability.FromReader(strings.NewReader(pageHTML), nil); err == nil {
			if content := strings.TrimSpace(article.Content); content != "" {
				add(content, article.TextContent)
			}
		}
	}

	return fragments
}

func metaDescription(doc *goquery.Document) string {
	desc, _ := doc.Find(`meta[name="description"], meta[property="og:description"]`).First().Attr("content")
	return strings.TrimSpace(desc)
}

func imageSrc(s *goquery.Selection) string {
	if src, ok := s.Attr("src"); ok && src != "" {
		return src
	}
	src, _ := s.Attr("data-src")
	return src
}

// extractImages collects content images from the top-level document: every
// CDN-hosted img that survives the classifier, plus carousel thumbnails and
// filler backgrounds rendered outside the gallery iframe.
func extractImages(doc *goquery.Document) []string {
	images := []string{}
	seen := make(map[string]bool)

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := imageSrc(s)
		if src == "" || seen[src] {
			return
		}
		if !strings.Contains(src, "wixstatic") && !strings.Contains(src, "wix") {
			return
		}
		if Classify(src, FilterOptions{MinDimension: ScrapeMinDimension}) != ClassContent {
			return
		}
		seen[src] = true
		images = append(images, src)
	})

	doc.Find(`.cycle-carousel-wrap .item[data-thumb]`).Each(func(_ int, s *goquery.Selection) {
		thumb, _ := s.Attr("data-thumb")
		if thumb == "" || seen[thumb] {
			return
		}
		// Size variants of the same asset share the URL up to /v1/.
		base := strings.SplitN(thumb, "/v1/", 2)[0]
		if seen[base] {
			return
		}
		if Classify(thumb, FilterOptions{}) != ClassContent {
			return
		}
		seen[thumb] = true
		seen[base] = true
		images = append(images, thumb)
	})

	doc.Find(`.cycle-carousel-wrap .filler`).Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		m := bgImageRe.FindStringSubmatch(style)
		if m == nil || !strings.Contains(m[1], "wixstatic") || seen[m[1]] {
			return
		}
		seen[m[1]] = true
		images = append(images, m[1])
	})

	return images
}

// extractBlogImages keeps only images inside the post body container and
// caps the count, so a long "related posts" strip cannot inflate the record.
func extractBlogImages(doc *goquery.Document) []string {
	images := []string{}
	seen := make(map[string]bool)

	doc.Find(`[data-hook="post-description"] img`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := imageSrc(s)
		if src == "" || seen[src] || !strings.Contains(src, "wixstatic") {
			return true
		}
		if Classify(src, FilterOptions{}) != ClassContent {
			return true
		}
		seen[src] = true
		images = append(images, src)
		return len(images) < maxBlogImages
	})

	return images
}

// extractVideos collects embedded players and normalizes embed URLs to
// canonical watch URLs, deduplicated by the canonical form.
func extractVideos(doc *goquery.Document) []string {
	videos := []string{}
	seen := make(map[string]bool)

	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" || !isVideoHost(src) {
			return
		}
		url := src
		if m := embedVideoRe.FindStringSubmatch(src); m != nil {
			url = "https://www.youtube.com/watch?v=" + m[1]
		}
		if seen[url] {
			return
		}
		seen[url] = true
		videos = append(videos, url)
	})

	return videos
}

func isVideoHost(src string) bool {
	for _, marker := range videoHostMarkers {
		if strings.Contains(src, marker) {
			return true
		}
	}
	return false
}

// extractFiles reads the file viewer widgets. Their markup is removed from
// the content HTML by the caller; attachments are record data, not HTML.
func extractFiles(doc *goquery.Document) []ScrapedFile {
	var files []ScrapedFile
	doc.Find(`[data-hook="file-upload-viewer"]`).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find(`[data-hook="file-upload-name"]`).First().Text())
		ext := strings.TrimSpace(s.Find(`[data-hook="file-upload-extension"]`).First().Text())
		if name != "" {
			files = append(files, ScrapedFile{Name: name, Ext: ext})
		}
	})
	return files
}

// extractButtonLinks turns the button-styled link widgets into plain
// anchors, appended to the content as a links section.
func extractButtonLinks(doc *goquery.Document) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find(`[data-semantic-classname="button"]`).Each(func(_ int, s *goquery.Selection) {
		a := s.Find(`a[data-testid="linkElement"]`).First()
		href, ok := a.Attr("href")
		if !ok || href == "" || seen[href] {
			return
		}
		text := strings.TrimSpace(a.Text())
		if text == "" {
			return
		}
		seen[href] = true
		links = append(links, `<a href="`+href+`" target="_blank" rel="noopener">`+text+`</a>`)
	})

	return links
}
