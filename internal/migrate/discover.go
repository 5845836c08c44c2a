package migrate

import (
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/omer72/bialystok-site/internal/browser"
)

// BlogPostLink is one discovered blog post on the listing page.
type BlogPostLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	ID    string `json:"id"`
}

var (
	slugInvalidRe = regexp.MustCompile(`[^\w\-\x{0590}-\x{05FF}]`)
	slugSpaceRe   = regexp.MustCompile(`\s+`)
	slugDashRunRe = regexp.MustCompile(`-+`)
)

const maxSlugLen = 50

// Latin renderings for Hebrew letters, used when a discovered post URL
// yields no usable ASCII slug.
var hebrewTranslit = map[rune]string{
	'א': "a", 'ב': "b", 'ג': "g", 'ד': "d", 'ה': "h", 'ו': "v", 'ז': "z",
	'ח': "kh", 'ט': "t", 'י': "y", 'כ': "k", 'ל': "l", 'מ': "m", 'נ': "n",
	'ס': "s", 'ע': "", 'פ': "p", 'צ': "ts", 'ק': "k", 'ר': "r", 'ש': "sh",
	'ת': "t", 'ך': "k", 'ם': "m", 'ן': "n", 'ף': "f", 'ץ': "ts",
}

// DiscoverBlogPosts scrolls the blog listing until it stops growing and
// collects every /post/ link, deriving a stable record id for each.
func DiscoverBlogPosts(b *browser.Browser, listingURL, siteBase string) ([]BlogPostLink, error) {
	html, err := b.LoadScrolled(listingURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse blog listing: %w", err)
	}

	var posts []BlogPostLink
	seen := make(map[string]bool)

	doc.Find(`a[href*="/post/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		if href == "" || len([]rune(text)) <= 3 || seen[href] {
			return
		}
		seen[href] = true

		full := href
		if !strings.HasPrefix(full, "http") {
			full = siteBase + full
		}

		posts = append(posts, BlogPostLink{
			URL:   full,
			Title: text,
			ID:    postID(href, text),
		})
	})

	log.Printf("Discovered %d blog posts on %s", len(posts), listingURL)
	return posts, nil
}

// postID derives a filesystem-safe id for a discovered post: the decoded
// URL segment first, a transliteration of the title when the URL yields
// nothing, and a checksum of the title as a last resort.
func postID(href, title string) string {
	parts := strings.Split(strings.TrimSuffix(href, "/"), "/")
	segment := parts[len(parts)-1]

	if decoded, err := url.PathUnescape(segment); err == nil {
		if id := slugify(decoded); id != "" {
			return id
		}
	}

	var translit strings.Builder
	for _, r := range strings.ToLower(title) {
		if latin, ok := hebrewTranslit[r]; ok {
			translit.WriteString(latin)
		} else {
			translit.WriteRune(r)
		}
	}
	if id := slugify(translit.String()); id != "" {
		return id
	}

	var sum int64
	for _, r := range title {
		sum += int64(r)
	}
	return truncateSlug("post-" + strconv.FormatInt(sum, 36))
}

// slugify lowercases, dashes whitespace and strips everything that is not a
// word character, a dash or a Hebrew letter.
func slugify(text string) string {
	slug := strings.ToLower(text)
	slug = slugSpaceRe.ReplaceAllString(slug, "-")
	slug = slugInvalidRe.ReplaceAllString(slug, "")
	slug = slugDashRunRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" || slug == "-" {
		return ""
	}
	return truncateSlug(slug)
}

func truncateSlug(slug string) string {
	r := []rune(slug)
	if len(r) > maxSlugLen {
		return string(r[:maxSlugLen])
	}
	return slug
}
