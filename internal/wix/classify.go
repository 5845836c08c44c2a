package wix

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ImageClass is the verdict of the image classifier.
type ImageClass int

const (
	ClassContent ImageClass = iota
	ClassDecorative
)

// Minimum content-image dimensions used by the two callers. The live scrape
// sees carousel thumbnails rendered around 100px, while the cleanup refilter
// only needs to catch genuine icons. Note the bounds differ in kind: the
// scrape keeps images at exactly ScrapeMinDimension, while the cleanup
// refilter drops images at exactly CleanupMinDimension (its bound is
// inclusive).
const (
	ScrapeMinDimension  = 100
	CleanupMinDimension = 50
)

// FilterOptions tunes the classifier per caller. MinDimension 0 disables the
// size check entirely (blog pages, where the container already scopes images).
type FilterOptions struct {
	MinDimension int
}

// Media-id fragments of chrome assets the legacy site reuses everywhere:
// social badges, the accessibility widget and the language-flag strip.
var decorativeHashes = []string{
	"c837a6_3f9e7bf0e2a14d018d52d35ca4d80719",
	"c837a6_d1facf5cbc7d44e3a0ea84bb8c0d6d46",
	"11062b_f2dbbff3f3a44dd9b9e32e3e7e2c5b7d",
}

// Filename/path fragments that mark decorative chrome rather than content.
var decorativeNames = []string{
	"favicon",
	"icon",
	"logo",
	"social",
	"share",
	"button",
	"footer",
	"flag",
}

// Hosts serving platform chrome rather than uploaded media.
var decorativeHosts = []string{
	"parastorage",
	"negishim.com",
	"linguist-flags",
}

var encodedSizeRe = regexp.MustCompile(`w_(\d+),h_(\d+)`)

// Classify decides whether an image URL is real page content or decorative
// chrome. First match wins; a URL with no recognizable dimensions is content,
// absence of evidence is not evidence of decoration.
func Classify(rawURL string, opts FilterOptions) ImageClass {
	lower := strings.ToLower(rawURL)

	for _, host := range decorativeHosts {
		if strings.Contains(lower, host) {
			return ClassDecorative
		}
	}
	if !strings.Contains(lower, "wixstatic") && !strings.Contains(lower, "wix.com") {
		return ClassDecorative
	}

	for _, hash := range decorativeHashes {
		if strings.Contains(rawURL, hash) {
			return ClassDecorative
		}
	}

	for _, name := range decorativeNames {
		if strings.Contains(lower, name) {
			return ClassDecorative
		}
	}

	if opts.MinDimension > 0 {
		if w, h, ok := ImageDimensions(rawURL); ok {
			if w < opts.MinDimension || h < opts.MinDimension {
				return ClassDecorative
			}
		}
	}

	return ClassContent
}

// ImageDimensions extracts the render size the Wix CDN encodes into its
// URLs, either as a path segment (w_300,h_300) or as query parameters
// (?w=40&h=40). ok is false when neither form is present.
func ImageDimensions(rawURL string) (w, h int, ok bool) {
	if m := encodedSizeRe.FindStringSubmatch(rawURL); m != nil {
		w, _ = strconv.Atoi(m[1])
		h, _ = strconv.Atoi(m[2])
		return w, h, true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, 0, false
	}
	q := u.Query()
	ws, hs := q.Get("w"), q.Get("h")
	if ws == "" || hs == "" {
		return 0, 0, false
	}
	w, werr := strconv.Atoi(ws)
	h, herr := strconv.Atoi(hs)
	if werr != nil || herr != nil {
		return 0, 0, false
	}
	return w, h, true
}
