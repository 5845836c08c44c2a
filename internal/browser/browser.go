// Package browser drives a headless Chrome session against the legacy site
// and hands back serialized DOM snapshots for extraction. One page is loaded
// at a time; the session is shared mutable state scoped to a single visit.
package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/omer72/bialystok-site/internal/wix"
)

const (
	// navTimeout bounds navigation and the load event only. The lazy-load
	// choreography after it runs unbounded: its scroll passes scale with
	// page height, and the gallery pages are tall.
	navTimeout     = 30 * time.Second
	settleWait     = 3 * time.Second
	scrollPasses   = 3
	scrollStep     = 200
	scrollStepWait = 150 * time.Millisecond
	bottomWait     = time.Second
	carouselWait   = 2 * time.Second

	// Lazy-loading blog listings grow while scrolling; wait this long after
	// each jump to the bottom before re-measuring.
	listingGrowWait = 2 * time.Second
)

// acceptLanguage keeps the legacy site serving the Hebrew variant.
const acceptLanguage = "he-IL,he;q=0.9"

// RenderedPage is the snapshot of a fully settled page: its own DOM plus
// one entry per embedded frame.
type RenderedPage struct {
	HTML   string
	Frames []wix.Frame
}

// Browser wraps a lazily launched rod session.
type Browser struct {
	headless bool
	browser  *rod.Browser
}

// New creates a browser wrapper; Chrome is launched on first use.
func New(headless bool) *Browser {
	return &Browser{headless: headless}
}

func (b *Browser) init() error {
	if b.browser != nil {
		return nil
	}

	err := rod.Try(func() {
		path, _ := launcher.LookPath()
		u := launcher.New().
			Bin(path).
			Headless(b.headless).
			MustLaunch()
		b.browser = rod.New().ControlURL(u).MustConnect()
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	return nil
}

// Close shuts the browser down if it was launched.
func (b *Browser) Close() error {
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}

// Load navigates to url, waits out the client-side rendering, triggers the
// lazy-loaded carousel content by scrolling and cycling, and returns the
// settled snapshot. Navigation failures and timeouts surface as an error
// for this one page; the caller skips and continues the batch.
func (b *Browser) Load(url string) (*RenderedPage, error) {
	if err := b.init(); err != nil {
		return nil, err
	}

	var page *rod.Page
	var html string
	err := rod.Try(func() {
		page = b.browser.MustPage("")
		page.MustSetExtraHeaders("Accept-Language", acceptLanguage)
		page.MustSetViewport(1280, 900, 1, false)

		// The deadline covers navigation only; page itself stays untimed so
		// the scroll and snapshot work below cannot inherit a spent budget.
		nav := page.Timeout(navTimeout)
		nav.MustNavigate(url)
		nav.MustWaitLoad()
		time.Sleep(settleWait)

		b.triggerLazyContent(page)

		html = page.MustHTML()
	})
	if err != nil {
		if page != nil {
			page.Close()
		}
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	defer page.Close()

	return &RenderedPage{
		HTML:   html,
		Frames: b.snapshotFrames(page),
	}, nil
}

// triggerLazyContent scrolls the page in small steps several times and
// clicks through carousel controls so the widget loads every slide, then
// returns to the top and lets the DOM settle.
func (b *Browser) triggerLazyContent(page *rod.Page) {
	for pass := 0; pass < scrollPasses; pass++ {
		height := page.MustEval(`() => document.body.scrollHeight`).Int()
		for y := 0; y < height; y += scrollStep {
			page.MustEval(`y => window.scrollTo(0, y)`, y)
			time.Sleep(scrollStepWait)
		}
		page.MustEval(`() => window.scrollTo(0, document.body.scrollHeight)`)
		time.Sleep(bottomWait)
	}

	page.MustEval(`() => {
		try {
			var btns = document.querySelectorAll('[class*="carousel"] button, [class*="next"], [class*="prev"]');
			for (var i = 0; i < Math.min(30, btns.length); i++) {
				if (btns[i].click) btns[i].click();
			}
		} catch (e) {}
	}`)
	time.Sleep(carouselWait)

	page.MustEval(`() => window.scrollTo(0, 0)`)
	time.Sleep(settleWait)
}

// snapshotFrames serializes every iframe it can reach. Cross-origin and
// detached frames stay in the list as inaccessible entries so the carousel
// resolver's skip path sees them.
func (b *Browser) snapshotFrames(page *rod.Page) []wix.Frame {
	var frames []wix.Frame

	elements, err := page.Elements("iframe")
	if err != nil {
		return frames
	}

	for _, el := range elements {
		frame := &snapshotFrame{}

		framePage, err := el.Frame()
		if err != nil {
			frame.err = err
			frames = append(frames, frame)
			continue
		}
		if info, err := framePage.Info(); err == nil {
			frame.url = info.URL
		}
		html, err := framePage.HTML()
		if err != nil {
			frame.err = err
		} else {
			frame.html = html
		}
		frames = append(frames, frame)
	}
	return frames
}

// LoadScrolled loads a listing page and keeps scrolling to the bottom until
// the document height stops growing, then returns the final DOM. Used for
// blog post discovery on the infinite-scroll listing.
func (b *Browser) LoadScrolled(url string) (string, error) {
	if err := b.init(); err != nil {
		return "", err
	}

	var html string
	err := rod.Try(func() {
		page := b.browser.MustPage("")
		defer page.Close()
		page.MustSetExtraHeaders("Accept-Language", acceptLanguage)
		page.MustSetViewport(1280, 900, 1, false)

		// Bound navigation only; the grow loop below runs as long as the
		// listing keeps loading more posts.
		nav := page.Timeout(navTimeout)
		nav.MustNavigate(url)
		nav.MustWaitLoad()
		time.Sleep(settleWait)

		previous := -1
		height := page.MustEval(`() => document.body.scrollHeight`).Int()
		for previous != height {
			previous = height
			page.MustEval(`() => window.scrollTo(0, document.body.scrollHeight)`)
			time.Sleep(listingGrowWait)
			height = page.MustEval(`() => document.body.scrollHeight`).Int()
		}

		page.MustEval(`() => window.scrollTo(0, 0)`)
		time.Sleep(bottomWait)

		html = page.MustHTML()
	})
	if err != nil {
		return "", fmt.Errorf("failed to load listing %s: %w", url, err)
	}
	return html, nil
}

// snapshotFrame is a wix.Frame over serialized frame HTML.
type snapshotFrame struct {
	url  string
	html string
	err  error
}

func (f *snapshotFrame) URL() string {
	return f.url
}

func (f *snapshotFrame) Document() (*goquery.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.html == "" {
		return nil, errors.New("frame has no content")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.html))
}
