package wix

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

type fixtureFrame struct {
	url  string
	html string
	err  error
}

func (f *fixtureFrame) URL() string { return f.url }

func (f *fixtureFrame) Document() (*goquery.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.html))
}

func TestBaseMediaID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{
			url:  "https://static.wixstatic.com/media/5eeb4e_abc123~mv2.jpg/v1/fill/w_300,h_300,al_c/5eeb4e_abc123~mv2.jpg",
			want: "5eeb4e_abc123",
		},
		{
			url:  "https://static.wixstatic.com/media/5eeb4e_abc123~mv2.jpg",
			want: "5eeb4e_abc123",
		},
		{
			// Outside the CDN grammar the URL is its own identity.
			url:  "https://example.com/photo.jpg",
			want: "https://example.com/photo.jpg",
		},
	}
	for _, tt := range tests {
		if got := BaseMediaID(tt.url); got != tt.want {
			t.Errorf("BaseMediaID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestRewriteToFullSize(t *testing.T) {
	in := "https://static.wixstatic.com/media/5eeb4e_abc~mv2.jpg/v1/fill/w_300,h_300,al_c,q_80/5eeb4e_abc~mv2.jpg"
	want := "https://static.wixstatic.com/media/5eeb4e_abc~mv2.jpg/v1/fill/w_1920,h_1200,al_c,q_85,usm_0.66_1.00_0.01,enc_avif,quality_auto/5eeb4e_abc~mv2.jpg"
	if got := RewriteToFullSize(in); got != want {
		t.Errorf("RewriteToFullSize = %q, want %q", got, want)
	}

	// URLs without a fill segment pass through unchanged.
	plain := "https://static.wixstatic.com/media/5eeb4e_abc~mv2.jpg"
	if got := RewriteToFullSize(plain); got != plain {
		t.Errorf("RewriteToFullSize(%q) = %q, want unchanged", plain, got)
	}
}

func TestResolveCarouselCollapsesSizeVariants(t *testing.T) {
	frame := &fixtureFrame{
		url: "https://www.legacy-site.example/gallery-frame",
		html: `<div class="cycle-carousel-wrap">
			<div class="item" data-thumb="https://static.wixstatic.com/media/5eeb4e_first~mv2.jpg/v1/fill/w_300,h_300,al_c/5eeb4e_first~mv2.jpg"></div>
			<div class="item" data-thumb="https://static.wixstatic.com/media/5eeb4e_first~mv2.jpg/v1/fill/w_150,h_150,al_c/5eeb4e_first~mv2.jpg"></div>
			<div class="item" data-thumb="https://static.wixstatic.com/media/5eeb4e_second~mv2.jpg/v1/fill/w_300,h_300,al_c/5eeb4e_second~mv2.jpg"></div>
		</div>`,
	}

	images := ResolveCarousel([]Frame{frame})
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2: %v", len(images), images)
	}

	// First-seen order is preserved and every survivor is upgraded.
	if !strings.Contains(images[0], "5eeb4e_first") {
		t.Errorf("first image should be the first-seen asset, got %q", images[0])
	}
	if !strings.Contains(images[1], "5eeb4e_second") {
		t.Errorf("second image should be the second asset, got %q", images[1])
	}
	for _, img := range images {
		if !strings.Contains(img, "w_1920,h_1200") {
			t.Errorf("expected full-size rendition, got %q", img)
		}
	}
}

func TestResolveCarouselSkipsInaccessibleFrames(t *testing.T) {
	blocked := &fixtureFrame{
		url: "https://other-origin.example/embed",
		err: errors.New("frame is cross-origin"),
	}
	frame := &fixtureFrame{
		html: `<div class="cycle-carousel-wrap">
			<div class="filler" style='background-image: url("https://static.wixstatic.com/media/5eeb4e_bg~mv2.jpg/v1/fill/w_200,h_200,al_c/5eeb4e_bg~mv2.jpg")'></div>
		</div>`,
	}

	images := ResolveCarousel([]Frame{blocked, frame})
	if len(images) != 1 {
		t.Fatalf("got %d images, want 1: %v", len(images), images)
	}
	if !strings.Contains(images[0], "5eeb4e_bg") {
		t.Errorf("unexpected image %q", images[0])
	}
}

func TestResolveCarouselNoFrames(t *testing.T) {
	if images := ResolveCarousel(nil); len(images) != 0 {
		t.Fatalf("expected no images, got %v", images)
	}
}
