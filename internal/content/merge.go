package content

import (
	"time"

	"github.com/omer72/bialystok-site/internal/wix"
)

// Merge combines a fresh scrape with whatever was previously persisted for
// the same id. Merging is field-level additive: a field is only overwritten
// when the scrape produced a non-empty value for it, so re-running the
// pipeline never destroys manually curated data. Pass existing == nil for a
// first-time scrape.
func Merge(existing *Record, scraped *wix.ScrapedPage, localImages []string, id string) *Record {
	rec := existing
	if rec == nil {
		rec = &Record{}
	}

	if rec.ID == "" {
		rec.ID = id
	}
	if rec.Slug == "" {
		rec.Slug = id
	}

	if scraped.Title != "" {
		rec.Title = LocalizedText{He: scraped.Title, En: rec.Title.En}
	}
	if rec.Category == "" {
		rec.Category = CategoryContent
	}
	if rec.Date == "" {
		rec.Date = time.Now().Format("2006-01-02")
	}
	if rec.Author == "" {
		rec.Author = "migrated"
	}
	if scraped.ContentHTML != "" {
		rec.Content = LocalizedText{He: scraped.ContentHTML, En: rec.Content.En}
	}
	if rec.Excerpt.He == "" && rec.Excerpt.En == "" {
		rec.Excerpt = LocalizedText{He: scraped.Title}
	}
	if len(localImages) > 0 {
		rec.Images = localImages
	}
	if len(scraped.Videos) > 0 {
		rec.Videos = scraped.Videos
	}
	if rec.ImageDisplayMode == "" {
		rec.ImageDisplayMode = DisplayModeFor(len(rec.Images))
	}
	return rec
}

// NewFromMapping seeds a record with the static mapping fields before the
// scrape result is merged in. Category and parent grouping come from the
// mapping, never from the page.
func NewFromMapping(m wix.PageMapping) *Record {
	return &Record{
		ID:         m.TargetID,
		Slug:       m.TargetID,
		Category:   Category(m.Category),
		ParentPage: m.ParentID,
	}
}
