// Package migrate orchestrates the batch migration: one page at a time
// through browser rendering, extraction, asset download and record merge.
package migrate

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/omer72/bialystok-site/internal/browser"
	"github.com/omer72/bialystok-site/internal/config"
	"github.com/omer72/bialystok-site/internal/content"
	"github.com/omer72/bialystok-site/internal/fetch"
	"github.com/omer72/bialystok-site/internal/wix"
)

// Delay between successive page loads, to avoid hammering the legacy site.
const politenessDelay = time.Second

// Pipeline wires the migration stages together. Pages are processed
// strictly sequentially; the browser session is shared state scoped to one
// visit at a time.
type Pipeline struct {
	browser *browser.Browser
	store   *content.Store
	fetcher *fetch.Fetcher
	cfg     *config.Config
}

// New creates a pipeline over an existing browser and record store.
func New(b *browser.Browser, store *content.Store, cfg *config.Config) *Pipeline {
	return &Pipeline{
		browser: b,
		store:   store,
		fetcher: fetch.New(),
		cfg:     cfg,
	}
}

// PageReport is the per-page entry of the migration report.
type PageReport struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	ContentLength int    `json:"contentLength"`
	ImageCount    int    `json:"imageCount"`
	VideoCount    int    `json:"videoCount"`
}

// Report summarizes one batch run, persisted as migration-report.json.
type Report struct {
	Timestamp  string       `json:"timestamp"`
	Source     string       `json:"source"`
	TotalPages int          `json:"totalPages"`
	Success    int          `json:"success"`
	Failed     int          `json:"failed"`
	Pages      []PageReport `json:"pages"`
}

// Run drives every mapping through the pipeline. Per-page failures are
// logged and skipped; the batch always completes and reports its counts.
func (p *Pipeline) Run(mappings []wix.PageMapping) *Report {
	report := &Report{
		Timestamp:  time.Now().Format(time.RFC3339),
		Source:     p.cfg.OldSiteURL,
		TotalPages: len(mappings),
	}

	log.Printf("Starting migration of %d pages from %s", len(mappings), p.cfg.OldSiteURL)

	for i, m := range mappings {
		log.Printf("Scraping %d/%d: %s -> %s", i+1, len(mappings), m.SourceURL, m.TargetID)

		page, err := p.ScrapeOne(m)
		if err != nil {
			log.Printf("Error scraping %s: %v", m.TargetID, err)
			report.Failed++
		} else {
			report.Success++
			report.Pages = append(report.Pages, *page)
		}

		time.Sleep(politenessDelay)
	}

	log.Printf("Migration summary: %d succeeded, %d failed", report.Success, report.Failed)
	return report
}

// ScrapeOne runs the full pipeline for a single mapping: render, extract,
// resolve carousels, download assets, merge and persist.
func (p *Pipeline) ScrapeOne(m wix.PageMapping) (*PageReport, error) {
	fullURL := m.SourceURL
	if !strings.HasPrefix(fullURL, "http") {
		fullURL = p.cfg.OldSiteURL + fullURL
	}
	shape := wix.ShapeForURL(fullURL)

	rendered, err := p.browser.Load(fullURL)
	if err != nil {
		return nil, err
	}

	scraped, err := wix.Extract(rendered.HTML, shape)
	if err != nil {
		return nil, err
	}
	if scraped.Title == "" && scraped.ContentHTML == "" {
		return nil, fmt.Errorf("no content found on %s", fullURL)
	}

	// The gallery widget renders inside an iframe and lazy-loads as it
	// cycles; frame-resolved images replace the top-level thumbnails.
	if shape != wix.ShapeBlog {
		if carousel := wix.ResolveCarousel(rendered.Frames); len(carousel) > 0 {
			log.Printf("Using %d unique carousel images from frames for %s", len(carousel), m.TargetID)
			scraped.Images = carousel
		}
	}

	localImages := p.downloadImages(m.TargetID, scraped.Images)

	for _, f := range scraped.Files {
		log.Printf("Found attachment %q%s on %s; download it manually into %s",
			f.Name, f.Ext, m.TargetID, filepath.Join(p.cfg.FilesDir, m.TargetID))
	}

	existing, err := p.store.Get(m.TargetID)
	if err != nil {
		return nil, err
	}
	if existing == nil && m.Category != "" {
		existing = content.NewFromMapping(m)
	}

	rec := content.Merge(existing, scraped, localImages, m.TargetID)
	if err := p.store.Put(rec); err != nil {
		return nil, err
	}
	log.Printf("Saved %s: title=%q content=%d chars images=%d videos=%d",
		rec.ID, rec.Title.He, len(rec.Content.He), len(rec.Images), len(rec.Videos))

	return &PageReport{
		ID:            rec.ID,
		Title:         rec.Title.He,
		Category:      string(rec.Category),
		ContentLength: len(scraped.ContentHTML),
		ImageCount:    len(rec.Images),
		VideoCount:    len(rec.Videos),
	}, nil
}

// downloadImages fetches each image sequentially. A failed download keeps
// the remote URL in place of a local path, so a broken network degrades to
// hot-linking rather than a missing image.
func (p *Pipeline) downloadImages(recordID string, urls []string) []string {
	local := make([]string, 0, len(urls))
	for i, imgURL := range urls {
		name := fetch.AssetName(recordID, i+1, imgURL)
		dest := filepath.Join(p.cfg.ImagesDir, recordID, name)

		if err := p.fetcher.Download(imgURL, dest); err != nil {
			log.Printf("Failed to download image %d/%d for %s: %v", i+1, len(urls), recordID, err)
			local = append(local, imgURL)
			continue
		}
		local = append(local, "/images/migrated/"+recordID+"/"+name)
	}
	return local
}

// WriteReport persists the batch report next to the record store.
func (p *Pipeline) WriteReport(report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode migration report: %w", err)
	}
	path := filepath.Join(p.cfg.DataDir, "migration-report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write migration report: %w", err)
	}
	log.Printf("Report saved: %s", path)
	return nil
}

// LoadMappings reads the static page-mapping list that drives a batch run.
// A missing file is an unrecoverable setup error.
func LoadMappings(path string) ([]wix.PageMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file %s: %w", path, err)
	}
	var mappings []wix.PageMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("failed to parse mappings file %s: %w", path, err)
	}
	return mappings, nil
}
