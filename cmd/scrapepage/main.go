// Command scrapepage scrapes a single legacy page into one content record.
//
// Usage: scrapepage <url> <record-id>
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/omer72/bialystok-site/internal/browser"
	"github.com/omer72/bialystok-site/internal/config"
	"github.com/omer72/bialystok-site/internal/content"
	"github.com/omer72/bialystok-site/internal/migrate"
	"github.com/omer72/bialystok-site/internal/wix"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: scrapepage <url> <record-id>")
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2]); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run(url, id string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := content.NewStore(cfg.PostsDir)
	if err != nil {
		return fmt.Errorf("failed to open content store: %w", err)
	}

	b := browser.New(cfg.ScraperHeadless)
	defer b.Close()

	pipeline := migrate.New(b, store, cfg)

	page, err := pipeline.ScrapeOne(wix.PageMapping{SourceURL: url, TargetID: id})
	if err != nil {
		return err
	}

	log.Printf("Done: %s | title %q | %d chars | %d images | %d videos",
		page.ID, page.Title, page.ContentLength, page.ImageCount, page.VideoCount)
	return nil
}
