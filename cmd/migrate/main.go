// Command migrate runs the full batch migration: every page in the mapping
// file is scraped from the legacy site, its assets downloaded, and the
// merged record written to the content store.
package main

import (
	"fmt"
	"log"

	"github.com/omer72/bialystok-site/internal/browser"
	"github.com/omer72/bialystok-site/internal/config"
	"github.com/omer72/bialystok-site/internal/content"
	"github.com/omer72/bialystok-site/internal/migrate"
	"github.com/omer72/bialystok-site/internal/wix"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The mapping file is the batch input; without it there is nothing to do.
	mappings, err := migrate.LoadMappings(cfg.MappingsFile)
	if err != nil {
		return err
	}

	store, err := content.NewStore(cfg.PostsDir)
	if err != nil {
		return fmt.Errorf("failed to open content store: %w", err)
	}

	b := browser.New(cfg.ScraperHeadless)
	defer b.Close()

	pipeline := migrate.New(b, store, cfg)

	// Blog posts are discovered from the listing page rather than listed
	// statically; they join the batch as survivor-story mappings.
	if cfg.BlogListingURL != "" {
		posts, err := migrate.DiscoverBlogPosts(b, cfg.BlogListingURL, cfg.OldSiteURL)
		if err != nil {
			log.Printf("Blog discovery failed, continuing with static mappings: %v", err)
		}
		for _, post := range posts {
			mappings = append(mappings, wix.PageMapping{
				SourceURL: post.URL,
				TargetID:  post.ID,
				Category:  string(content.CategorySurvivors),
				ParentID:  "survivor-stories",
			})
		}
	}

	report := pipeline.Run(mappings)
	return pipeline.WriteReport(report)
}
