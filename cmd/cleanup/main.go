// Command cleanup runs the idempotent post-processing pass over every
// persisted record: markup noise stripped, titles and excerpts repaired,
// decorative images re-filtered.
package main

import (
	"fmt"
	"log"

	"github.com/omer72/bialystok-site/internal/cleanup"
	"github.com/omer72/bialystok-site/internal/config"
	"github.com/omer72/bialystok-site/internal/content"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := content.NewStore(cfg.PostsDir)
	if err != nil {
		return fmt.Errorf("failed to open content store: %w", err)
	}

	ids, err := store.IDs()
	if err != nil {
		return err
	}

	cleaned := 0
	for _, id := range ids {
		rec, err := store.Get(id)
		if err != nil {
			log.Printf("Error reading %s: %v", id, err)
			continue
		}
		if rec == nil {
			continue
		}

		cleanup.Clean(rec)

		if err := store.Put(rec); err != nil {
			log.Printf("Error writing %s: %v", id, err)
			continue
		}
		cleaned++

		log.Printf("%s | title %q | text %d chars | imgs %d",
			id, rec.Title.He, cleanup.StrippedTextLen(rec.Content.He), len(rec.Images))
	}

	log.Printf("Cleaned %d records", cleaned)
	return nil
}
