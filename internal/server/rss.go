package server

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/omer72/bialystok-site/internal/config"
	"github.com/omer72/bialystok-site/internal/content"
)

var feedTagRe = regexp.MustCompile(`<[^>]+>`)

// handleRSS serves the events and news records as an RSS feed.
func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	var records []*content.Record
	for _, category := range []content.Category{content.CategoryEvents, content.CategoryNews} {
		batch, err := s.store.ListByCategory(category)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch posts: %v", err))
			return
		}
		records = append(records, batch...)
	}

	rss, err := GenerateRSSFeed(records, s.config)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate feed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}

// GenerateRSSFeed creates an RSS feed from records
func GenerateRSSFeed(records []*content.Record, cfg *config.Config) (string, error) {
	now := time.Now()

	feed := &feeds.Feed{
		Title:       cfg.FeedTitle,
		Link:        &feeds.Link{Href: cfg.FeedLink},
		Description: cfg.FeedDescription,
		Author:      &feeds.Author{Name: cfg.FeedAuthor},
		Created:     now,
	}

	feed.Items = make([]*feeds.Item, 0, len(records))
	for _, rec := range records {
		item := &feeds.Item{
			Title: recordTitle(rec),
			Link:  &feeds.Link{Href: cfg.FeedLink + "/post/" + rec.Slug},
			Id:    fmt.Sprintf("%s/post/%s", cfg.FeedLink, rec.ID),
		}

		// Prefer the excerpt; fall back to truncated plain text of the body.
		if rec.Excerpt.He != "" {
			item.Description = rec.Excerpt.He
		} else {
			text := strings.TrimSpace(feedTagRe.ReplaceAllString(rec.Content.He, ""))
			if len([]rune(text)) > 500 {
				text = string([]rune(text)[:500]) + "..."
			}
			item.Description = text
		}

		if rec.Author != "" {
			item.Author = &feeds.Author{Name: rec.Author}
		}

		if published, err := time.Parse("2006-01-02", rec.Date); err == nil {
			item.Created = published
		} else {
			item.Created = now
		}

		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to generate RSS: %w", err)
	}

	return rss, nil
}

func recordTitle(rec *content.Record) string {
	if rec.Title.He != "" {
		return rec.Title.He
	}
	if rec.Title.En != "" {
		return rec.Title.En
	}
	return rec.ID
}
