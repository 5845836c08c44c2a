package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Legacy site
	OldSiteURL     string
	BlogListingURL string

	// Storage layout
	DataDir      string
	PostsDir     string
	PagesFile    string
	MappingsFile string
	PublicDir    string
	ImagesDir    string
	FilesDir     string

	// Server
	Port          int
	AdminPassword string
	TokenSecret   string

	// RSS feed
	FeedTitle       string
	FeedDescription string
	FeedLink        string
	FeedAuthor      string

	// Scraper
	ScraperHeadless bool
}

// Load reads configuration from the environment, with a .env file applied
// first when present. Values every command needs have defaults; the server
// validates its required credentials itself.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "data")
	publicDir := getEnv("PUBLIC_DIR", "public")

	cfg := &Config{
		OldSiteURL:      getEnv("OLD_SITE_URL", "https://www.bialystokvicinityexpatsisrael.org.il"),
		BlogListingURL:  getEnv("BLOG_LISTING_URL", ""),
		DataDir:         dataDir,
		PostsDir:        filepath.Join(dataDir, "posts"),
		PagesFile:       filepath.Join(dataDir, "pages.json"),
		MappingsFile:    getEnv("MAPPINGS_FILE", filepath.Join(dataDir, "page-mappings.json")),
		PublicDir:       publicDir,
		ImagesDir:       filepath.Join(publicDir, "images", "migrated"),
		FilesDir:        filepath.Join(publicDir, "files", "migrated"),
		Port:            getEnvAsInt("PORT", 8080),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		TokenSecret:     getEnv("TOKEN_SECRET", ""),
		FeedTitle:       getEnv("FEED_TITLE", "Bialystok Vicinity Expats in Israel"),
		FeedDescription: getEnv("FEED_DESCRIPTION", "News and events from the Bialystok heritage organization"),
		FeedLink:        getEnv("FEED_LINK", "http://localhost:8080"),
		FeedAuthor:      getEnv("FEED_AUTHOR", "Bialystok Vicinity Expats"),
		ScraperHeadless: getEnvAsBool("SCRAPER_HEADLESS", true),
	}

	return cfg, nil
}

// ValidateServer checks the fields only the content server requires.
func (c *Config) ValidateServer() error {
	if c.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
