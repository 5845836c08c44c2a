// Command server runs the content API the site frontend and admin editor
// talk to.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/omer72/bialystok-site/internal/config"
	"github.com/omer72/bialystok-site/internal/content"
	"github.com/omer72/bialystok-site/internal/server"
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
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := content.NewStore(cfg.PostsDir)
	if err != nil {
		return fmt.Errorf("failed to open content store: %w", err)
	}
	log.Printf("Serving records from %s", store.Dir())

	srv := server.New(store, cfg)
	log.Println("Initialized server")

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down gracefully...")
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server starting on http://localhost%s", addr)
	return srv.Start(addr)
}
