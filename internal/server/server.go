package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/omer72/bialystok-site/internal/config"
	"github.com/omer72/bialystok-site/internal/content"
)

// Server is the content API consumed by the site frontend and the admin
// editor: records by id/slug and category for reads, admin-gated writes.
type Server struct {
	router *chi.Mux
	store  *content.Store
	config *config.Config
}

// New creates a new server instance
func New(store *content.Store, cfg *config.Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  store,
		config: cfg,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(60 * time.Second))

	// Public reads
	s.router.Post("/api/admin/login", s.handleLogin)
	s.router.Get("/api/pages", s.handlePages)
	s.router.Get("/api/posts", s.handlePostList)
	s.router.Get("/api/posts/{id}", s.handlePostDetail)
	s.router.Get("/rss.xml", s.handleRSS)

	// Admin writes
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/api/posts", s.handlePostCreate)
		r.Put("/api/posts/{id}", s.handlePostUpdate)
		r.Delete("/api/posts/{id}", s.handlePostDelete)
		r.Post("/api/upload/image", s.handleUploadImage)
		r.Post("/api/upload/file", s.handleUploadFile)
	})

	// Migrated assets
	s.serveStatic("/images", filepath.Join(s.config.PublicDir, "images"))
	s.serveStatic("/files", filepath.Join(s.config.PublicDir, "files"))

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (s *Server) serveStatic(prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	s.router.Get(prefix+"/*", func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	})
}

// Router returns the Chi router
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// handlePages serves the navigation tree as-is; its shape belongs to the
// frontend, the server only stores it.
func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.config.PagesFile)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to read pages")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handlePostList lists records, optionally filtered by category, newest
// first.
func (s *Server) handlePostList(w http.ResponseWriter, r *http.Request) {
	category := content.Category(r.URL.Query().Get("category"))

	records, err := s.store.ListByCategory(category)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list posts: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

// handlePostDetail fetches one record by id, falling back to slug lookup.
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.GetBySlug(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read post: %v", err))
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	var rec content.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid post body")
		return
	}
	if rec.ID == "" {
		s.writeError(w, http.StatusBadRequest, "Post id is required")
		return
	}
	if rec.Slug == "" {
		rec.Slug = rec.ID
	}
	if rec.ImageDisplayMode == "" {
		rec.ImageDisplayMode = content.DisplayModeFor(len(rec.Images))
	}

	if err := s.store.Put(&rec); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save post: %v", err))
		return
	}
	s.writeJSON(w, http.StatusCreated, &rec)
}

func (s *Server) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !s.store.Exists(id) {
		s.writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	var rec content.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid post body")
		return
	}
	rec.ID = id
	if rec.Slug == "" {
		rec.Slug = id
	}

	if err := s.store.Put(&rec); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save post: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, &rec)
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !s.store.Exists(id) {
		s.writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err := s.store.Delete(id); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete post: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
