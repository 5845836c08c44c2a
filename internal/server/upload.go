package server

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	maxImageUpload = 10 << 20  // 10MB
	maxFileUpload  = 100 << 20 // 100MB, scanned memorial books are large
)

var allowedFileTypes = map[string]bool{
	"application/pdf": true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/ogg":       true,
}

// handleUploadImage stores an editor-uploaded image under a collision-free
// generated name and returns its served path.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	if contentType := header.Header.Get("Content-Type"); len(contentType) < 6 || contentType[:6] != "image/" {
		s.writeError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	dir := filepath.Join(s.config.PublicDir, "images", "posts")
	name := fmt.Sprintf("%d-%d.png", time.Now().UnixMilli(), rand.Intn(1e9))

	if err := saveUpload(file, dir, name); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save image: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"path": "/images/posts/" + name})
}

// handleUploadFile stores a post attachment (PDF or video) under the
// record's file directory, keeping the original filename so existing links
// in the content HTML stay valid.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileUpload)

	postSlug := r.URL.Query().Get("postSlug")
	if postSlug == "" {
		s.writeError(w, http.StatusBadRequest, "Post slug is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	if !allowedFileTypes[header.Header.Get("Content-Type")] {
		s.writeError(w, http.StatusBadRequest, "Only PDF and video files are allowed")
		return
	}

	name := filepath.Base(header.Filename)
	dir := filepath.Join(s.config.FilesDir, postSlug)

	if err := saveUpload(file, dir, name); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save file: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"path": "/files/migrated/" + postSlug + "/" + name})
}

func saveUpload(src io.Reader, dir, name string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
