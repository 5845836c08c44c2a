package fetch

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "image bytes")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "nested", "dir", "asset-1.jpg")
	if err := New().Download(srv.URL+"/photo.jpg", dest); err != nil {
		t.Fatalf("Download: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("got %q", data)
	}
}

func TestDownloadFollowsRedirectChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/start":
			// Relative Location, resolved against the request URL.
			w.Header().Set("Location", "/hop")
			w.WriteHeader(http.StatusMovedPermanently)
		case "/hop":
			w.Header().Set("Location", "/final")
			w.WriteHeader(http.StatusFound)
		case "/final":
			fmt.Fprint(w, "redirected bytes")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "asset-1.jpg")
	if err := New().Download(srv.URL+"/start", dest); err != nil {
		t.Fatalf("Download: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "redirected bytes" {
		t.Errorf("got %q, want the redirect target body", data)
	}
}

func TestDownloadNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "asset-1.jpg")
	if err := New().Download(srv.URL+"/missing.jpg", dest); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("file was created for a failed download")
	}
}

func TestDownloadRemovesPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Promise more bytes than we send, so the client's copy fails
		// mid-body with an unexpected EOF.
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "partial")
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "asset-1.jpg")
	if err := New().Download(srv.URL+"/broken.jpg", dest); err == nil {
		t.Fatal("expected an error for a truncated body")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("partial file left on disk after a failed download")
	}
}

func TestExtensionFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://static.wixstatic.com/media/5eeb4e_a~mv2.png", ".png"},
		{"https://static.wixstatic.com/media/5eeb4e_a~mv2.jpg/v1/fill/w_800,h_600/5eeb4e_a~mv2.webp", ".webp"},
		{"https://static.wixstatic.com/media/noext", ".jpg"},
		{"https://example.com/doc.pdf?token=abc", ".pdf"},
	}
	for _, tt := range tests {
		if got := ExtensionFromURL(tt.url); got != tt.want {
			t.Errorf("ExtensionFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestAssetName(t *testing.T) {
	got := AssetName("memorial-82", 3, "https://static.wixstatic.com/media/photo.png")
	if got != "memorial-82-3.png" {
		t.Errorf("AssetName = %q", got)
	}
}
