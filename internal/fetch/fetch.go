// Package fetch downloads remote assets to local storage during migration.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// DefaultExt is used when the URL carries no recognizable extension; the
// legacy CDN serves images without one on some rendition URLs.
const DefaultExt = ".jpg"

// Fetcher streams remote files to disk. Redirects are followed by
// restarting the download against the target, matching the behavior of the
// original migration tooling (no cycle guard; a redirect loop would recurse
// until the transport gives up).
type Fetcher struct {
	client *http.Client
}

// New returns a fetcher with a 30 second per-request timeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Download fetches remoteURL into dest, creating parent directories on
// demand. On any failure the partially written file is removed so a retry
// or fallback never sees a truncated asset.
func (f *Fetcher) Download(remoteURL, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	resp, err := f.client.Get(remoteURL)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", remoteURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound {
		location := resp.Header.Get("Location")
		if location != "" {
			if ref, err := resp.Request.URL.Parse(location); err == nil {
				location = ref.String()
			}
			return f.Download(location, dest)
		}
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, remoteURL)
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return file.Close()
}

// ExtensionFromURL derives a file extension from the URL's path component,
// falling back to the generic image extension when absent or unparsable.
func ExtensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultExt
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		return DefaultExt
	}
	return ext
}

// AssetName builds the stable local filename for the n-th asset of a
// record: {recordId}-{n}{ext}. Sequence indexes start at 1.
func AssetName(recordID string, seq int, remoteURL string) string {
	return fmt.Sprintf("%s-%d%s", recordID, seq, ExtensionFromURL(remoteURL))
}
