package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omer72/bialystok-site/internal/config"
	"github.com/omer72/bialystok-site/internal/content"
)

func newTestServer(t *testing.T) (*Server, *content.Store) {
	t.Helper()

	dataDir := t.TempDir()
	store, err := content.NewStore(filepath.Join(dataDir, "posts"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	cfg := &config.Config{
		DataDir:       dataDir,
		PagesFile:     filepath.Join(dataDir, "pages.json"),
		PublicDir:     filepath.Join(dataDir, "public"),
		AdminPassword: "letmein",
		TokenSecret:   "test-secret",
		FeedTitle:     "עמותת יוצאי ביאליסטוק",
		FeedLink:      "https://example.org",
	}
	return New(store, cfg), store
}

func doRequest(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, srv *Server) string {
	t.Helper()

	rr := doRequest(t, srv, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "letmein"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rr.Code, rr.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp["token"] == "" {
		t.Fatal("login returned an empty token")
	}
	return resp["token"]
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "guess"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestPostListAndDetail(t *testing.T) {
	srv, store := newTestServer(t)

	records := []*content.Record{
		{ID: "memorial-82", Slug: "memorial-82", Category: content.CategoryEvents, Date: "2025-08-21", Title: content.LocalizedText{He: "טכס אזכרה"}},
		{ID: "tenenbaum", Slug: "tenenbaum", Category: content.CategoryPeople, Date: "2024-01-01"},
	}
	for _, rec := range records {
		if err := store.Put(rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	rr := doRequest(t, srv, http.MethodGet, "/api/posts?category=events", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var listed []*content.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "memorial-82" {
		t.Errorf("filtered list = %+v", listed)
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/posts/memorial-82", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("detail status = %d", rr.Code)
	}
	var rec content.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if rec.Title.He != "טכס אזכרה" {
		t.Errorf("detail title = %q", rec.Title.He)
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/posts/absent", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing post status = %d, want 404", rr.Code)
	}
}

func TestWriteRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/api/posts", "", &content.Record{ID: "x"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodPost, "/api/posts", "not-a-jwt", &content.Record{ID: "x"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", rr.Code)
	}
}

func TestPostCreateUpdateDelete(t *testing.T) {
	srv, store := newTestServer(t)
	token := login(t, srv)

	create := &content.Record{
		ID:     "new-page",
		Title:  content.LocalizedText{He: "עמוד חדש"},
		Images: []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"},
	}
	rr := doRequest(t, srv, http.MethodPost, "/api/posts", token, create)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body)
	}

	saved, err := store.Get("new-page")
	if err != nil || saved == nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if saved.Slug != "new-page" {
		t.Errorf("slug not defaulted: %q", saved.Slug)
	}
	if saved.ImageDisplayMode != content.DisplayCarousel {
		t.Errorf("display mode = %q, want carousel for 4 images", saved.ImageDisplayMode)
	}

	update := &content.Record{Title: content.LocalizedText{He: "עמוד מעודכן"}}
	rr = doRequest(t, srv, http.MethodPut, "/api/posts/new-page", token, update)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rr.Code, rr.Body)
	}
	saved, _ = store.Get("new-page")
	if saved.Title.He != "עמוד מעודכן" || saved.ID != "new-page" {
		t.Errorf("updated record = %+v", saved)
	}

	rr = doRequest(t, srv, http.MethodPut, "/api/posts/absent", token, update)
	if rr.Code != http.StatusNotFound {
		t.Errorf("update of missing post: status = %d, want 404", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodDelete, "/api/posts/new-page", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if store.Exists("new-page") {
		t.Error("record still exists after delete")
	}

	rr = doRequest(t, srv, http.MethodDelete, "/api/posts/new-page", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestPostCreateRejectsMissingID(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)

	rr := doRequest(t, srv, http.MethodPost, "/api/posts", token, &content.Record{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestPagesPassthrough(t *testing.T) {
	srv, _ := newTestServer(t)

	pages := `[{"id":"about","children":["goals"]}]`
	if err := os.WriteFile(srv.config.PagesFile, []byte(pages), 0644); err != nil {
		t.Fatalf("write pages file: %v", err)
	}

	rr := doRequest(t, srv, http.MethodGet, "/api/pages", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Body.String() != pages {
		t.Errorf("pages body = %q, want verbatim file content", rr.Body.String())
	}
}

func TestRSSFeed(t *testing.T) {
	srv, store := newTestServer(t)

	err := store.Put(&content.Record{
		ID:       "memorial-82",
		Slug:     "memorial-82",
		Category: content.CategoryEvents,
		Date:     "2025-08-21",
		Title:    content.LocalizedText{He: "טכס אזכרה ה-82"},
		Excerpt:  content.LocalizedText{He: "טכס האזכרה השנתי ביהוד"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	rr := doRequest(t, srv, http.MethodGet, "/rss.xml", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<rss") {
		t.Errorf("not an RSS document: %q", body)
	}
	if !strings.Contains(body, "טכס אזכרה ה-82") {
		t.Errorf("feed missing item title: %q", body)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Errorf("health = %d %q", rr.Code, rr.Body.String())
	}
}
