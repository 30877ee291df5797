package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/catalog"
	"github.com/shelfwise/shelfwise/internal/dirset"
	"github.com/shelfwise/shelfwise/internal/kindle"
)

type fakeDeliverer struct {
	validation kindle.Validation
	result     kindle.Result
	lastPath   string
	lastSubj   string
}

func (f *fakeDeliverer) Validate(path string) kindle.Validation {
	f.lastPath = path
	return f.validation
}

func (f *fakeDeliverer) Deliver(ctx context.Context, path, subject string) kindle.Result {
	f.lastPath = path
	f.lastSubj = subject
	return f.result
}

func testServer(t *testing.T, books []catalog.FileRecord, sender *fakeDeliverer) (*Server, *dirset.Set) {
	t.Helper()
	booksDir := t.TempDir()
	store := catalog.NewStore(catalog.StoreOptions{
		Path:        filepath.Join(t.TempDir(), "catalog.json"),
		RefreshHour: 3,
		Scan:        func(dirs []string) []catalog.FileRecord { return books },
		DefaultDirs: func() []string { return []string{booksDir} },
		Now:         func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.Local) },
	})
	dirs := dirset.New(func() []string { return []string{booksDir} })
	return New(Config{Addr: ":0", SearchMode: "fuzzy", Threshold: 60}, store, dirs, sender), dirs
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	return rec, decoded
}

func libraryBooks() []catalog.FileRecord {
	return []catalog.FileRecord{
		{Filename: "Dune.epub", FullPath: "/lib/Dune.epub", Directory: "/lib", Extension: ".epub", SizeMB: 2},
		{Filename: "Dune Messiah.mobi", FullPath: "/lib/Dune Messiah.mobi", Directory: "/lib", Extension: ".mobi", SizeMB: 1.5},
	}
}

func TestHandleHealthz(t *testing.T) {
	s, _ := testServer(t, libraryBooks(), &fakeDeliverer{})

	rec, body := doJSON(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "healthy", body["status"])
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHandleSearch_EmptyQueryReturnsEverything(t *testing.T) {
	s, _ := testServer(t, libraryBooks(), &fakeDeliverer{})

	rec, body := doJSON(t, s, http.MethodPost, "/search", map[string]any{"query": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])

	results := body["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	require.Equal(t, "Dune.epub", first["filename"])
	require.Equal(t, float64(100), first["score"])

	stats := body["stats"].(map[string]any)
	require.Equal(t, float64(2), stats["total_books"])
	require.Equal(t, float64(2), stats["results_count"])
	require.Equal(t, 3.5, stats["total_size_mb"])
}

func TestHandleSearch_QueryFilters(t *testing.T) {
	s, _ := testServer(t, libraryBooks(), &fakeDeliverer{})

	rec, body := doJSON(t, s, http.MethodPost, "/search", map[string]any{"query": "messiah"})
	require.Equal(t, http.StatusOK, rec.Code)

	results := body["results"].([]any)
	require.NotEmpty(t, results)
	first := results[0].(map[string]any)
	require.Equal(t, "Dune Messiah.mobi", first["filename"])
}

func TestHandleSearch_NoValidDirectories(t *testing.T) {
	s, dirs := testServer(t, libraryBooks(), &fakeDeliverer{})
	dirs.Clear()

	rec, body := doJSON(t, s, http.MethodPost, "/search", map[string]any{"query": "dune"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "No valid search directories configured", body["message"])
}

func TestHandleSearch_EmptyCatalog(t *testing.T) {
	s, _ := testServer(t, nil, &fakeDeliverer{})

	rec, body := doJSON(t, s, http.MethodPost, "/search", map[string]any{"query": "dune"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "No ebook files found in the specified directories", body["message"])
}

func TestDirectoryEndpoints(t *testing.T) {
	s, dirs := testServer(t, libraryBooks(), &fakeDeliverer{})
	extra := t.TempDir()

	rec, body := doJSON(t, s, http.MethodPost, "/directories/add", map[string]any{"directory": extra})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, 2, dirs.Len())

	rec, _ = doJSON(t, s, http.MethodPost, "/directories/add", map[string]any{"directory": extra})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = doJSON(t, s, http.MethodPost, "/directories/add", map[string]any{"directory": "/no/such/dir"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = doJSON(t, s, http.MethodGet, "/directories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["valid_dirs"].([]any), 2)
	require.Empty(t, body["invalid_dirs"])

	rec, _ = doJSON(t, s, http.MethodPost, "/directories/remove", map[string]any{"directory": extra})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, dirs.Len())

	rec, _ = doJSON(t, s, http.MethodPost, "/directories/remove", map[string]any{"directory": extra})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, s, http.MethodPost, "/directories/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, dirs.Len())

	rec, _ = doJSON(t, s, http.MethodPost, "/directories/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, dirs.Len())
}

func TestHandleCatalogBuildAndStats(t *testing.T) {
	s, _ := testServer(t, libraryBooks(), &fakeDeliverer{})

	rec, body := doJSON(t, s, http.MethodPost, "/catalog/build", map[string]any{"force": true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	metadata := body["metadata"].(map[string]any)
	require.Equal(t, float64(2), metadata["total_books"])

	rec, body = doJSON(t, s, http.MethodGet, "/catalog/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["stats"].(map[string]any)
	require.Equal(t, float64(2), stats["total_books"])
}

func TestHandleCatalogDedupe(t *testing.T) {
	books := append(libraryBooks(), libraryBooks()...)
	s, _ := testServer(t, books, &fakeDeliverer{})

	rec, body := doJSON(t, s, http.MethodPost, "/catalog/dedupe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	metadata := body["metadata"].(map[string]any)
	require.Equal(t, float64(2), metadata["total_books"])
}

func TestHandleValidate(t *testing.T) {
	sender := &fakeDeliverer{validation: kindle.Validation{Valid: true, Reason: "File is valid for Kindle", SizeMB: 2}}
	s, _ := testServer(t, libraryBooks(), sender)

	rec, body := doJSON(t, s, http.MethodPost, "/validate", map[string]any{"path": "/lib/Dune.epub"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["valid"])
	require.Equal(t, "/lib/Dune.epub", sender.lastPath)

	rec, _ = doJSON(t, s, http.MethodPost, "/validate", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSend(t *testing.T) {
	sender := &fakeDeliverer{result: kindle.Result{Success: true, Message: "sent"}}
	s, _ := testServer(t, libraryBooks(), sender)

	rec, body := doJSON(t, s, http.MethodPost, "/send", map[string]any{"path": "/lib/Dune.epub", "subject": "weekend reading"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, "weekend reading", sender.lastSubj)

	sender.result = kindle.Result{Success: false, Message: "Failed to send email: smtp down"}
	rec, body = doJSON(t, s, http.MethodPost, "/send", map[string]any{"path": "/lib/Dune.epub"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, false, body["success"])
}
