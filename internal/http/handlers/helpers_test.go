package handlers_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/journal"
	"github.com/Oxyrus/photojournal/internal/storage/fs"
	"github.com/Oxyrus/photojournal/internal/storage/jsonstore"
	"github.com/Oxyrus/photojournal/internal/storage/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newJournal(t *testing.T) *journal.Manager {
	t.Helper()

	dir := t.TempDir()
	assets, err := fs.New(filepath.Join(dir, "assets"), 0)
	if err != nil {
		t.Fatalf("fs.New: %v", err)
	}

	prefs, err := sqlite.Open(filepath.Join(dir, "preferences.db"))
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() { _ = prefs.Close() })

	m, err := journal.New(context.Background(), journal.Options{
		Logger:      newTestLogger(),
		Metadata:    jsonstore.New(filepath.Join(dir, "albums.json")),
		Assets:      assets,
		Preferences: prefs,
		Now:         func() time.Time { return testNow },
		Location:    time.UTC,
	})
	if err != nil {
		t.Fatalf("journal.New: %v", err)
	}
	return m
}

func mustCreateAlbum(t *testing.T, m *journal.Manager, name string) string {
	t.Helper()
	album, err := m.CreateAlbum(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}
	return album.ID
}

type stubTagger struct {
	mu    sync.Mutex
	tags  []string
	calls int
	last  []byte
}

func (s *stubTagger) GenerateTagsFromBytes(_ context.Context, raw []byte) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = raw
	return append([]string{}, s.tags...)
}

// multipartRequest builds a multipart POST. Fields with a nil slice are left
// out entirely.
func multipartRequest(t *testing.T, target string, fields map[string][]string, files map[string][]byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(name, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name+".jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
