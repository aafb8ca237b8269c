package router_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/config"
	"github.com/Oxyrus/photojournal/internal/journal"
	"github.com/Oxyrus/photojournal/internal/router"
	"github.com/Oxyrus/photojournal/internal/storage/fs"
	"github.com/Oxyrus/photojournal/internal/storage/jsonstore"
	"github.com/Oxyrus/photojournal/internal/storage/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type noTags struct{}

func (noTags) GenerateTagsFromBytes(context.Context, []byte) []string { return []string{} }

func newEngine(t *testing.T, passcode string) *gin.Engine {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:     dir,
		MaxUploadMB: 1,
		Location:    time.UTC,
		Passcode:    passcode,
		AuthCookie:  "photojournal_session",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assets, err := fs.New(cfg.AssetsDir(), 0)
	if err != nil {
		t.Fatalf("fs.New: %v", err)
	}
	prefs, err := sqlite.Open(filepath.Join(dir, "preferences.db"))
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() { _ = prefs.Close() })

	j, err := journal.New(context.Background(), journal.Options{
		Logger:      logger,
		Metadata:    jsonstore.New(cfg.AlbumsPath()),
		Assets:      assets,
		Preferences: prefs,
		Location:    cfg.Location,
	})
	if err != nil {
		t.Fatalf("journal.New: %v", err)
	}

	return router.New(cfg, logger, router.Deps{Journal: j, Tagger: noTags{}, DB: prefs})
}

func TestRoutesWithoutPasscode(t *testing.T) {
	r := newEngine(t, "")

	cases := []struct {
		method, path string
		body         string
		want         int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/api/albums", "", http.StatusOK},
		{http.MethodPost, "/api/albums", `{"name":"Trip"}`, http.StatusCreated},
		{http.MethodGet, "/api/selection", "", http.StatusOK},
		{http.MethodGet, "/api/tags", "", http.StatusOK},
		{http.MethodGet, "/api/tags/selected", "", http.StatusOK},
		{http.MethodGet, "/api/tags/sunset/records", "", http.StatusOK},
		{http.MethodGet, "/api/records/today", "", http.StatusNotFound},
		{http.MethodGet, "/login", "", http.StatusNotFound},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		var body io.Reader
		if tc.body != "" {
			body = strings.NewReader(tc.body)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, body))
		if rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d: %s", tc.method, tc.path, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestRoutesRequirePasscode(t *testing.T) {
	r := newEngine(t, "secret")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a/123", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/login?next=%2Fa%2F123" {
		t.Fatalf("unexpected redirect %q", location)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/albums", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health check should stay public, got %d", rec.Code)
	}

	form := url.Values{"passcode": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected login redirect, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/albums", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected authenticated request to pass, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/albums", nil)
	req.AddCookie(&http.Cookie{Name: "photojournal_session", Value: "1"})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged cookie should be rejected, got %d", rec.Code)
	}
}
