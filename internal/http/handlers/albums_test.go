package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/http/handlers"
	"github.com/Oxyrus/photojournal/internal/storage"
)

func albumRouter(h *handlers.AlbumHandler) *gin.Engine {
	r := gin.New()
	r.GET("/", h.Index)
	r.GET("/a/:id", h.View)
	r.GET("/api/albums", h.List)
	r.POST("/api/albums", h.Create)
	r.POST("/api/albums/reorder", h.Reorder)
	r.POST("/api/albums/:id/select", h.Select)
	r.DELETE("/api/albums/:id", h.Delete)
	r.GET("/api/selection", h.Selection)
	return r
}

func TestAlbumHandlerCreate(t *testing.T) {
	m := newJournal(t)
	r := albumRouter(handlers.NewAlbumHandler(newTestLogger(), m))

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/albums", strings.NewReader(`{"name":"Trip"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var album storage.Album
	if err := json.Unmarshal(rec.Body.Bytes(), &album); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if album.Name != "Trip" || album.ID == "" {
		t.Fatalf("unexpected album %+v", album)
	}

	selected, ok := m.Selected()
	if !ok || selected.ID != album.ID {
		t.Fatalf("expected new album to be selected")
	}
}

func TestAlbumHandlerCreateValidationError(t *testing.T) {
	r := albumRouter(handlers.NewAlbumHandler(newTestLogger(), newJournal(t)))

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/albums", strings.NewReader(`{"name":"   "}`)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
}

func TestAlbumHandlerCreateBadJSON(t *testing.T) {
	r := albumRouter(handlers.NewAlbumHandler(newTestLogger(), newJournal(t)))

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/albums", strings.NewReader(`{`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAlbumHandlerList(t *testing.T) {
	m := newJournal(t)
	mustCreateAlbum(t, m, "First")
	second := mustCreateAlbum(t, m, "Second")
	r := albumRouter(handlers.NewAlbumHandler(newTestLogger(), m))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/albums", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Albums []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"albums"`
		SelectedAlbumID string `json:"selectedAlbumID"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Albums) != 2 || body.Albums[0].Name != "First" {
		t.Fatalf("unexpected albums %+v", body.Albums)
	}
	if body.SelectedAlbumID != second {
		t.Fatalf("expected selected %q, got %q", second, body.SelectedAlbumID)
	}
}

func TestAlbumHandlerSelect(t *testing.T) {
	m := newJournal(t)
	first := mustCreateAlbum(t, m, "First")
	mustCreateAlbum(t, m, "Second")
	r := albumRouter(handlers.NewAlbumHandler(newTestLogger(), m))

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/albums/"+first+"/select", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if selected, _ := m.Selected(); selected.ID != first {
		t.Fatalf("expected %q selected, got %q", first, selected.ID)
	}

	rec = serve(r, httptest.NewRequest(http.MethodPost, "/api/albums/missing/select", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestAlbumHandlerReorder(t *testing.T) {
	m := newJournal(t)
	for _, name := range []string{"A", "B", "C"} {
		mustCreateAlbum(t, m, name)
	}
	r := albumRouter(handlers.NewAlbumHandler(newTestLogger(), m))

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/albums/reorder", strings.NewReader(`{"from":0,"to":2}`)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if albums := m.Albums(); albums[2].Name != "A" {
		t.Fatalf("expected A last, got %q", albums[2].Name)
	}

	rec = serve(r, httptest.NewRequest(http.MethodPost, "/api/albums/reorder", strings.NewReader(`{"from":0,"to":9}`)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	rec = serve(r, httptest.NewRequest(http.MethodPost, "/api/albums/reorder", strings.NewReader(`{"from":0}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAlbumHandlerDeleteAndSelection(t *testing.T) {
	m := newJournal(t)
	id := mustCreateAlbum(t, m, "Trip")
	r := albumRouter(handlers.NewAlbumHandler(newTestLogger(), m))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/selection", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/api/albums/"+id, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/selection", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/api/albums/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestAlbumHandlerViewPages(t *testing.T) {
	m := newJournal(t)
	id := mustCreateAlbum(t, m, "Summer Roadtrip")
	r := albumRouter(handlers.NewAlbumHandler(newTestLogger(), m))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `href="/a/`+id+`"`) {
		t.Fatalf("expected album link, got %s", rec.Body.String())
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/a/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Summer Roadtrip") {
		t.Fatalf("expected album name, got %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/a/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
