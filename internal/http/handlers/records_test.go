package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/http/handlers"
	"github.com/Oxyrus/photojournal/internal/storage"
)

func recordRouter(h *handlers.RecordHandler) *gin.Engine {
	r := gin.New()
	r.POST("/api/records", h.Create)
	r.DELETE("/api/records/:id", h.Delete)
	r.GET("/api/records/today", h.Today)
	return r
}

func decodeRecord(t *testing.T, rec *httptest.ResponseRecorder) storage.Record {
	t.Helper()
	var out storage.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return out
}

func TestRecordHandlerCreateRequiresSelection(t *testing.T) {
	tagger := &stubTagger{}
	r := recordRouter(handlers.NewRecordHandler(newTestLogger(), newJournal(t), tagger, 1<<20))

	req := multipartRequest(t, "/api/records", map[string][]string{"tags": {"beach"}}, map[string][]byte{"original": []byte("raw")})
	rec := serve(r, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRecordHandlerCreateWithTags(t *testing.T) {
	m := newJournal(t)
	mustCreateAlbum(t, m, "Trip")
	tagger := &stubTagger{tags: []string{"generated"}}
	r := recordRouter(handlers.NewRecordHandler(newTestLogger(), m, tagger, 1<<20))

	req := multipartRequest(t, "/api/records",
		map[string][]string{
			"description": {"Beach day"},
			"tags":        {"sunset", "beach"},
			"date":        {"2026-10-15T08:00:00Z"},
		},
		map[string][]byte{"original": []byte("raw"), "edited": []byte("graded")},
	)
	rec := serve(r, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	saved := decodeRecord(t, rec)
	if saved.Description != "Beach day" {
		t.Fatalf("unexpected description %q", saved.Description)
	}
	if len(saved.Tags) != 2 || saved.Tags[0] != "sunset" {
		t.Fatalf("unexpected tags %v", saved.Tags)
	}
	if !saved.HasEdit() {
		t.Fatalf("expected edited image to be kept")
	}
	if tagger.calls != 0 {
		t.Fatalf("tagger should not run when tags are provided")
	}

	today, ok := m.RecordForToday()
	if !ok || today.ID != saved.ID {
		t.Fatalf("expected record for today")
	}
}

func TestRecordHandlerCreateGeneratesTags(t *testing.T) {
	m := newJournal(t)
	mustCreateAlbum(t, m, "Trip")
	tagger := &stubTagger{tags: []string{"seashore", "sand"}}
	r := recordRouter(handlers.NewRecordHandler(newTestLogger(), m, tagger, 1<<20))

	req := multipartRequest(t, "/api/records", nil, map[string][]byte{"original": []byte("raw"), "edited": []byte("graded")})
	rec := serve(r, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	saved := decodeRecord(t, rec)
	if len(saved.Tags) != 2 || saved.Tags[0] != "seashore" {
		t.Fatalf("unexpected tags %v", saved.Tags)
	}
	if string(tagger.last) != "graded" {
		t.Fatalf("expected tags from edited image, got %q", tagger.last)
	}
	if !saved.Date.Equal(testNow) {
		t.Fatalf("expected date %v, got %v", testNow, saved.Date)
	}
}

func TestRecordHandlerCreateValidation(t *testing.T) {
	m := newJournal(t)
	mustCreateAlbum(t, m, "Trip")
	r := recordRouter(handlers.NewRecordHandler(newTestLogger(), m, &stubTagger{}, 1<<20))

	rec := serve(r, multipartRequest(t, "/api/records", map[string][]string{"description": {"no image"}}, nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 for missing original, got %d", rec.Code)
	}

	rec = serve(r, multipartRequest(t, "/api/records",
		map[string][]string{"date": {"yesterday"}},
		map[string][]byte{"original": []byte("raw")},
	))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 for bad date, got %d", rec.Code)
	}
}

func TestRecordHandlerCreateTooLarge(t *testing.T) {
	m := newJournal(t)
	mustCreateAlbum(t, m, "Trip")
	r := recordRouter(handlers.NewRecordHandler(newTestLogger(), m, &stubTagger{}, 4))

	rec := serve(r, multipartRequest(t, "/api/records", nil, map[string][]byte{"original": []byte("too many bytes")}))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rec.Code)
	}
}

func TestRecordHandlerReplaceToday(t *testing.T) {
	m := newJournal(t)
	mustCreateAlbum(t, m, "Trip")
	r := recordRouter(handlers.NewRecordHandler(newTestLogger(), m, &stubTagger{}, 1<<20))

	first := decodeRecord(t, serve(r, multipartRequest(t, "/api/records",
		map[string][]string{"tags": {""}},
		map[string][]byte{"original": []byte("morning")},
	)))

	rec := serve(r, multipartRequest(t, "/api/records",
		map[string][]string{"replace": {"true"}, "description": {"evening"}, "tags": {""}},
		map[string][]byte{"original": []byte("evening")},
	))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	second := decodeRecord(t, rec)

	selected, _ := m.Selected()
	if len(selected.Records) != 1 || selected.Records[0].ID != second.ID {
		t.Fatalf("expected only the replacement, got %+v", selected.Records)
	}
	if _, ok := m.Record(first.ID); ok {
		t.Fatalf("expected first record to be gone")
	}
}

func TestRecordHandlerTodayAndDelete(t *testing.T) {
	m := newJournal(t)
	mustCreateAlbum(t, m, "Trip")
	r := recordRouter(handlers.NewRecordHandler(newTestLogger(), m, &stubTagger{}, 1<<20))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/records/today", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	saved := decodeRecord(t, serve(r, multipartRequest(t, "/api/records", nil, map[string][]byte{"original": []byte("raw")})))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/records/today", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := decodeRecord(t, rec); got.ID != saved.ID {
		t.Fatalf("expected %q, got %q", saved.ID, got.ID)
	}

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/api/records/"+saved.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/api/records/"+saved.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
