package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/http/handlers"
)

func TestAssetHandlerGet(t *testing.T) {
	m := newJournal(t)
	mustCreateAlbum(t, m, "Trip")
	saved, err := m.AddRecord(context.Background(), m.NewRecord(testNow, "", nil), []byte("jpeg bytes"), nil)
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	r := gin.New()
	r.GET("/api/assets/*path", handlers.NewAssetHandler(newTestLogger(), m).Get)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/assets/"+saved.OriginalImagePath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "jpeg bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/assets/missing.jpg", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/assets/bad%20name.jpg", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}
