package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/http/handlers"
)

func loginRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAuthHandlerLogin(t *testing.T) {
	h := handlers.NewAuthHandler(newTestLogger(), "open sesame", "session", "token-123")
	r := gin.New()
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.SubmitLogin)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/login?next=//evil.example", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "evil.example") {
		t.Fatalf("unsafe next target was rendered: %s", rec.Body.String())
	}

	rec = serve(r, loginRequest(url.Values{"passcode": {"wrong"}}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	rec = serve(r, loginRequest(url.Values{}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	rec = serve(r, loginRequest(url.Values{"passcode": {"open sesame"}, "next": {"/a/42"}}))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/a/42" {
		t.Fatalf("expected redirect to /a/42, got %q", location)
	}
	if cookie := rec.Header().Get("Set-Cookie"); !strings.Contains(cookie, "session=token-123") {
		t.Fatalf("expected session cookie, got %q", cookie)
	}
}
