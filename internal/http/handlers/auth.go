package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/http/render"
	"github.com/Oxyrus/photojournal/web/pages"
)

const sessionMaxAge = 14 * 24 * time.Hour

type AuthHandler struct {
	logger       *slog.Logger
	passcode     string
	cookieName   string
	sessionToken string
}

// NewAuthHandler issues sessionToken as the cookie value after a successful
// login. The same token must be given to middleware.RequirePasscode.
func NewAuthHandler(logger *slog.Logger, passcode, cookieName, sessionToken string) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		passcode:     passcode,
		cookieName:   cookieName,
		sessionToken: sessionToken,
	}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	render.HTML(c, http.StatusOK, pages.Login(safeNext(c.Query("next")), ""))
}

func (h *AuthHandler) SubmitLogin(c *gin.Context) {
	next := safeNext(c.PostForm("next"))

	passcode := strings.TrimSpace(c.PostForm("passcode"))
	if passcode == "" {
		h.logger.Warn("login attempt missing passcode", "ip", c.ClientIP())
		render.HTML(c, http.StatusBadRequest, pages.Login(next, "Passcode is required."))
		return
	}

	if subtle.ConstantTimeCompare([]byte(passcode), []byte(h.passcode)) != 1 {
		h.logger.Warn("invalid login attempt", "ip", c.ClientIP())
		render.HTML(c, http.StatusUnauthorized, pages.Login(next, "Invalid passcode."))
		return
	}

	if next == "" {
		next = "/"
	}

	secure := c.Request.TLS != nil
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, h.sessionToken, int(sessionMaxAge.Seconds()), "/", "", secure, true)

	h.logger.Info("login successful", "ip", c.ClientIP())
	c.Redirect(http.StatusFound, next)
}

// safeNext only allows same-site relative redirect targets.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
