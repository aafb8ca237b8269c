package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/journal"
	"github.com/Oxyrus/photojournal/internal/storage"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, journal.ErrValidation), errors.Is(err, storage.ErrInvalidPath):
		return http.StatusUnprocessableEntity
	case errors.Is(err, journal.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a JSON error body. Server errors are logged with msg and
// hidden behind it; client errors echo the error text.
func respondError(c *gin.Context, logger *slog.Logger, err error, msg string, attrs ...any) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, append(attrs, "error", err)...)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
