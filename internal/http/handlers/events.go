package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/journal"
)

// EventSource publishes journal snapshots.
type EventSource interface {
	Snapshot() journal.Snapshot
	Subscribe() (<-chan journal.Snapshot, func())
}

type EventHandler struct {
	logger    *slog.Logger
	events    EventSource
	keepAlive time.Duration
}

func NewEventHandler(logger *slog.Logger, events EventSource, keepAlive time.Duration) *EventHandler {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	return &EventHandler{
		logger:    logger,
		events:    events,
		keepAlive: keepAlive,
	}
}

// Stream sends the current snapshot followed by one event per state change
// as server-sent events.
func (h *EventHandler) Stream(c *gin.Context) {
	updates, cancel := h.events.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("snapshot", h.events.Snapshot())
	c.Writer.Flush()

	h.logger.Debug("event stream opened", "ip", c.ClientIP())

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})

	h.logger.Debug("event stream closed", "ip", c.ClientIP())
}
