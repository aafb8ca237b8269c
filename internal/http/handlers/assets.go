package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/storage"
)

// AssetSource reads stored image bytes.
type AssetSource interface {
	LoadAsset(ctx context.Context, path string) ([]byte, bool, error)
}

type AssetHandler struct {
	logger *slog.Logger
	assets AssetSource
}

func NewAssetHandler(logger *slog.Logger, assets AssetSource) *AssetHandler {
	return &AssetHandler{
		logger: logger,
		assets: assets,
	}
}

func (h *AssetHandler) Get(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")

	data, ok, err := h.assets.LoadAsset(c.Request.Context(), path)
	if err != nil {
		respondError(c, h.logger, err, "failed to load asset", "path", path)
		return
	}
	if !ok {
		respondError(c, h.logger, storage.ErrNotFound, "asset not found", "path", path)
		return
	}

	// Asset names embed the record id and are never rewritten in place.
	c.Header("Cache-Control", "private, max-age=31536000, immutable")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
