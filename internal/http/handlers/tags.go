package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/journal"
	"github.com/Oxyrus/photojournal/internal/storage"
)

// TagService is the part of the journal the tag endpoints need.
type TagService interface {
	TagCounts() []journal.TagCount
	RecordsWithTag(tag string) []storage.Record
	SelectedTag() string
	SetSelectedTag(tag string)
}

type TagHandler struct {
	logger    *slog.Logger
	tags      TagService
	tagger    Tagger
	maxUpload int64
}

type selectedTagRequest struct {
	Tag string `json:"tag"`
}

func NewTagHandler(logger *slog.Logger, tags TagService, tagger Tagger, maxUploadBytes int64) *TagHandler {
	return &TagHandler{
		logger:    logger,
		tags:      tags,
		tagger:    tagger,
		maxUpload: maxUploadBytes,
	}
}

func (h *TagHandler) Counts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tags": h.tags.TagCounts()})
}

func (h *TagHandler) Records(c *gin.Context) {
	tag := strings.TrimSpace(c.Param("tag"))
	c.JSON(http.StatusOK, gin.H{
		"tag":     tag,
		"records": h.tags.RecordsWithTag(tag),
	})
}

func (h *TagHandler) Selected(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tag": h.tags.SelectedTag()})
}

func (h *TagHandler) SetSelected(c *gin.Context) {
	var req selectedTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.tags.SetSelectedTag(req.Tag)
	c.JSON(http.StatusOK, gin.H{"tag": h.tags.SelectedTag()})
}

// Generate suggests tags for an uploaded image without storing anything.
func (h *TagHandler) Generate(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	raw, err := readUpload(header, h.maxUpload)
	if err != nil {
		h.logger.Warn("rejected upload", "field", "image", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": h.tagger.GenerateTagsFromBytes(c.Request.Context(), raw)})
}
