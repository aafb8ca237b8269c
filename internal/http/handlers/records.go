package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/imagecodec"
	"github.com/Oxyrus/photojournal/internal/journal"
	"github.com/Oxyrus/photojournal/internal/storage"
)

// RecordService is the part of the journal the record endpoints need.
type RecordService interface {
	NewRecord(date time.Time, description string, tags []string) storage.Record
	AddRecord(ctx context.Context, rec storage.Record, original, edited []byte) (storage.Record, error)
	ReplaceTodayRecord(ctx context.Context, rec storage.Record, original, edited []byte) (storage.Record, error)
	DeleteRecord(ctx context.Context, id string) error
	RecordForToday() (storage.Record, bool)
}

// Tagger produces tags for raw image bytes. It never fails; an empty result
// means no tags.
type Tagger interface {
	GenerateTagsFromBytes(ctx context.Context, raw []byte) []string
}

type RecordHandler struct {
	logger    *slog.Logger
	records   RecordService
	tagger    Tagger
	maxUpload int64
}

var errUploadTooLarge = errors.New("upload too large")

func NewRecordHandler(logger *slog.Logger, records RecordService, tagger Tagger, maxUploadBytes int64) *RecordHandler {
	return &RecordHandler{
		logger:    logger,
		records:   records,
		tagger:    tagger,
		maxUpload: maxUploadBytes,
	}
}

// Create stores a new record in the selected album. When the form carries no
// tags field, tags are generated from the edited image if present, otherwise
// from the original. With replace=true today's record is swapped out.
func (h *RecordHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	original, err := h.readFile(c, "original")
	if err != nil {
		h.badUpload(c, "original", err)
		return
	}
	if original == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "original image is required"})
		return
	}

	edited, err := h.readFile(c, "edited")
	if err != nil {
		h.badUpload(c, "edited", err)
		return
	}

	date, err := h.recordDate(c, original)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	tags, provided := c.GetPostFormArray("tags")
	if !provided {
		source := original
		if len(edited) > 0 {
			source = edited
		}
		tags = h.tagger.GenerateTagsFromBytes(ctx, source)
	}

	rec := h.records.NewRecord(date, strings.TrimSpace(c.PostForm("description")), tags)

	save := h.records.AddRecord
	if replace, _ := strconv.ParseBool(c.PostForm("replace")); replace {
		save = h.records.ReplaceTodayRecord
	}

	saved, err := save(ctx, rec, original, edited)
	if err != nil {
		respondError(c, h.logger, err, "failed to save record", "recordID", rec.ID)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *RecordHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := h.records.DeleteRecord(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "failed to delete record", "recordID", id)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecordHandler) Today(c *gin.Context) {
	rec, ok := h.records.RecordForToday()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no record for today"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// recordDate prefers an explicit date field, then the EXIF capture time.
// A zero result lets the journal stamp the current time.
func (h *RecordHandler) recordDate(c *gin.Context, original []byte) (time.Time, error) {
	if raw := strings.TrimSpace(c.PostForm("date")); raw != "" {
		date, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("date must be RFC 3339: %w", err)
		}
		return date, nil
	}

	if taken, ok := imagecodec.TakenAt(original); ok {
		return taken, nil
	}
	return time.Time{}, nil
}

// readFile returns the bytes of the named multipart file, or nil when the
// field is absent.
func (h *RecordHandler) readFile(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return readUpload(header, h.maxUpload)
}

func (h *RecordHandler) badUpload(c *gin.Context, field string, err error) {
	h.logger.Warn("rejected upload", "field", field, "error", err)
	if errors.Is(err, errUploadTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + field + " upload"})
}

func readUpload(header *multipart.FileHeader, limit int64) ([]byte, error) {
	if limit > 0 && header.Size > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", errUploadTooLarge, header.Size, limit)
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return data, nil
}

var _ RecordService = (*journal.Manager)(nil)
