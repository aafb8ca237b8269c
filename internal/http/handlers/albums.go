package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/photojournal/internal/http/render"
	"github.com/Oxyrus/photojournal/internal/journal"
	"github.com/Oxyrus/photojournal/internal/storage"
	"github.com/Oxyrus/photojournal/web/pages"
)

// AlbumService is the part of the journal the album endpoints need.
type AlbumService interface {
	Albums() []storage.Album
	Album(id string) (storage.Album, bool)
	Selected() (storage.Album, bool)
	CreateAlbum(ctx context.Context, name string) (storage.Album, error)
	SelectAlbum(ctx context.Context, id string) error
	ReorderAlbums(ctx context.Context, from, to int) error
	DeleteAlbumByID(ctx context.Context, id string) error
}

type AlbumHandler struct {
	logger *slog.Logger
	albums AlbumService
}

type albumSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RecordCount int    `json:"recordCount"`
}

type createAlbumRequest struct {
	Name string `json:"name"`
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

func NewAlbumHandler(logger *slog.Logger, albums AlbumService) *AlbumHandler {
	return &AlbumHandler{
		logger: logger,
		albums: albums,
	}
}

func (h *AlbumHandler) List(c *gin.Context) {
	albums := h.albums.Albums()

	items := make([]albumSummary, 0, len(albums))
	for _, a := range albums {
		items = append(items, albumSummary{ID: a.ID, Name: a.Name, RecordCount: len(a.Records)})
	}

	selectedID := ""
	if selected, ok := h.albums.Selected(); ok {
		selectedID = selected.ID
	}

	c.JSON(http.StatusOK, gin.H{
		"albums":          items,
		"selectedAlbumID": selectedID,
	})
}

func (h *AlbumHandler) Create(c *gin.Context) {
	var req createAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	album, err := h.albums.CreateAlbum(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err, "failed to create album")
		return
	}

	c.JSON(http.StatusCreated, album)
}

func (h *AlbumHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	if err := h.albums.ReorderAlbums(c.Request.Context(), *req.From, *req.To); err != nil {
		respondError(c, h.logger, err, "failed to reorder albums", "from", *req.From, "to", *req.To)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AlbumHandler) Select(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := h.albums.SelectAlbum(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "failed to select album", "albumID", id)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AlbumHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := h.albums.DeleteAlbumByID(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "failed to delete album", "albumID", id)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AlbumHandler) Selection(c *gin.Context) {
	album, ok := h.albums.Selected()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": journal.ErrNoSelection.Error()})
		return
	}

	c.JSON(http.StatusOK, album)
}

// Index renders the album list page.
func (h *AlbumHandler) Index(c *gin.Context) {
	selectedID := ""
	if selected, ok := h.albums.Selected(); ok {
		selectedID = selected.ID
	}

	albums := h.albums.Albums()
	items := make([]pages.AlbumListItem, 0, len(albums))
	for _, a := range albums {
		items = append(items, pages.AlbumListItem{
			Name:     a.Name,
			Href:     "/a/" + a.ID,
			Records:  len(a.Records),
			Selected: a.ID == selectedID,
		})
	}

	render.HTML(c, http.StatusOK, pages.AlbumsList(items))
}

// View renders the read-only album page.
func (h *AlbumHandler) View(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	album, ok := h.albums.Album(id)
	if !ok {
		c.String(http.StatusNotFound, "album not found")
		return
	}

	render.HTML(c, http.StatusOK, pages.AlbumView(toAlbumViewData(album)))
}

func toAlbumViewData(album storage.Album) pages.AlbumViewData {
	data := pages.AlbumViewData{
		Name:    album.Name,
		Entries: make([]pages.EntryItem, 0, len(album.Records)),
	}

	// Newest first.
	for i := len(album.Records) - 1; i >= 0; i-- {
		r := album.Records[i]
		image := r.OriginalImagePath
		if r.HasEdit() {
			image = r.EditedImagePath
		}
		data.Entries = append(data.Entries, pages.EntryItem{
			Date:        formatDate(r),
			Description: r.Description,
			ImageURL:    "/api/assets/" + image,
			Tags:        r.Tags,
		})
	}

	return data
}

func formatDate(r storage.Record) string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format("Jan 2, 2006")
}
