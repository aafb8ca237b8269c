package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Oxyrus/photojournal/internal/config"
	"github.com/Oxyrus/photojournal/internal/http/handlers"
	"github.com/Oxyrus/photojournal/internal/http/middleware"
	"github.com/Oxyrus/photojournal/internal/journal"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Journal *journal.Manager
	Tagger  handlers.Tagger
	DB      handlers.Pinger
}

func New(cfg *config.Config, logger *slog.Logger, deps Deps) *gin.Engine {
	r := gin.New()

	maxUpload := cfg.MaxUploadMB << 20
	r.MaxMultipartMemory = maxUpload

	r.Use(gin.Recovery())
	r.Use(middleware.Logging(logger))

	albumHandler := handlers.NewAlbumHandler(logger, deps.Journal)
	recordHandler := handlers.NewRecordHandler(logger, deps.Journal, deps.Tagger, maxUpload)
	tagHandler := handlers.NewTagHandler(logger, deps.Journal, deps.Tagger, maxUpload)
	assetHandler := handlers.NewAssetHandler(logger, deps.Journal)
	eventHandler := handlers.NewEventHandler(logger, deps.Journal, 0)
	healthHandler := handlers.NewHealthHandler(logger, deps.DB)

	r.GET("/healthz", healthHandler.Check)

	protected := r.Group("/")
	if cfg.Passcode != "" {
		sessionToken := uuid.NewString()
		authHandler := handlers.NewAuthHandler(logger, cfg.Passcode, cfg.AuthCookie, sessionToken)
		r.GET("/login", authHandler.ShowLogin)
		r.POST("/login", authHandler.SubmitLogin)
		protected.Use(middleware.RequirePasscode(cfg.AuthCookie, sessionToken))
	}

	protected.GET("/", albumHandler.Index)
	protected.GET("/a/:id", albumHandler.View)

	api := protected.Group("/api")
	api.GET("/albums", albumHandler.List)
	api.POST("/albums", albumHandler.Create)
	api.POST("/albums/reorder", albumHandler.Reorder)
	api.POST("/albums/:id/select", albumHandler.Select)
	api.DELETE("/albums/:id", albumHandler.Delete)
	api.GET("/selection", albumHandler.Selection)

	api.POST("/records", recordHandler.Create)
	api.DELETE("/records/:id", recordHandler.Delete)
	api.GET("/records/today", recordHandler.Today)

	api.GET("/tags", tagHandler.Counts)
	api.GET("/tags/selected", tagHandler.Selected)
	api.PUT("/tags/selected", tagHandler.SetSelected)
	api.POST("/tags/generate", tagHandler.Generate)
	api.GET("/tags/:tag/records", tagHandler.Records)

	api.GET("/assets/*path", assetHandler.Get)
	api.GET("/events", eventHandler.Stream)

	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found")
	})

	return r
}
