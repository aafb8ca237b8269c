package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Oxyrus/photojournal/internal/journal"
	"github.com/Oxyrus/photojournal/internal/storage/fs"
	"github.com/Oxyrus/photojournal/internal/storage/jsonstore"
	"github.com/Oxyrus/photojournal/internal/storage/sqlite"
	"github.com/Oxyrus/photojournal/internal/tagging"
	"github.com/Oxyrus/photojournal/internal/tagging/ollama"
)

// app holds the opened stores and the journal built on them.
type app struct {
	prefs    *sqlite.Store
	assets   *fs.Store
	metadata *jsonstore.Store
	journal  *journal.Manager
}

func openApp(ctx context.Context) (*app, error) {
	prefs, err := sqlite.Open(cfg.PreferencesPath())
	if err != nil {
		return nil, fmt.Errorf("open preferences %q: %w", cfg.PreferencesPath(), err)
	}

	assets, err := fs.New(cfg.AssetsDir(), cfg.AssetCacheMB<<20)
	if err != nil {
		_ = prefs.Close()
		return nil, fmt.Errorf("open assets %q: %w", cfg.AssetsDir(), err)
	}

	metadata := jsonstore.New(cfg.AlbumsPath())
	j, err := journal.New(ctx, journal.Options{
		Logger:      logger,
		Metadata:    metadata,
		Assets:      assets,
		Preferences: prefs,
		Location:    cfg.Location,
	})
	if err != nil {
		_ = assets.Close()
		_ = prefs.Close()
		return nil, err
	}

	return &app{prefs: prefs, assets: assets, metadata: metadata, journal: j}, nil
}

func (a *app) Close() {
	if err := a.assets.Close(); err != nil {
		logger.Error("failed to close asset store", "error", err)
	}
	if err := a.prefs.Close(); err != nil {
		logger.Error("failed to close sqlite database", "error", err)
	}
}

// newTagger connects to the vision model. The journal cannot tag without it,
// so an unreachable model is reported to the caller.
func newTagger(ctx context.Context) (*tagging.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	httpClient := &http.Client{Timeout: 2 * time.Minute}
	classifier, err := ollama.New(ctx, cfg.OllamaURL, cfg.VisionModel, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("load vision model %q from %s: %w", cfg.VisionModel, cfg.OllamaURL, err)
	}

	return tagging.NewService(logger, classifier, cfg.TagConcurrency), nil
}
