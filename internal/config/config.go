package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	DataDir        string
	LogLevel       slog.Level
	OllamaURL      string
	VisionModel    string
	TagConcurrency int64
	AssetCacheMB   int64
	MaxUploadMB    int64
	Location       *time.Location
	Passcode       string
	AuthCookie     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:        getString("PHOTOJOURNAL_ADDR", ":8080"),
		DataDir:     getString("PHOTOJOURNAL_DATA_DIR", "data"),
		LogLevel:    getLogLevel("PHOTOJOURNAL_LOG_LEVEL", slog.LevelInfo),
		OllamaURL:   getString("PHOTOJOURNAL_OLLAMA_URL", "http://localhost:11434"),
		VisionModel: getString("PHOTOJOURNAL_VISION_MODEL", "llava"),
		Passcode:    strings.TrimSpace(os.Getenv("PHOTOJOURNAL_PASSCODE")),
		AuthCookie:  getString("PHOTOJOURNAL_AUTH_COOKIE", "photojournal_session"),
	}

	var err error
	if cfg.TagConcurrency, err = getInt("PHOTOJOURNAL_TAG_CONCURRENCY", 1); err != nil {
		return nil, err
	}
	if cfg.TagConcurrency < 1 {
		return nil, fmt.Errorf("PHOTOJOURNAL_TAG_CONCURRENCY must be positive, got %d", cfg.TagConcurrency)
	}

	if cfg.AssetCacheMB, err = getInt("PHOTOJOURNAL_ASSET_CACHE_MB", 32); err != nil {
		return nil, err
	}
	if cfg.AssetCacheMB < 0 {
		return nil, fmt.Errorf("PHOTOJOURNAL_ASSET_CACHE_MB must not be negative, got %d", cfg.AssetCacheMB)
	}

	if cfg.MaxUploadMB, err = getInt("PHOTOJOURNAL_MAX_UPLOAD_MB", 32); err != nil {
		return nil, err
	}
	if cfg.MaxUploadMB < 1 {
		return nil, fmt.Errorf("PHOTOJOURNAL_MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}

	if cfg.Location, err = getLocation("PHOTOJOURNAL_TIMEZONE"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AlbumsPath is the JSON file holding the album collection.
func (c *Config) AlbumsPath() string {
	return filepath.Join(c.DataDir, "albums.json")
}

// PreferencesPath is the SQLite database holding small key/value facts.
func (c *Config) PreferencesPath() string {
	return filepath.Join(c.DataDir, "preferences.db")
}

// AssetsDir is the root directory for stored image files.
func (c *Config) AssetsDir() string {
	return filepath.Join(c.DataDir, "assets")
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getLocation(key string) (*time.Location, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return loc, nil
}

func getLogLevel(key string, fallback slog.Level) slog.Level {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "":
		return fallback
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
