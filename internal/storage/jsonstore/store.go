// Package jsonstore persists the album collection as a single JSON document.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/Oxyrus/photojournal/internal/storage"
)

// Store reads and writes the whole album collection at once. Writes replace
// the file atomically so readers never observe a partial document.
type Store struct {
	path string
}

// New returns a store backed by the file at path. The file is not touched
// until the first LoadAll or SaveAll.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the collection file.
func (s *Store) Path() string {
	return s.path
}

// LoadAll returns the persisted albums, or an empty collection if nothing has
// been saved yet. A file that exists but does not parse yields a
// *storage.CorruptStoreError and is left in place.
func (s *Store) LoadAll(ctx context.Context) ([]storage.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []storage.Album{}, nil
		}
		return nil, fmt.Errorf("jsonstore: read %q: %w", s.path, err)
	}

	var albums []storage.Album
	if err := json.Unmarshal(data, &albums); err != nil {
		return nil, &storage.CorruptStoreError{Path: s.path, Err: err}
	}

	if albums == nil {
		albums = []storage.Album{}
	}
	for i := range albums {
		if albums[i].Records == nil {
			albums[i].Records = []storage.Record{}
		}
	}

	return albums, nil
}

// SaveAll replaces the persisted collection with albums.
func (s *Store) SaveAll(ctx context.Context, albums []storage.Album) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(normalize(albums), "", "  ")
	if err != nil {
		return fmt.Errorf("jsonstore: encode: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("jsonstore: ensure directory: %w", err)
		}
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("jsonstore: write %q: %w", s.path, err)
	}

	return nil
}

// Quarantine moves the current file aside to <path>.corrupt-<unix seconds>
// and returns the new location. A missing file is not an error and yields an
// empty path.
func (s *Store) Quarantine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if err := os.Rename(s.path, target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("jsonstore: quarantine %q: %w", s.path, err)
	}
	return target, nil
}

// normalize makes empty lists encode as [] rather than null.
func normalize(albums []storage.Album) []storage.Album {
	out := make([]storage.Album, len(albums))
	for i, a := range albums {
		out[i] = a
		out[i].Records = make([]storage.Record, len(a.Records))
		for j, r := range a.Records {
			if r.Tags == nil {
				r.Tags = []string{}
			}
			out[i].Records[j] = r
		}
	}
	return out
}

var (
	_ storage.Metadata    = (*Store)(nil)
	_ storage.Quarantiner = (*Store)(nil)
)
