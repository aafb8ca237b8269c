package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound indicates that the requested entity does not exist in the
// underlying storage.
var ErrNotFound = errors.New("storage: not found")

// ErrInvalidPath indicates an asset path that is empty, absolute, escapes the
// asset root or contains characters outside the allowed set.
var ErrInvalidPath = errors.New("storage: invalid asset path")

// Album is a named, ordered collection of records.
type Album struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Records []Record `json:"records"`
}

// Record is one day's journal entry.
type Record struct {
	ID                string    `json:"id"`
	Date              time.Time `json:"date"`
	OriginalImagePath string    `json:"originalImagePath"`
	EditedImagePath   string    `json:"editedImagePath,omitempty"`
	Description       string    `json:"description"`
	Tags              []string  `json:"tags"`
}

// HasEdit reports whether the record references an edited image.
func (r Record) HasEdit() bool {
	return r.EditedImagePath != ""
}

// AssetPaths returns every asset path referenced by the record.
func (r Record) AssetPaths() []string {
	paths := []string{r.OriginalImagePath}
	if r.HasEdit() {
		paths = append(paths, r.EditedImagePath)
	}
	return paths
}

// Clone returns a deep copy of the album.
func (a Album) Clone() Album {
	out := a
	out.Records = make([]Record, len(a.Records))
	for i, r := range a.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	return out
}

// Metadata persists the whole album collection.
type Metadata interface {
	LoadAll(ctx context.Context) ([]Album, error)
	SaveAll(ctx context.Context, albums []Album) error
}

// Quarantiner is implemented by metadata stores that can move an unreadable
// collection aside so it survives the next save.
type Quarantiner interface {
	Quarantine(ctx context.Context) (string, error)
}

// Assets stores raw image bytes keyed by relative path. Load reports a
// missing asset with ok == false and a nil error; Delete of a missing asset
// succeeds.
type Assets interface {
	Save(ctx context.Context, path string, data []byte) error
	Load(ctx context.Context, path string) (data []byte, ok bool, err error)
	Delete(ctx context.Context, path string) error
}

// Preferences holds small scalar facts that live outside the album
// collection.
type Preferences interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AssetIOError reports a filesystem failure while reading, writing or
// deleting an image asset.
type AssetIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *AssetIOError) Error() string {
	return fmt.Sprintf("storage: %s asset %q: %v", e.Op, e.Path, e.Err)
}

func (e *AssetIOError) Unwrap() error {
	return e.Err
}

// CorruptStoreError reports a metadata file that exists but cannot be
// parsed. The file is left as-is for manual recovery.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("storage: corrupt metadata file %q: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// IsValidAssetPath reports whether path is an acceptable relative asset path:
// no absolute paths, no parent references and only [A-Za-z0-9._/-].
func IsValidAssetPath(path string) bool {
	if path == "" || path == "." {
		return false
	}

	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}

	if strings.Contains(path, "..") {
		return false
	}

	for _, r := range path {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' && r != '/' {
			return false
		}
	}

	return true
}
