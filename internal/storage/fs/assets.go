// Package fs stores image assets as individual files below a root directory.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/natefinch/atomic"

	"github.com/Oxyrus/photojournal/internal/storage"
)

// Store is a local filesystem implementation of storage.Assets.
type Store struct {
	root  string
	cache *ristretto.Cache

	// mu orders cache fills in Load against writes and removals, so a
	// deleted or replaced asset is never cached after the fact.
	mu sync.RWMutex
}

// New prepares root for asset storage. When cacheBytes is positive, loaded
// assets are kept in an in-memory cache bounded by that many bytes.
func New(root string, cacheBytes int64) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("fs: root must not be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("fs: resolve root %q: %w", root, err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("fs: create root %q: %w", abs, err)
	}

	check := filepath.Join(abs, ".write_test_"+strconv.FormatInt(time.Now().UnixNano(), 10))
	f, err := os.Create(check)
	if err != nil {
		return nil, fmt.Errorf("fs: root %q is not writable: %w", abs, err)
	}
	_ = f.Close()
	_ = os.Remove(check)

	s := &Store{root: abs + string(os.PathSeparator)}

	if cacheBytes > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 10_000,
			MaxCost:     cacheBytes,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("fs: create cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// Root returns the absolute asset root, with a trailing separator.
func (s *Store) Root() string {
	return s.root
}

// Save writes data to path, replacing any previous content.
func (s *Store) Save(ctx context.Context, path string, data []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return &storage.AssetIOError{Op: "save", Path: path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &storage.AssetIOError{Op: "save", Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &storage.AssetIOError{Op: "save", Path: path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := atomic.WriteFile(full, bytes.NewReader(data)); err != nil {
		return &storage.AssetIOError{Op: "save", Path: path, Err: err}
	}

	if s.cache != nil {
		s.cache.Del(path)
	}

	return nil
}

// Load returns the bytes stored at path. A missing file yields ok == false
// and no error. The returned slice may be shared with the cache and must not
// be modified.
func (s *Store) Load(ctx context.Context, path string) ([]byte, bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, false, &storage.AssetIOError{Op: "load", Path: path, Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache != nil {
		if v, found := s.cache.Get(path); found {
			if data, ok := v.([]byte); ok {
				return data, true, nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, false, &storage.AssetIOError{Op: "load", Path: path, Err: err}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &storage.AssetIOError{Op: "load", Path: path, Err: err}
	}

	if s.cache != nil && s.cache.Set(path, data, int64(len(data))) {
		s.cache.Wait()
	}

	return data, true, nil
}

// Delete removes the file at path. Deleting a missing file is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return &storage.AssetIOError{Op: "delete", Path: path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		s.cache.Del(path)
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &storage.AssetIOError{Op: "delete", Path: path, Err: err}
	}

	return nil
}

// Exists reports whether a file is stored at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, &storage.AssetIOError{Op: "stat", Path: path, Err: err}
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &storage.AssetIOError{Op: "stat", Path: path, Err: err}
	}
	return !info.IsDir(), nil
}

// Close releases the cache.
func (s *Store) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	return nil
}

func (s *Store) resolve(path string) (string, error) {
	if !storage.IsValidAssetPath(path) {
		return "", storage.ErrInvalidPath
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, s.root) {
		return "", storage.ErrInvalidPath
	}
	return full, nil
}

var _ storage.Assets = (*Store)(nil)
