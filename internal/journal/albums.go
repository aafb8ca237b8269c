package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Oxyrus/photojournal/internal/storage"
)

// CreateAlbum appends a new album, persists the collection and selects it.
func (m *Manager) CreateAlbum(ctx context.Context, name string) (storage.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Album{}, validationError("album name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	album := storage.Album{
		ID:      uuid.NewString(),
		Name:    name,
		Records: []storage.Record{},
	}

	next := append(cloneAlbums(m.albums), album)
	if err := m.commitLocked(ctx, next); err != nil {
		return storage.Album{}, err
	}

	if err := m.prefs.Set(ctx, LastSelectedAlbumKey, album.ID); err != nil {
		m.logger.Warn("failed to remember selected album", "albumID", album.ID, "error", err)
	}
	m.selectedID = album.ID

	m.logger.Info("album created", "albumID", album.ID, "name", album.Name)
	m.publishLocked()

	return album.Clone(), nil
}

// SelectAlbum makes the album with the given id current and remembers it
// across restarts.
func (m *Manager) SelectAlbum(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(id) < 0 {
		return fmt.Errorf("album %q: %w", id, storage.ErrNotFound)
	}

	if err := m.prefs.Set(ctx, LastSelectedAlbumKey, id); err != nil {
		return fmt.Errorf("journal: remember selected album: %w", err)
	}
	m.selectedID = id

	m.logger.Debug("album selected", "albumID", id)
	m.publishLocked()

	return nil
}

// ReorderAlbums moves the album at index from so that it ends up at index to.
func (m *Manager) ReorderAlbums(ctx context.Context, from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.albums)
	if from < 0 || from >= n || to < 0 || to >= n {
		return validationError("reorder %d -> %d out of range for %d albums", from, to, n)
	}
	if from == to {
		return nil
	}

	next := cloneAlbums(m.albums)
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next[:to], append([]storage.Album{moved}, next[to:]...)...)

	if err := m.commitLocked(ctx, next); err != nil {
		return err
	}

	m.logger.Info("albums reordered", "albumID", moved.ID, "from", from, "to", to)
	m.publishLocked()

	return nil
}

// DeleteAlbum removes the album at the given display position together with
// the assets of every record it holds.
func (m *Manager) DeleteAlbum(ctx context.Context, at int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.deleteAlbumLocked(ctx, at)
}

// DeleteAlbumByID removes the album with the given id.
func (m *Manager) DeleteAlbumByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	at := m.indexOf(id)
	if at < 0 {
		return fmt.Errorf("album %q: %w", id, storage.ErrNotFound)
	}
	return m.deleteAlbumLocked(ctx, at)
}

func (m *Manager) deleteAlbumLocked(ctx context.Context, at int) error {
	if at < 0 || at >= len(m.albums) {
		return validationError("album index %d out of range for %d albums", at, len(m.albums))
	}

	removed := m.albums[at]
	next := cloneAlbums(m.albums)
	next = append(next[:at], next[at+1:]...)

	if err := m.commitLocked(ctx, next); err != nil {
		return err
	}

	for _, rec := range removed.Records {
		m.deleteAssets(ctx, rec.AssetPaths()...)
	}

	if m.selectedID == removed.ID {
		m.selectedID = ""
		m.selectedTag = ""
		if err := m.prefs.Delete(ctx, LastSelectedAlbumKey); err != nil {
			m.logger.Warn("failed to forget selected album", "albumID", removed.ID, "error", err)
		}
	}

	m.logger.Info("album deleted", "albumID", removed.ID, "records", len(removed.Records))
	m.publishLocked()

	return nil
}
