// Package journal coordinates albums, records, their image assets and the
// tags attached to them. It is the only writer of both the metadata and the
// asset stores.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Oxyrus/photojournal/internal/storage"
)

// LastSelectedAlbumKey is the preference key holding the selected album id.
const LastSelectedAlbumKey = "last_selected_album"

// Options configures a Manager.
type Options struct {
	Logger      *slog.Logger
	Metadata    storage.Metadata
	Assets      storage.Assets
	Preferences storage.Preferences

	// Now defaults to time.Now.
	Now func() time.Time
	// Location decides calendar days. Defaults to time.Local.
	Location *time.Location
}

// Snapshot is an immutable view of the observable state.
type Snapshot struct {
	Albums        []storage.Album `json:"albums"`
	SelectedAlbum *storage.Album  `json:"selectedAlbum"`
	SelectedTag   string          `json:"selectedTag"`
}

// Manager owns the in-memory album collection and keeps it consistent with
// the stores. All methods are safe for concurrent use.
type Manager struct {
	logger *slog.Logger
	meta   storage.Metadata
	assets storage.Assets
	prefs  storage.Preferences
	now    func() time.Time
	loc    *time.Location

	mu          sync.Mutex
	albums      []storage.Album
	selectedID  string
	selectedTag string
	loadWarning error
	quarantined bool

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan Snapshot
}

// New loads the persisted collection and the last selected album. A corrupt
// collection is not fatal: the manager starts empty and LoadWarning reports
// the problem.
func New(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Metadata == nil || opts.Assets == nil || opts.Preferences == nil {
		return nil, errors.New("journal: metadata, assets and preferences are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	m := &Manager{
		logger: opts.Logger,
		meta:   opts.Metadata,
		assets: opts.Assets,
		prefs:  opts.Preferences,
		now:    opts.Now,
		loc:    opts.Location,
		albums: []storage.Album{},
		subs:   make(map[int]chan Snapshot),
	}

	albums, err := m.meta.LoadAll(ctx)
	if err != nil {
		var corrupt *storage.CorruptStoreError
		if !errors.As(err, &corrupt) {
			return nil, fmt.Errorf("journal: load albums: %w", err)
		}
		m.logger.Warn("album collection is corrupt, starting empty", "path", corrupt.Path, "error", corrupt.Err)
		m.loadWarning = err
	} else {
		m.albums = albums
	}

	id, ok, err := m.prefs.Get(ctx, LastSelectedAlbumKey)
	if err != nil {
		m.logger.Warn("failed to read last selected album", "error", err)
	} else if ok {
		if m.indexOf(id) >= 0 {
			m.selectedID = id
		} else {
			m.logger.Info("last selected album no longer exists", "albumID", id)
		}
	}

	m.logger.Info("journal loaded", "albums", len(m.albums), "selectedAlbumID", m.selectedID)

	return m, nil
}

// LoadWarning returns the non-fatal error met while loading, if any.
func (m *Manager) LoadWarning() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadWarning
}

// Albums returns a copy of the album collection in display order.
func (m *Manager) Albums() []storage.Album {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAlbums(m.albums)
}

// Album returns the album with the given id.
func (m *Manager) Album(id string) (storage.Album, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return storage.Album{}, false
	}
	return m.albums[i].Clone(), true
}

// IndexOfAlbum returns the display position of the album with the given id.
func (m *Manager) IndexOfAlbum(id string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	return i, i >= 0
}

// Selected returns the currently selected album, freshly read from the
// collection.
func (m *Manager) Selected() (storage.Album, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.selectedIndex()
	if i < 0 {
		return storage.Album{}, false
	}
	return m.albums[i].Clone(), true
}

// Snapshot returns the current observable state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe returns a channel that receives the newest snapshot after every
// state change. A slow reader only ever sees the latest state. The returned
// function unsubscribes and closes the channel.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
			close(ch)
		})
	}
}

// LoadAsset reads an image asset.
func (m *Manager) LoadAsset(ctx context.Context, path string) ([]byte, bool, error) {
	return m.assets.Load(ctx, path)
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{
		Albums:      cloneAlbums(m.albums),
		SelectedTag: m.selectedTag,
	}
	if i := m.selectedIndex(); i >= 0 {
		a := m.albums[i].Clone()
		s.SelectedAlbum = &a
	}
	return s
}

// publishLocked must be called with m.mu held so that snapshots are delivered
// in mutation order.
func (m *Manager) publishLocked() {
	snap := m.snapshotLocked()

	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Replace the stale pending value with the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// commitLocked persists next and makes it the in-memory collection. On
// failure nothing changes.
func (m *Manager) commitLocked(ctx context.Context, next []storage.Album) error {
	if err := m.quarantineLocked(ctx); err != nil {
		return err
	}
	if err := m.meta.SaveAll(ctx, next); err != nil {
		return fmt.Errorf("journal: save albums: %w", err)
	}
	m.albums = next
	return nil
}

// quarantineLocked preserves a collection that failed to load before it is
// replaced for the first time.
func (m *Manager) quarantineLocked(ctx context.Context) error {
	if m.loadWarning == nil || m.quarantined {
		return nil
	}
	q, ok := m.meta.(storage.Quarantiner)
	if !ok {
		m.quarantined = true
		return nil
	}

	moved, err := q.Quarantine(ctx)
	if err != nil {
		return fmt.Errorf("journal: preserve corrupt albums: %w", err)
	}
	m.quarantined = true
	m.logger.Warn("moved corrupt album collection aside", "path", moved)
	return nil
}

func (m *Manager) indexOf(id string) int {
	for i := range m.albums {
		if m.albums[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) selectedIndex() int {
	if m.selectedID == "" {
		return -1
	}
	return m.indexOf(m.selectedID)
}

// deleteAssets removes every path, logging failures.
func (m *Manager) deleteAssets(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := m.assets.Delete(ctx, p); err != nil {
			m.logger.Warn("failed to delete asset", "path", p, "error", err)
		}
	}
}

func cloneAlbums(albums []storage.Album) []storage.Album {
	out := make([]storage.Album, len(albums))
	for i, a := range albums {
		out[i] = a.Clone()
	}
	return out
}
