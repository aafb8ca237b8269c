package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Oxyrus/photojournal/internal/storage"
)

// NewRecord builds a record with a fresh id and the asset paths derived from
// it. Tags are copied with commas stripped.
func (m *Manager) NewRecord(date time.Time, description string, tags []string) storage.Record {
	id := uuid.NewString()
	if date.IsZero() {
		date = m.now()
	}
	return storage.Record{
		ID:                id,
		Date:              date,
		OriginalImagePath: originalPath(id),
		EditedImagePath:   editedPath(id),
		Description:       description,
		Tags:              cleanTags(tags),
	}
}

// AddRecord stores the image bytes and appends rec to the selected album.
// The edited image is kept only when it differs from the original. Assets are
// written before the metadata that references them; if either step fails the
// collection is unchanged.
func (m *Manager) AddRecord(ctx context.Context, rec storage.Record, original, edited []byte) (storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.selectedIndex()
	if idx < 0 {
		return storage.Record{}, ErrNoSelection
	}

	rec, err := m.prepareRecordLocked(rec, original, edited)
	if err != nil {
		return storage.Record{}, err
	}

	written, err := m.writeAssets(ctx, rec, original, edited)
	if err != nil {
		return storage.Record{}, err
	}

	next := cloneAlbums(m.albums)
	next[idx].Records = append(next[idx].Records, rec.Clone())

	if err := m.commitLocked(ctx, next); err != nil {
		m.deleteAssets(ctx, written...)
		return storage.Record{}, err
	}

	m.logger.Info("record added", "albumID", next[idx].ID, "recordID", rec.ID, "edited", rec.HasEdit())
	m.publishLocked()

	return rec, nil
}

// DeleteRecord removes the record with the given id from the selected album
// and deletes its assets.
func (m *Manager) DeleteRecord(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.selectedIndex()
	if idx < 0 {
		return ErrNoSelection
	}

	pos := recordIndex(m.albums[idx].Records, id)
	if pos < 0 {
		return fmt.Errorf("record %q: %w", id, storage.ErrNotFound)
	}

	removed := m.albums[idx].Records[pos]
	next := cloneAlbums(m.albums)
	next[idx].Records = append(next[idx].Records[:pos], next[idx].Records[pos+1:]...)

	if err := m.commitLocked(ctx, next); err != nil {
		return err
	}

	m.deleteAssets(ctx, removed.AssetPaths()...)

	m.logger.Info("record deleted", "albumID", next[idx].ID, "recordID", id)
	m.publishLocked()

	return nil
}

// RecordForToday returns the first record of the selected album whose date
// falls on the current calendar day.
func (m *Manager) RecordForToday() (storage.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos := m.todayIndexLocked()
	if pos < 0 {
		return storage.Record{}, false
	}
	return m.albums[m.selectedIndex()].Records[pos].Clone(), true
}

// ReplaceTodayRecord swaps today's record in the selected album for rec in a
// single metadata write. The new assets are written first and the old ones
// are removed only after the swap is persisted. When the album has no record
// for today, rec is appended.
func (m *Manager) ReplaceTodayRecord(ctx context.Context, rec storage.Record, original, edited []byte) (storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.selectedIndex()
	if idx < 0 {
		return storage.Record{}, ErrNoSelection
	}

	rec, err := m.prepareRecordLocked(rec, original, edited)
	if err != nil {
		return storage.Record{}, err
	}

	written, err := m.writeAssets(ctx, rec, original, edited)
	if err != nil {
		return storage.Record{}, err
	}

	next := cloneAlbums(m.albums)
	var old *storage.Record
	if pos := m.todayIndexLocked(); pos >= 0 {
		r := next[idx].Records[pos]
		old = &r
		next[idx].Records = append(next[idx].Records[:pos], next[idx].Records[pos+1:]...)
	}
	next[idx].Records = append(next[idx].Records, rec.Clone())

	if err := m.commitLocked(ctx, next); err != nil {
		m.deleteAssets(ctx, written...)
		return storage.Record{}, err
	}

	if old != nil {
		m.deleteAssets(ctx, old.AssetPaths()...)
		m.logger.Info("record replaced", "albumID", next[idx].ID, "oldRecordID", old.ID, "recordID", rec.ID)
	} else {
		m.logger.Info("record added", "albumID", next[idx].ID, "recordID", rec.ID, "edited", rec.HasEdit())
	}
	m.publishLocked()

	return rec, nil
}

// Record finds a record by id across all albums.
func (m *Manager) Record(id string) (storage.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.albums {
		if pos := recordIndex(a.Records, id); pos >= 0 {
			return a.Records[pos].Clone(), true
		}
	}
	return storage.Record{}, false
}

// prepareRecordLocked validates rec against the collection and settles its
// edited image path.
func (m *Manager) prepareRecordLocked(rec storage.Record, original, edited []byte) (storage.Record, error) {
	rec = rec.Clone()

	if strings.TrimSpace(rec.ID) == "" {
		return storage.Record{}, validationError("record id is required")
	}
	if len(original) == 0 {
		return storage.Record{}, validationError("original image is required")
	}
	if rec.OriginalImagePath == "" {
		rec.OriginalImagePath = originalPath(rec.ID)
	}
	if !storage.IsValidAssetPath(rec.OriginalImagePath) {
		return storage.Record{}, validationError("invalid original image path %q", rec.OriginalImagePath)
	}
	for _, a := range m.albums {
		if recordIndex(a.Records, rec.ID) >= 0 {
			return storage.Record{}, validationError("record %q already exists", rec.ID)
		}
	}

	if hasDistinctEdit(original, edited) {
		if rec.EditedImagePath == "" {
			rec.EditedImagePath = editedPath(rec.ID)
		}
		if !storage.IsValidAssetPath(rec.EditedImagePath) || rec.EditedImagePath == rec.OriginalImagePath {
			return storage.Record{}, validationError("invalid edited image path %q", rec.EditedImagePath)
		}
	} else {
		rec.EditedImagePath = ""
	}

	if rec.Date.IsZero() {
		rec.Date = m.now()
	}
	rec.Tags = cleanTags(rec.Tags)

	// Asset paths are owned by exactly one record, including a record about
	// to be replaced.
	for _, a := range m.albums {
		for _, existing := range a.Records {
			for _, p := range existing.AssetPaths() {
				if p == rec.OriginalImagePath || (rec.HasEdit() && p == rec.EditedImagePath) {
					return storage.Record{}, validationError("asset path %q is used by record %q", p, existing.ID)
				}
			}
		}
	}

	return rec, nil
}

// writeAssets stores the original and, when the record keeps one, the edited
// image. On failure the bytes already written are removed.
func (m *Manager) writeAssets(ctx context.Context, rec storage.Record, original, edited []byte) ([]string, error) {
	if err := m.assets.Save(ctx, rec.OriginalImagePath, original); err != nil {
		return nil, assetError("write", rec.OriginalImagePath, err)
	}
	written := []string{rec.OriginalImagePath}

	if rec.HasEdit() {
		if err := m.assets.Save(ctx, rec.EditedImagePath, edited); err != nil {
			m.deleteAssets(ctx, written...)
			return nil, assetError("write", rec.EditedImagePath, err)
		}
		written = append(written, rec.EditedImagePath)
	}

	return written, nil
}

func (m *Manager) todayIndexLocked() int {
	idx := m.selectedIndex()
	if idx < 0 {
		return -1
	}
	now := m.now()
	for i, r := range m.albums[idx].Records {
		if sameDay(r.Date, now, m.loc) {
			return i
		}
	}
	return -1
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func hasDistinctEdit(original, edited []byte) bool {
	return len(edited) > 0 && !bytes.Equal(original, edited)
}

func assetError(op, path string, err error) error {
	var ioErr *storage.AssetIOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &storage.AssetIOError{Op: op, Path: path, Err: err}
}

func recordIndex(records []storage.Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func originalPath(id string) string {
	return id + ".jpg"
}

func editedPath(id string) string {
	return id + "_edited.jpg"
}
