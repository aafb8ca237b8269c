package journal

import (
	"sort"
	"strings"

	"github.com/Oxyrus/photojournal/internal/storage"
)

// TagCount is the number of records in an album carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts tallies tag occurrences across the selected album, most frequent
// first and alphabetical among equals.
func (m *Manager) TagCounts() []TagCount {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.selectedIndex()
	if idx < 0 {
		return []TagCount{}
	}

	freq := make(map[string]int)
	for _, r := range m.albums[idx].Records {
		for _, tag := range r.Tags {
			freq[tag]++
		}
	}

	counts := make([]TagCount, 0, len(freq))
	for tag, n := range freq {
		counts = append(counts, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Tag < counts[j].Tag
	})

	return counts
}

// RecordsWithTag returns the selected album's records carrying tag, in album
// order.
func (m *Manager) RecordsWithTag(tag string) []storage.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []storage.Record{}
	idx := m.selectedIndex()
	if idx < 0 {
		return out
	}

	for _, r := range m.albums[idx].Records {
		for _, t := range r.Tags {
			if t == tag {
				out = append(out, r.Clone())
				break
			}
		}
	}
	return out
}

// SelectedTag returns the active tag filter, empty when none.
func (m *Manager) SelectedTag() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedTag
}

// SetSelectedTag sets the active tag filter. It is not persisted.
func (m *Manager) SetSelectedTag(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tag = strings.TrimSpace(tag)
	if tag == m.selectedTag {
		return
	}
	m.selectedTag = tag
	m.publishLocked()
}

// EditTag returns a copy of tags with the entry at index replaced by value.
// Commas are removed from value since they separate tags in the editor.
func EditTag(tags []string, index int, value string) ([]string, error) {
	if index < 0 || index >= len(tags) {
		return nil, validationError("tag index %d out of range for %d tags", index, len(tags))
	}
	out := append([]string(nil), tags...)
	out[index] = stripCommas(value)
	return out, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(stripCommas(t))
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
