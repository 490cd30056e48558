// Package model defines the core journal data types.
package model

import "fmt"

// SchemaVersion is the current persisted snapshot schema version.
const SchemaVersion = 2

// Media kinds for Memory.Type.
const (
	KindImage = "image"
	KindVideo = "video"
)

// BGMBlobKey is the reserved blob key for the user's custom audio track.
const BGMBlobKey = "custom_bgm_blob"

// Memory represents one stored media item. The blob holding its bytes
// lives in the blob store under the same id.
type Memory struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"` // "image" or "video"
	Caption string   `json:"caption"`
	Tags    []string `json:"tags,omitempty"`

	// URL is an ephemeral display reference regenerated each session
	// from the stored blob. Never persisted.
	URL string `json:"-"`
}

// Analysis is the generated narrative attached to a month. It is
// replaced whole, never partially merged.
type Analysis struct {
	Story         string   `json:"story"`
	Mood          string   `json:"mood"`
	KeyHighlights []string `json:"keyHighlights"`
}

// MonthData is one calendar bucket. Identity is the compound key
// (ID, Year), so the same month number can exist for two years.
// Memories order is meaningful: it is the display order, most recent
// ingest first.
type MonthData struct {
	ID          int       `json:"id"`
	Year        int       `json:"year"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Color       string    `json:"color"`
	Gradient    string    `json:"gradient"`
	Quote       string    `json:"quote"`
	Memories    []Memory  `json:"memories"`
	Analysis    *Analysis `json:"analysis,omitempty"`
}

// Key returns the month's compound identity as a string, e.g. "2025-07".
func (m *MonthData) Key() string {
	return MonthKey(m.ID, m.Year)
}

// MonthKey formats a (month id, year) pair as "YYYY-MM".
func MonthKey(id, year int) string {
	return fmt.Sprintf("%04d-%02d", year, id)
}

// Snapshot is the full ordered sequence of MonthData, the sole unit of
// metadata durability. Every mutation rewrites the whole document.
type Snapshot struct {
	SchemaVersion int         `json:"schemaVersion"`
	Months        []MonthData `json:"months"`
}

// Month returns the bucket with the given compound key, or nil.
func (s *Snapshot) Month(id, year int) *MonthData {
	for i := range s.Months {
		if s.Months[i].ID == id && s.Months[i].Year == year {
			return &s.Months[i]
		}
	}
	return nil
}

// FindMemory returns the month and index holding the memory with the
// given id, or (nil, -1) when absent.
func (s *Snapshot) FindMemory(id string) (*MonthData, int) {
	for i := range s.Months {
		for j := range s.Months[i].Memories {
			if s.Months[i].Memories[j].ID == id {
				return &s.Months[i], j
			}
		}
	}
	return nil, -1
}

// Normalize upgrades a snapshot loaded from an older store and enforces
// the one-bucket-per-(id,year) invariant, keeping the first occurrence.
func (s *Snapshot) Normalize() {
	seen := make(map[string]bool, len(s.Months))
	out := s.Months[:0]
	for _, m := range s.Months {
		k := m.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		if m.Memories == nil {
			m.Memories = []Memory{}
		}
		out = append(out, m)
	}
	s.Months = out
	s.SchemaVersion = SchemaVersion
}
