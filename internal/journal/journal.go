// Package journal owns the in-memory working set of months and routes
// every metadata mutation through the debounced synchronizer.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jiho-dev/recap-archive/internal/model"
	"github.com/jiho-dev/recap-archive/internal/store"
	"github.com/jiho-dev/recap-archive/internal/syncer"
)

var (
	// ErrMonthNotFound is returned for an unknown (id, year) pair.
	ErrMonthNotFound = errors.New("month not found")

	// ErrMemoryNotFound is returned for an unknown memory id.
	ErrMemoryNotFound = errors.New("memory not found")
)

// Journal is the mutation layer over the snapshot. The syncer is the
// sole metadata writer; Journal never calls PutSnapshot directly.
type Journal struct {
	store store.ObjectStore
	sync  *syncer.Syncer
	log   zerolog.Logger

	mu   sync.Mutex
	snap *model.Snapshot
}

// New creates a Journal. Call Load before using it.
func New(st store.ObjectStore, sy *syncer.Syncer, log zerolog.Logger) *Journal {
	return &Journal{store: st, sync: sy, log: log}
}

// Load reads the persisted snapshot, falling back to the default
// calendar when nothing has been stored yet.
func (j *Journal) Load(ctx context.Context) error {
	snap, err := j.store.GetSnapshot(ctx)
	if errors.Is(err, store.ErrNotFound) {
		snap = model.DefaultMonths()
	} else if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	j.mu.Lock()
	j.snap = snap
	j.mu.Unlock()

	j.log.Info().Int("months", len(snap.Months)).Msg("journal loaded")
	return nil
}

// Snapshot returns a deep copy of the working set.
func (j *Journal) Snapshot() *model.Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return cloneSnapshot(j.snap)
}

// Month returns a copy of the bucket with the given compound key.
func (j *Journal) Month(id, year int) (*model.MonthData, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	m := j.snap.Month(id, year)
	if m == nil {
		return nil, ErrMonthNotFound
	}
	c := cloneMonth(*m)
	return &c, nil
}

// AddMemories prepends new memories to the target month, most recent
// first, and schedules a sync.
func (j *Journal) AddMemories(id, year int, mems []model.Memory) error {
	if len(mems) == 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	m := j.snap.Month(id, year)
	if m == nil {
		return ErrMonthNotFound
	}
	m.Memories = append(append([]model.Memory{}, mems...), m.Memories...)
	j.scheduleLocked()
	return nil
}

// UpdateCaption rewrites the caption of the memory with the given id.
func (j *Journal) UpdateCaption(memoryID, caption string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	m, idx := j.snap.FindMemory(memoryID)
	if m == nil {
		return ErrMemoryNotFound
	}
	m.Memories[idx].Caption = caption
	j.scheduleLocked()
	return nil
}

// DeleteMemory removes the memory from its month and cascades to the
// corresponding blob. Blob deletion failure does not roll back the
// metadata removal.
func (j *Journal) DeleteMemory(ctx context.Context, memoryID string) error {
	j.mu.Lock()
	m, idx := j.snap.FindMemory(memoryID)
	if m == nil {
		j.mu.Unlock()
		return ErrMemoryNotFound
	}
	m.Memories = append(m.Memories[:idx], m.Memories[idx+1:]...)
	j.scheduleLocked()
	j.mu.Unlock()

	if err := j.store.DeleteBlob(ctx, memoryID); err != nil {
		j.log.Warn().Err(err).Str("memory_id", memoryID).Msg("blob cascade delete failed")
	}
	return nil
}

// SetAnalysis replaces the month's analysis whole.
func (j *Journal) SetAnalysis(id, year int, a *model.Analysis) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	m := j.snap.Month(id, year)
	if m == nil {
		return ErrMonthNotFound
	}
	m.Analysis = a
	j.scheduleLocked()
	return nil
}

// Reorder moves the memory at src to dst within the month's list.
func (j *Journal) Reorder(id, year, src, dst int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	m := j.snap.Month(id, year)
	if m == nil {
		return ErrMonthNotFound
	}
	if src == dst {
		return nil
	}
	next, err := Move(m.Memories, src, dst)
	if err != nil {
		return err
	}
	m.Memories = next
	j.scheduleLocked()
	return nil
}

// ReorderByID re-resolves the dragged memory's position by id at apply
// time, so a concurrent delete cannot leave the caller holding a stale
// source index.
func (j *Journal) ReorderByID(id, year int, memoryID string, dst int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	m := j.snap.Month(id, year)
	if m == nil {
		return ErrMonthNotFound
	}
	src := -1
	for i := range m.Memories {
		if m.Memories[i].ID == memoryID {
			src = i
			break
		}
	}
	if src == -1 {
		return ErrMemoryNotFound
	}
	if dst >= len(m.Memories) {
		dst = len(m.Memories) - 1
	}
	if dst < 0 {
		dst = 0
	}
	if src == dst {
		return nil
	}
	next, err := Move(m.Memories, src, dst)
	if err != nil {
		return err
	}
	m.Memories = next
	j.scheduleLocked()
	return nil
}

// Reset replaces the working set with the default calendar and
// schedules a sync. Blobs are removed separately by the caller.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.snap = model.DefaultMonths()
	j.scheduleLocked()
}

// scheduleLocked hands the syncer a copy of the working set. Callers
// hold j.mu.
func (j *Journal) scheduleLocked() {
	j.sync.Schedule(cloneSnapshot(j.snap))
}

func cloneSnapshot(s *model.Snapshot) *model.Snapshot {
	out := &model.Snapshot{SchemaVersion: s.SchemaVersion, Months: make([]model.MonthData, len(s.Months))}
	for i, m := range s.Months {
		out.Months[i] = cloneMonth(m)
	}
	return out
}

func cloneMonth(m model.MonthData) model.MonthData {
	mems := make([]model.Memory, len(m.Memories))
	copy(mems, m.Memories)
	m.Memories = mems
	if m.Analysis != nil {
		a := *m.Analysis
		a.KeyHighlights = append([]string{}, m.Analysis.KeyHighlights...)
		m.Analysis = &a
	}
	return m
}
