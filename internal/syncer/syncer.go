// Package syncer coalesces bursts of metadata mutations into a single
// persisted write after a quiet period.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jiho-dev/recap-archive/internal/model"
	"github.com/jiho-dev/recap-archive/internal/store"
)

// DefaultQuiet is the debounce window. Metadata mutates on every
// caption keystroke; one write per quiet period is plenty.
const DefaultQuiet = 500 * time.Millisecond

// Syncer is the sole writer of the metadata snapshot. All mutation
// paths route through Schedule rather than writing the store directly.
type Syncer struct {
	store store.ObjectStore
	quiet time.Duration
	log   zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *model.Snapshot
	lastErr error
}

// New creates a Syncer persisting through st after quiet elapses with
// no further Schedule calls. A non-positive quiet uses DefaultQuiet.
func New(st store.ObjectStore, quiet time.Duration, log zerolog.Logger) *Syncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Syncer{store: st, quiet: quiet, log: log}
}

// Schedule records the latest snapshot and restarts the quiet-period
// timer. Only the snapshot from the most recent call within the window
// is persisted: a call arriving before the timer fires cancels the
// pending write and restarts the window.
func (s *Syncer) Schedule(snap *model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = snap
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quiet, s.fire)
}

func (s *Syncer) fire() {
	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if snap == nil {
		return
	}
	s.write(snap)
}

func (s *Syncer) write(snap *model.Snapshot) {
	err := s.store.PutSnapshot(context.Background(), snap)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Msg("snapshot sync failed")
		return
	}
	s.log.Debug().Int("months", len(snap.Months)).Msg("snapshot synced")
}

// Flush persists any pending snapshot immediately and cancels the
// timer. Used on shutdown so the last burst is not lost.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if snap == nil {
		return nil
	}
	if err := s.store.PutSnapshot(ctx, snap); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	return nil
}

// Stop cancels any pending write without persisting it.
func (s *Syncer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Err returns the most recent asynchronous write error, if any.
func (s *Syncer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
