package journal

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jiho-dev/recap-archive/internal/model"
	"github.com/jiho-dev/recap-archive/internal/store"
	"github.com/jiho-dev/recap-archive/internal/syncer"
)

func newTestJournal(t *testing.T) (*Journal, *store.SQLiteStore, *syncer.Syncer) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sy := syncer.New(st, 10*time.Millisecond, zerolog.Nop())
	t.Cleanup(sy.Stop)

	j := New(st, sy, zerolog.Nop())
	if err := j.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return j, st, sy
}

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	j, _, _ := newTestJournal(t)

	snap := j.Snapshot()
	if len(snap.Months) != 13 {
		t.Fatalf("expected 13 default months, got %d", len(snap.Months))
	}
	if snap.Months[0].DisplayName != "DEC 24" {
		t.Errorf("expected DEC 24 first, got %s", snap.Months[0].DisplayName)
	}
}

func TestAddMemoriesPrepends(t *testing.T) {
	j, _, _ := newTestJournal(t)

	if err := j.AddMemories(7, 2025, mems("first")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := j.AddMemories(7, 2025, mems("second", "third")); err != nil {
		t.Fatalf("add: %v", err)
	}

	m, err := j.Month(7, 2025)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if !reflect.DeepEqual(ids(m.Memories), []string{"second", "third", "first"}) {
		t.Errorf("expected newest batch first, got %v", ids(m.Memories))
	}
}

func TestCaptionEditPersistsThroughSyncer(t *testing.T) {
	j, st, sy := newTestJournal(t)

	j.AddMemories(3, 2025, mems("m1"))
	if err := j.UpdateCaption("m1", "spring walk"); err != nil {
		t.Fatalf("caption: %v", err)
	}
	if err := sy.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	persisted, err := st.GetSnapshot(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if persisted.Month(3, 2025).Memories[0].Caption != "spring walk" {
		t.Errorf("caption edit not persisted")
	}
}

func TestDeleteCascadesToBlob(t *testing.T) {
	j, st, _ := newTestJournal(t)
	ctx := context.Background()

	st.PutBlob(ctx, "m1", []byte("bytes"))
	j.AddMemories(1, 2025, mems("m1"))

	if err := j.DeleteMemory(ctx, "m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	m, _ := j.Month(1, 2025)
	if len(m.Memories) != 0 {
		t.Errorf("memory not removed from month")
	}
	if _, err := st.GetBlob(ctx, "m1"); err != store.ErrNotFound {
		t.Errorf("expected blob gone, got %v", err)
	}
}

func TestDeleteOnlyMemoryRoundTrips(t *testing.T) {
	j, st, sy := newTestJournal(t)
	ctx := context.Background()

	j.AddMemories(2, 2025, mems("only"))
	j.DeleteMemory(ctx, "only")
	if err := sy.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	persisted, err := st.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	feb := persisted.Month(2, 2025)
	if feb.Memories == nil || len(feb.Memories) != 0 {
		t.Errorf("empty month did not round-trip as empty list: %#v", feb.Memories)
	}
}

func TestSetAnalysisReplacesWhole(t *testing.T) {
	j, _, _ := newTestJournal(t)

	j.SetAnalysis(5, 2025, &model.Analysis{Story: "v1", Mood: "calm", KeyHighlights: []string{"a", "b", "c"}})
	j.SetAnalysis(5, 2025, &model.Analysis{Story: "v2", Mood: "bright", KeyHighlights: []string{"x", "y", "z"}})

	m, _ := j.Month(5, 2025)
	if m.Analysis.Story != "v2" || m.Analysis.KeyHighlights[0] != "x" {
		t.Errorf("analysis not fully replaced: %+v", m.Analysis)
	}
}

func TestReorderByIDResolvesAtApplyTime(t *testing.T) {
	j, _, _ := newTestJournal(t)
	ctx := context.Background()

	j.AddMemories(8, 2025, mems("a", "b", "c", "d"))

	// A concurrent delete shrank the list; the stale destination is
	// clamped instead of failing.
	j.DeleteMemory(ctx, "d")
	if err := j.ReorderByID(8, 2025, "a", 3); err != nil {
		t.Fatalf("reorder by id: %v", err)
	}

	m, _ := j.Month(8, 2025)
	if !reflect.DeepEqual(ids(m.Memories), []string{"b", "c", "a"}) {
		t.Errorf("got %v", ids(m.Memories))
	}

	if err := j.ReorderByID(8, 2025, "gone", 0); err != ErrMemoryNotFound {
		t.Errorf("expected ErrMemoryNotFound, got %v", err)
	}
}

func TestReorderUnknownMonth(t *testing.T) {
	j, _, _ := newTestJournal(t)
	if err := j.Reorder(6, 1999, 0, 1); err != ErrMonthNotFound {
		t.Errorf("expected ErrMonthNotFound, got %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	j, _, _ := newTestJournal(t)
	j.AddMemories(4, 2025, mems("m1"))

	snap := j.Snapshot()
	snap.Month(4, 2025).Memories[0].Caption = "tampered"

	m, _ := j.Month(4, 2025)
	if m.Memories[0].Caption == "tampered" {
		t.Error("Snapshot returned a live reference to the working set")
	}
}
