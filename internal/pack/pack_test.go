package pack

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jiho-dev/recap-archive/internal/model"
	"github.com/jiho-dev/recap-archive/internal/store"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "db.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newStore(t)

	snap := model.DefaultMonths()
	snap.Month(7, 2025).Memories = []model.Memory{
		{ID: "mem-1", Type: "image", Caption: "seaside", Tags: []string{"image"}},
	}
	snap.Month(7, 2025).Analysis = &model.Analysis{
		Story: "짧은 여름", Mood: "평온한", KeyHighlights: []string{"a", "b", "c"},
	}
	if err := src.PutSnapshot(ctx, snap); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	src.PutBlob(ctx, "mem-1", []byte("jpeg bytes"))
	src.PutBlob(ctx, model.BGMBlobKey, []byte("mp3 bytes"))

	var buf bytes.Buffer
	if err := Export(ctx, src, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newStore(t)
	if err := Import(ctx, dst, bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
		t.Fatalf("import: %v", err)
	}

	got, err := dst.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("snapshot did not round-trip:\ngot  %+v\nwant %+v", got, snap)
	}

	for key, want := range map[string]string{"mem-1": "jpeg bytes", model.BGMBlobKey: "mp3 bytes"} {
		data, err := dst.GetBlob(ctx, key)
		if err != nil {
			t.Fatalf("blob %s: %v", key, err)
		}
		if string(data) != want {
			t.Errorf("blob %s corrupted", key)
		}
	}
}

func TestExportEmptyStore(t *testing.T) {
	ctx := context.Background()
	src := newStore(t)

	var buf bytes.Buffer
	if err := Export(ctx, src, &buf); err != nil {
		t.Fatalf("export of empty store: %v", err)
	}

	dst := newStore(t)
	if err := Import(ctx, dst, bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, err := dst.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Months) != 13 {
		t.Errorf("expected default calendar, got %d months", len(got.Months))
	}
}

func TestImportGarbageRejected(t *testing.T) {
	dst := newStore(t)
	junk := []byte("this is not a zip archive")
	if err := Import(context.Background(), dst, bytes.NewReader(junk), int64(len(junk))); err == nil {
		t.Error("expected error importing garbage")
	}
}
