// Package pack bundles the snapshot and all referenced blobs into a
// single archive for transfer between devices, and restores it.
package pack

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jiho-dev/recap-archive/internal/model"
	"github.com/jiho-dev/recap-archive/internal/store"
)

const (
	manifestName = "manifest.json"
	snapshotName = "snapshot.json"
	blobPrefix   = "blobs/"
)

// Manifest identifies an exported package.
type Manifest struct {
	ID            string    `json:"id"`
	SchemaVersion int       `json:"schemaVersion"`
	CreatedAt     time.Time `json:"createdAt"`
	BlobCount     int       `json:"blobCount"`
}

// Export writes a zip bundle of the current snapshot plus every stored
// blob. The bundle round-trips losslessly through Import.
func Export(ctx context.Context, st store.ObjectStore, w io.Writer) error {
	snap, err := st.GetSnapshot(ctx)
	if errors.Is(err, store.ErrNotFound) {
		snap = model.DefaultMonths()
	} else if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	keys, err := st.BlobKeys(ctx)
	if err != nil {
		return fmt.Errorf("list blobs: %w", err)
	}

	zw := zip.NewWriter(w)

	manifest := Manifest{
		ID:            uuid.NewString(),
		SchemaVersion: snap.SchemaVersion,
		CreatedAt:     time.Now().UTC(),
		BlobCount:     len(keys),
	}
	if err := writeJSON(zw, manifestName, manifest); err != nil {
		return err
	}
	if err := writeJSON(zw, snapshotName, snap); err != nil {
		return err
	}

	for _, key := range keys {
		data, err := st.GetBlob(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read blob %s: %w", key, err)
		}
		f, err := zw.Create(blobPrefix + key)
		if err != nil {
			return fmt.Errorf("create entry %s: %w", key, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write entry %s: %w", key, err)
		}
	}

	return zw.Close()
}

// Import restores a bundle produced by Export: the snapshot replaces
// the stored one and every bundled blob is written back under its key.
func Import(ctx context.Context, st store.ObjectStore, r io.ReaderAt, size int64) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("open package: %w", err)
	}

	var snap *model.Snapshot
	for _, f := range zr.File {
		if f.Name != snapshotName {
			continue
		}
		data, err := readAll(f)
		if err != nil {
			return err
		}
		snap = &model.Snapshot{}
		if err := json.Unmarshal(data, snap); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
	}
	if snap == nil {
		return errors.New("package has no snapshot")
	}
	snap.Normalize()

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, blobPrefix) {
			continue
		}
		key := path.Base(f.Name)
		if key == "" || key == "." {
			continue
		}
		data, err := readAll(f)
		if err != nil {
			return err
		}
		if err := st.PutBlob(ctx, key, data); err != nil {
			return fmt.Errorf("restore blob %s: %w", key, err)
		}
	}

	if err := st.PutSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}
