// Package store provides the local object store: a metadata snapshot
// document plus a flat blob collection, backed by SQLite.
package store

import (
	"context"
	"errors"

	"github.com/jiho-dev/recap-archive/internal/model"
)

// ErrNotFound is returned when a snapshot or blob is absent. For blobs
// this is a normal transient state (media not yet loaded), never
// corruption.
var ErrNotFound = errors.New("not found")

// ObjectStore defines the persistence interface.
type ObjectStore interface {
	// PutSnapshot rewrites the full metadata snapshot document.
	PutSnapshot(ctx context.Context, snap *model.Snapshot) error

	// GetSnapshot reads the snapshot, migrating older stored shapes.
	// Returns ErrNotFound when nothing has been persisted yet.
	GetSnapshot(ctx context.Context) (*model.Snapshot, error)

	// PutBlob stores raw bytes under an opaque key.
	PutBlob(ctx context.Context, key string, data []byte) error

	// GetBlob reads the bytes under key, or ErrNotFound.
	GetBlob(ctx context.Context, key string) ([]byte, error)

	// DeleteBlob removes the bytes under key. Deleting an absent key
	// is not an error.
	DeleteBlob(ctx context.Context, key string) error

	// BlobKeys lists all stored blob keys.
	BlobKeys(ctx context.Context) ([]string, error)

	// Close closes the store.
	Close() error
}
