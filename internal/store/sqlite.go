package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jiho-dev/recap-archive/internal/model"
)

// metaKey is the fixed key the full snapshot document lives under.
const metaKey = "app_metadata"

// schemaVersion is the store schema version. Opening an older file
// creates whatever collections are missing without touching existing
// rows.
const schemaVersion = 2

// SQLiteStore implements ObjectStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the database at the given path. It is
// idempotent: racing openers all observe a database containing both
// collections once any opener's setup completes.
func Open(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return err
	}

	var current int
	err = s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&current)
	if err == sql.ErrNoRows {
		current = 0
	} else if err != nil {
		return err
	}

	// Each step is IF NOT EXISTS so concurrent openers are harmless.
	if current < 1 {
		_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS metadata (
			key        TEXT PRIMARY KEY,
			doc        TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`)
		if err != nil {
			return err
		}
	}
	if current < 2 {
		_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS blobs (
			key        TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			size       INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`)
		if err != nil {
			return err
		}
	}

	if current == 0 {
		_, err = s.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion)
	} else if current < schemaVersion {
		_, err = s.db.Exec(`UPDATE schema_version SET version = ?`, schemaVersion)
	}
	return err
}

func (s *SQLiteStore) PutSnapshot(ctx context.Context, snap *model.Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metadata (key, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		metaKey, string(doc), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context) (*model.Snapshot, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM metadata WHERE key = ?`, metaKey).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		// Pre-versioning stores held a bare month list.
		var months []model.MonthData
		if err2 := json.Unmarshal([]byte(doc), &months); err2 != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		snap = model.Snapshot{Months: months}
	}
	if snap.Months == nil && snap.SchemaVersion == 0 {
		// A versioned document with no months field is equally legacy.
		var months []model.MonthData
		if err2 := json.Unmarshal([]byte(doc), &months); err2 == nil {
			snap.Months = months
		}
	}
	snap.Normalize()
	return &snap, nil
}

func (s *SQLiteStore) PutBlob(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (key, data, size, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, size = excluded.size`,
		key, data, len(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetBlob(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if err != nil {
		// Read failures degrade to absent; the gallery layer treats
		// a missing blob as media still loading.
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *SQLiteStore) DeleteBlob(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) BlobKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM blobs ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
