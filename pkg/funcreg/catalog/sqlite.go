package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists snapshots to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite snapshot store.
// The path should be a file path (e.g., "./catalog.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A :memory: database is private to its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			version INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			entry_count INTEGER NOT NULL,
			entries BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_snapshots_source
		ON snapshots(source, sequence)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(snap *Snapshot) error {
	if snap == nil || snap.ID == "" {
		return ErrInvalidSnapshot
	}

	entries, err := json.Marshal(snap.Entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	var seq int
	err = s.db.QueryRow(`
		INSERT INTO snapshots (id, source, sequence, version, created_at, entry_count, entries)
		VALUES (
			?, ?,
			COALESCE((SELECT MAX(sequence) FROM snapshots), 0) + 1,
			?, ?, ?, ?
		)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			sequence = (SELECT MAX(sequence) FROM snapshots) + 1,
			version = excluded.version,
			created_at = excluded.created_at,
			entry_count = excluded.entry_count,
			entries = excluded.entries
		RETURNING sequence
	`, snap.ID, snap.Source, snap.Version,
		snap.CreatedAt.UTC().Format(time.RFC3339Nano), len(snap.Entries), entries).Scan(&seq)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	snap.Sequence = seq
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	return s.scanOne(s.db.QueryRow(`
		SELECT id, source, sequence, version, created_at, entries
		FROM snapshots
		WHERE id = ?
	`, id))
}

// Latest implements Store.
func (s *SQLiteStore) Latest(source string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	return s.scanOne(s.db.QueryRow(`
		SELECT id, source, sequence, version, created_at, entries
		FROM snapshots
		WHERE source = ?
		ORDER BY sequence DESC
		LIMIT 1
	`, source))
}

func (s *SQLiteStore) scanOne(row *sql.Row) (*Snapshot, error) {
	var (
		snap      Snapshot
		createdAt string
		entries   []byte
	)
	err := row.Scan(&snap.ID, &snap.Source, &snap.Sequence, &snap.Version, &createdAt, &entries)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if err := json.Unmarshal(entries, &snap.Entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return &snap, nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, source, sequence, created_at, entry_count
		FROM snapshots
		ORDER BY sequence
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var createdAt string
		if err := rows.Scan(&info.ID, &info.Source, &info.Sequence, &createdAt, &info.Entries); err != nil {
			return nil, fmt.Errorf("scan snapshot info: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
