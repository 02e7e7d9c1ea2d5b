// Package catalog persists manifests of registered handlers.
//
// A registry holds live functions that cannot be stored, but its shape can:
// which names are registered under which type and related keys, with what
// labels and positions. A Snapshot captures that shape so it can be listed,
// compared across deployments, and displayed by tooling.
package catalog

import (
	"errors"
	"time"
)

// Store persists snapshots.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a snapshot and assigns its Sequence.
	// Overwrites if a snapshot with the same ID already exists.
	Save(s *Snapshot) error

	// Load retrieves a snapshot by ID.
	// Returns ErrNotFound if it doesn't exist.
	Load(id string) (*Snapshot, error)

	// Latest returns the most recently saved snapshot for source.
	// Returns ErrNotFound if source has no snapshots.
	Latest(source string) (*Snapshot, error)

	// List returns metadata for all snapshots, ordered by sequence.
	// Returns empty slice (not error) if nothing was saved.
	List() ([]Info, error)

	// Delete removes a snapshot.
	// Returns nil if it doesn't exist.
	Delete(id string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides metadata without loading entries.
type Info struct {
	ID        string
	Source    string
	Sequence  int
	CreatedAt time.Time
	Entries   int
}

// Sentinel errors for catalog operations.
var (
	// ErrNotFound indicates a snapshot doesn't exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("catalog store closed")

	// ErrInvalidSnapshot indicates a nil snapshot or one without an ID.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
