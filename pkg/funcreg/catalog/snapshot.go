package catalog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Version is the current snapshot format version.
// Increment when making breaking changes to the snapshot structure.
const Version = 1

// Entry describes one registered handler without the handler itself.
type Entry struct {
	TypeKey  string `json:"type_key"`
	Related  string `json:"related,omitempty"`
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Position int    `json:"position,omitempty"`
	// Order is the entry's index within its scope.
	Order int `json:"order"`
}

// Key identifies the entry's slot in a registry.
func (e Entry) Key() string {
	if e.Related == "" {
		return e.TypeKey + "/" + e.Name
	}
	return e.TypeKey + "/" + e.Related + "/" + e.Name
}

// Snapshot is the persisted manifest of a registry at one point in time.
type Snapshot struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Sequence  int       `json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
}

// NewSnapshot creates a snapshot with a fresh ID.
// Source names the registry the entries came from (e.g. "request").
func NewSnapshot(source string, entries []Entry) *Snapshot {
	return &Snapshot{
		Version:   Version,
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Entries:   entries,
	}
}

// Marshal serializes a snapshot to JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal deserializes a snapshot from JSON.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Diff reports entries present only in next (added) and only in prev
// (removed), compared by Key. Both results follow the order of their
// source snapshot.
func Diff(prev, next *Snapshot) (added, removed []Entry) {
	index := func(s *Snapshot) map[string]bool {
		keys := make(map[string]bool)
		if s == nil {
			return keys
		}
		for _, e := range s.Entries {
			keys[e.Key()] = true
		}
		return keys
	}
	prevKeys, nextKeys := index(prev), index(next)

	if next != nil {
		for _, e := range next.Entries {
			if !prevKeys[e.Key()] {
				added = append(added, e)
			}
		}
	}
	if prev != nil {
		for _, e := range prev.Entries {
			if !nextKeys[e.Key()] {
				removed = append(removed, e)
			}
		}
	}
	return added, removed
}
