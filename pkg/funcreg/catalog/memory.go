package catalog

import (
	"sort"
	"sync"
)

// MemoryStore is an in-memory snapshot store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]*Snapshot
	sequence int
	closed   bool
}

// NewMemoryStore creates a new in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*Snapshot),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(s *Snapshot) error {
	if s == nil || s.ID == "" {
		return ErrInvalidSnapshot
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.sequence++
	s.Sequence = m.sequence
	m.data[s.ID] = cloneSnapshot(s)
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(id string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	s, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSnapshot(s), nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(source string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var latest *Snapshot
	for _, s := range m.data {
		if s.Source != source {
			continue
		}
		if latest == nil || s.Sequence > latest.Sequence {
			latest = s
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return cloneSnapshot(latest), nil
}

// List implements Store.
func (m *MemoryStore) List() ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]Info, 0, len(m.data))
	for _, s := range m.data {
		infos = append(infos, Info{
			ID:        s.ID,
			Source:    s.Source,
			Sequence:  s.Sequence,
			CreatedAt: s.CreatedAt,
			Entries:   len(s.Entries),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})

	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, id)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the number of stored snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// cloneSnapshot copies s so callers cannot mutate stored entries.
func cloneSnapshot(s *Snapshot) *Snapshot {
	c := *s
	c.Entries = append([]Entry(nil), s.Entries...)
	return &c
}
