package checkpoint

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory snapshot store for tests and
// single-process development. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]*Snapshot // conversationID -> latest snapshot
	sizes  map[string]int64
	closed bool
}

// NewMemoryStore creates a new in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]*Snapshot),
		sizes: make(map[string]int64),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	// Store a copy so later mutation of the caller's snapshot cannot
	// leak into the store.
	stored := *snap
	stored.State = append([]byte(nil), snap.State...)
	m.data[snap.ConversationID] = &stored
	m.sizes[snap.ConversationID] = int64(len(data))
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, conversationID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	snap, ok := m.data[conversationID]
	if !ok {
		return nil, ErrNotFound
	}

	out := *snap
	out.State = append([]byte(nil), snap.State...)
	return &out, nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]Info, 0, len(m.data))
	for id, snap := range m.data {
		infos = append(infos, Info{
			ConversationID: id,
			Stage:          snap.Stage,
			Sequence:       snap.Sequence,
			UpdatedAt:      snap.Timestamp,
			Size:           m.sizes[id],
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
		}
		return infos[i].ConversationID < infos[j].ConversationID
	})

	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, conversationID)
	delete(m.sizes, conversationID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	m.sizes = nil
	return nil
}

// Len returns the number of stored conversations. Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}
