package persistence

import (
	"context"
	"sync"

	"github.com/ftchann/clmm-simulator/statemachine"

	"github.com/google/uuid"
)

// MemoryStore is a process-local SnapshotStore with no durability,
// suitable for tests and for a roadmap that only ever recovers within the
// same process.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]*statemachine.Snapshot
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[uuid.UUID]*statemachine.Snapshot)}
}

// Put stores a copy of snap keyed by its ID.
func (m *MemoryStore) Put(_ context.Context, snap *statemachine.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snap
	m.snapshots[snap.ID] = &cp
	return nil
}

// Get returns the stored snapshot, or a notFoundError if absent.
func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*statemachine.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[id]
	if !ok {
		return nil, &notFoundError{id: id}
	}
	cp := *snap
	return &cp, nil
}

// GetLatestByPool returns the most recently created snapshot for poolID,
// or a notFoundError if none exists.
func (m *MemoryStore) GetLatestByPool(_ context.Context, poolID uuid.UUID) (*statemachine.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *statemachine.Snapshot
	for _, snap := range m.snapshots {
		if snap.PoolID != poolID {
			continue
		}
		if latest == nil || snap.CreatedAt.After(latest.CreatedAt) {
			latest = snap
		}
	}
	if latest == nil {
		return nil, &notFoundError{id: poolID}
	}
	cp := *latest
	return &cp, nil
}
