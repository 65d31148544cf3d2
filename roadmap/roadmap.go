// Package roadmap is the process-wide directory of live pools and their
// snapshots. A ConfigurableCorePool registers itself on creation/fork and
// registers every snapshot it takes; the replay driver and the CLI look
// pools and snapshots up here by id without having to thread references
// through every call site. Implements statemachine.Roadmap.
package roadmap

import (
	"context"
	"sync"

	"github.com/ftchann/clmm-simulator/persistence"
	"github.com/ftchann/clmm-simulator/statemachine"

	"github.com/google/uuid"
)

// Roadmap is the concurrency-safe pool/snapshot directory. The zero value is
// not usable; construct with New.
type Roadmap struct {
	mu        sync.Mutex
	pools     map[uuid.UUID]*statemachine.ConfigurableCorePool
	snapshots map[uuid.UUID]*statemachine.Snapshot
	store     persistence.SnapshotStore // optional fallback for snapshots not held in memory
}

// New returns an empty Roadmap. store may be nil, in which case
// LookupSnapshot only ever resolves snapshots still cached in memory.
func New(store persistence.SnapshotStore) *Roadmap {
	return &Roadmap{
		pools:     make(map[uuid.UUID]*statemachine.ConfigurableCorePool),
		snapshots: make(map[uuid.UUID]*statemachine.Snapshot),
		store:     store,
	}
}

// RegisterPool records pool under id, overwriting any previous registration.
// Called by ConfigurableCorePool.New and .Fork.
func (r *Roadmap) RegisterPool(id uuid.UUID, pool *statemachine.ConfigurableCorePool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[id] = pool
}

// LookupPool returns the registered pool for id, or false if none exists.
func (r *Roadmap) LookupPool(id uuid.UUID) (*statemachine.ConfigurableCorePool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pool, ok := r.pools[id]
	return pool, ok
}

// PoolIDs returns every registered pool id, in no particular order.
func (r *Roadmap) PoolIDs() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.pools))
	for id := range r.pools {
		ids = append(ids, id)
	}
	return ids
}

// RegisterSnapshot caches snap in memory, keyed by its id. Called by
// ConfigurableCorePool.TakeSnapshot.
func (r *Roadmap) RegisterSnapshot(snap *statemachine.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snap.ID] = snap
}

// LookupSnapshot resolves a snapshot by id, checking the in-memory cache
// first and falling back to the persistent store (if configured) on a miss,
// so a recover can target a snapshot taken in an earlier process.
func (r *Roadmap) LookupSnapshot(ctx context.Context, id uuid.UUID) (*statemachine.Snapshot, error) {
	r.mu.Lock()
	snap, ok := r.snapshots[id]
	r.mu.Unlock()
	if ok {
		return snap, nil
	}

	if r.store == nil {
		return nil, &notFoundError{id: id}
	}
	snap, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.snapshots[id] = snap
	r.mu.Unlock()
	return snap, nil
}

type notFoundError struct{ id uuid.UUID }

func (e *notFoundError) Error() string { return "roadmap: snapshot not registered: " + e.id.String() }
