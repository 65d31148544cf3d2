// Package persistence implements the durable snapshot store: a
// key-value mapping from snapshot UUID to a full Snapshot record, backed
// by SQLite, plus an in-memory stand-in for tests and single-process runs
// that never flush to disk.
package persistence

import (
	"context"

	"github.com/ftchann/clmm-simulator/statemachine"

	"github.com/google/uuid"
)

// SnapshotStore is the persistent key-value store §6 requires: get(id),
// put(snapshot). GetLatestByPool additionally supports the CLI's
// poolId-addressed commands (fork, snapshot), which need to resolve "the
// most recent durable state of this pool" without the caller tracking
// snapshot ids itself.
type SnapshotStore interface {
	Put(ctx context.Context, snap *statemachine.Snapshot) error
	Get(ctx context.Context, id uuid.UUID) (*statemachine.Snapshot, error)
	GetLatestByPool(ctx context.Context, poolID uuid.UUID) (*statemachine.Snapshot, error)
}

// notFoundError lets callers distinguish "missing row" from a genuine I/O
// failure without a sentinel error value per store implementation.
type notFoundError struct{ id uuid.UUID }

func (e *notFoundError) Error() string { return "persistence: snapshot not found: " + e.id.String() }

// IsNotFound reports whether err is the "no such snapshot" case as opposed
// to an I/O or corruption failure.
func IsNotFound(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}
