package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ftchann/clmm-simulator/statemachine"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the durable SnapshotStore: one row per snapshot, the
// large ticks/positions/tickBitmap slices folded into a single JSON blob
// column (the encoding TakeSnapshot already made canonical) alongside
// scalar columns for the rest, so ad-hoc SQL can still filter by pool or
// creation time without decoding the blob.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if necessary) a SQLite-backed snapshot
// store at path and ensures its schema exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("persistence: open sqlite at %s: %w", path, err)
	}
	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id            TEXT PRIMARY KEY,
			pool_id       TEXT NOT NULL,
			description   TEXT NOT NULL,
			tick_current  INTEGER NOT NULL,
			sqrt_price_x96 TEXT NOT NULL,
			created_at    TEXT NOT NULL,
			body          BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("persistence: migrate snapshots table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Put inserts or replaces snap's row.
func (s *SQLiteStore) Put(ctx context.Context, snap *statemachine.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persistence: marshal snapshot %s: %w", snap.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, pool_id, description, tick_current, sqrt_price_x96, created_at, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pool_id = excluded.pool_id,
			description = excluded.description,
			tick_current = excluded.tick_current,
			sqrt_price_x96 = excluded.sqrt_price_x96,
			created_at = excluded.created_at,
			body = excluded.body
	`, snap.ID.String(), snap.PoolID.String(), snap.Description, snap.TickCurrent, snap.SqrtPriceX96, snap.CreatedAt.Format("2006-01-02T15:04:05.999999999Z07:00"), body)
	if err != nil {
		return fmt.Errorf("persistence: put snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// GetLatestByPool loads the most recently created snapshot row for
// poolID, returning a notFoundError if the pool has no persisted
// snapshots.
func (s *SQLiteStore) GetLatestByPool(ctx context.Context, poolID uuid.UUID) (*statemachine.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT body FROM snapshots WHERE pool_id = ? ORDER BY created_at DESC LIMIT 1
	`, poolID.String())

	var body []byte
	if err := row.Scan(&body); err != nil {
		if err == sql.ErrNoRows {
			return nil, &notFoundError{id: poolID}
		}
		return nil, fmt.Errorf("persistence: get latest snapshot for pool %s: %w", poolID, err)
	}

	var snap statemachine.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("persistence: corrupt snapshot row for pool %s: %w", poolID, err)
	}
	return &snap, nil
}

// Get loads a snapshot by id, returning a notFoundError if no row exists.
func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*statemachine.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE id = ?`, id.String())

	var body []byte
	if err := row.Scan(&body); err != nil {
		if err == sql.ErrNoRows {
			return nil, &notFoundError{id: id}
		}
		return nil, fmt.Errorf("persistence: get snapshot %s: %w", id, err)
	}

	var snap statemachine.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("persistence: corrupt snapshot row %s: %w", id, err)
	}
	return &snap, nil
}
