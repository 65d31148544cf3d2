package roadmap

import (
	"context"
	"testing"

	"github.com/ftchann/clmm-simulator/core"
	"github.com/ftchann/clmm-simulator/persistence"
	"github.com/ftchann/clmm-simulator/statemachine"

	"github.com/google/uuid"
)

func usdcWethConfig() core.Config {
	return core.Config{TickSpacing: 60, Token0Symbol: "USDC", Token1Symbol: "WETH", FeePips: 3000}
}

func TestRegisterAndLookupPool(t *testing.T) {
	rm := New(nil)
	pool := statemachine.New(usdcWethConfig(), rm)

	got, ok := rm.LookupPool(pool.State().ID)
	if !ok || got != pool {
		t.Fatalf("expected registered pool to be discoverable by id")
	}
}

func TestLookupSnapshotHitsMemoryCache(t *testing.T) {
	rm := New(nil)
	pool := statemachine.New(usdcWethConfig(), rm)
	snap := pool.TakeSnapshot("checkpoint")

	got, err := rm.LookupSnapshot(context.Background(), snap.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != snap.ID {
		t.Fatalf("expected snapshot %s, got %s", snap.ID, got.ID)
	}
}

func TestLookupSnapshotMissWithNoStoreFails(t *testing.T) {
	rm := New(nil)
	if _, err := rm.LookupSnapshot(context.Background(), uuid.New()); err == nil {
		t.Fatalf("expected error for unregistered snapshot with no backing store")
	}
}

func TestLookupSnapshotFallsBackToStore(t *testing.T) {
	store := persistence.NewMemoryStore()
	rm := New(store)

	pool := statemachine.New(usdcWethConfig(), rm)
	snap := pool.TakeSnapshot("durable")
	if _, err := pool.PersistSnapshot(context.Background(), store); err != nil {
		t.Fatalf("persist: %v", err)
	}

	// A fresh roadmap with no in-memory cache must still resolve via store.
	fresh := New(store)
	got, err := fresh.LookupSnapshot(context.Background(), snap.ID)
	if err != nil {
		t.Fatalf("lookup via store: %v", err)
	}
	if got.ID != snap.ID {
		t.Fatalf("expected snapshot %s, got %s", snap.ID, got.ID)
	}
}
