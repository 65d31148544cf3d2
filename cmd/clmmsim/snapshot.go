package main

import (
	"context"
	"fmt"

	"github.com/ftchann/clmm-simulator/roadmap"
	"github.com/ftchann/clmm-simulator/statemachine"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <poolId> <description>",
		Short: "Take and persist a new named snapshot of a pool's latest persisted state",
		Args:  cobra.ExactArgs(2),
		RunE:  runSnapshot,
	}
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	poolID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("clmmsim: parse poolId: %w", err)
	}
	description := args[1]

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	latest, err := store.GetLatestByPool(context.Background(), poolID)
	if err != nil {
		return fmt.Errorf("clmmsim: find latest snapshot for pool %s: %w", poolID, err)
	}

	rm := roadmap.New(store)
	rm.RegisterSnapshot(latest)
	pool := statemachine.New(latest.Config(), rm)
	if err := pool.Recover(context.Background(), latest.ID); err != nil {
		return fmt.Errorf("clmmsim: recover pool from snapshot %s: %w", latest.ID, err)
	}

	pool.TakeSnapshot(description)
	snapshotID, err := pool.PersistSnapshot(context.Background(), store)
	if err != nil {
		return fmt.Errorf("clmmsim: persist snapshot: %w", err)
	}

	fmt.Printf("snapshot complete: poolId=%s snapshotId=%s\n", poolID, snapshotID)
	return nil
}
