package main

import (
	"context"
	"fmt"

	"github.com/ftchann/clmm-simulator/roadmap"
	"github.com/ftchann/clmm-simulator/statemachine"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newForkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fork <poolId>",
		Short: "Fork a pool from its latest persisted snapshot and persist the fork",
		Args:  cobra.ExactArgs(1),
		RunE:  runFork,
	}
	cmd.Flags().String("description", "forked", "description recorded on the fork's snapshot")
	return cmd
}

func runFork(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	poolID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("clmmsim: parse poolId: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.GetLatestByPool(context.Background(), poolID)
	if err != nil {
		return fmt.Errorf("clmmsim: find latest snapshot for pool %s: %w", poolID, err)
	}

	rm := roadmap.New(store)
	rm.RegisterSnapshot(snap)
	parent := statemachine.New(snap.Config(), rm)
	if err := parent.Recover(context.Background(), snap.ID); err != nil {
		return fmt.Errorf("clmmsim: recover pool from snapshot %s: %w", snap.ID, err)
	}

	child := parent.Fork()

	description, _ := cmd.Flags().GetString("description")
	child.TakeSnapshot(description)
	childSnapshotID, err := child.PersistSnapshot(context.Background(), store)
	if err != nil {
		return fmt.Errorf("clmmsim: persist fork snapshot: %w", err)
	}

	fmt.Printf("fork complete: parentPoolId=%s childPoolId=%s childSnapshotId=%s\n", poolID, child.State().ID, childSnapshotID)
	return nil
}
