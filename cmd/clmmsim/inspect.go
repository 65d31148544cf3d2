package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <snapshotId>",
		Short: "Print a persisted snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	snapshotID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("clmmsim: parse snapshotId: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Get(context.Background(), snapshotID)
	if err != nil {
		return fmt.Errorf("clmmsim: inspect %s: %w", snapshotID, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
