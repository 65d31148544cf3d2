// Command clmmsim is the thin CLI front end to the concentrated-liquidity
// engine: replay recorded events into a pool, inspect a persisted
// snapshot, fork a pool from its latest snapshot, or take a new named
// snapshot of it. Exit code is 0 on success, non-zero on any error
// surfaced from the core.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "clmmsim",
		Short:        "Concentrated-liquidity AMM simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("sqlite-dsn", "", "SQLite DSN for the snapshot store")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newReplayCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newForkCmd())
	root.AddCommand(newSnapshotCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
