package main

import (
	"fmt"

	"github.com/ftchann/clmm-simulator/internal/config"
	"github.com/ftchann/clmm-simulator/persistence"

	"github.com/spf13/cobra"
	ui "github.com/holiman/uint256"
)

// loadConfig merges the command's own flags with the persistent ones on
// its parent, so every subcommand shares --config/--sqlite-dsn/--log-level
// while still binding its own.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile == "" {
		cfgFile, _ = cmd.InheritedFlags().GetString("config")
	}
	return config.Load(cfgFile, cmd.Flags())
}

func openStore(cfg config.Config) (*persistence.SQLiteStore, error) {
	store, err := persistence.OpenSQLiteStore(cfg.SqliteDSN)
	if err != nil {
		return nil, fmt.Errorf("clmmsim: open snapshot store: %w", err)
	}
	return store, nil
}

func mustGetString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func mustGetInt(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func mustGetUint32(cmd *cobra.Command, name string) uint32 {
	v, _ := cmd.Flags().GetUint32(name)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZeroInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroU32(values ...uint32) uint32 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func parseDecimalUint(s string) (*ui.Int, error) {
	return ui.FromDecimal(s)
}
