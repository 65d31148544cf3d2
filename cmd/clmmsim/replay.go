package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ftchann/clmm-simulator/core"
	"github.com/ftchann/clmm-simulator/event"
	"github.com/ftchann/clmm-simulator/internal/dateutil"
	"github.com/ftchann/clmm-simulator/internal/observability"
	"github.com/ftchann/clmm-simulator/roadmap"
	"github.com/ftchann/clmm-simulator/statemachine"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <startDate> <endDate>",
		Short: "Replay recorded MINT/BURN/SWAP events into a fresh pool over a date window",
		Args:  cobra.ExactArgs(2),
		RunE:  runReplay,
	}
	cmd.Flags().String("events-path", "", "path to the event file (JSON or CSV)")
	cmd.Flags().String("events-format", "json", "event file format: json or csv")
	cmd.Flags().String("token0-symbol", "", "pool token0 symbol")
	cmd.Flags().String("token1-symbol", "", "pool token1 symbol")
	cmd.Flags().Int("tick-spacing", 0, "pool tick spacing")
	cmd.Flags().Uint32("fee-pips", 0, "pool fee, in hundredths of a bip")
	cmd.Flags().String("init-sqrt-price-x96", "", "initial sqrtPriceX96 (decimal), required")
	cmd.Flags().String("description", "replay", "description recorded on the final snapshot")
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("clmmsim: parse --log-level: %w", err)
	}
	logger := observability.NewLoggerWithLevel("replay", level)

	startDate, err := time.Parse("2006-01-02", args[0])
	if err != nil {
		return fmt.Errorf("clmmsim: parse startDate: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", args[1])
	if err != nil {
		return fmt.Errorf("clmmsim: parse endDate: %w", err)
	}

	eventsPath, _ := cmd.Flags().GetString("events-path")
	if eventsPath == "" {
		eventsPath = cfg.EventsPath
	}
	if eventsPath == "" {
		return fmt.Errorf("clmmsim: --events-path is required")
	}
	eventsFormat, _ := cmd.Flags().GetString("events-format")

	initSqrtPriceX96, _ := cmd.Flags().GetString("init-sqrt-price-x96")
	if initSqrtPriceX96 == "" {
		return fmt.Errorf("clmmsim: --init-sqrt-price-x96 is required")
	}
	sqrtPriceX96, err := parseDecimalUint(initSqrtPriceX96)
	if err != nil {
		return fmt.Errorf("clmmsim: parse --init-sqrt-price-x96: %w", err)
	}

	var liquidityEvents []event.LiquidityEvent
	var swapEvents []event.SwapEvent
	switch eventsFormat {
	case "json":
		liquidityEvents, swapEvents, err = event.LoadJSON(eventsPath)
	case "csv":
		liquidityEvents, _, err = event.LoadCSV(eventsPath, "liquidity")
		if err == nil {
			_, swapEvents, err = event.LoadCSV(eventsPath, "swap")
		}
	default:
		return fmt.Errorf("clmmsim: unknown --events-format %q", eventsFormat)
	}
	if err != nil {
		return err
	}
	liquidityEvents = filterLiquidityByDate(liquidityEvents, startDate, endDate)
	swapEvents = filterSwapByDate(swapEvents, startDate, endDate)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rm := roadmap.New(store)
	poolCfg := core.Config{
		TickSpacing:  firstNonZeroInt(mustGetInt(cmd, "tick-spacing"), cfg.TickSpacing),
		Token0Symbol: firstNonEmpty(mustGetString(cmd, "token0-symbol"), cfg.Token0Symbol),
		Token1Symbol: firstNonEmpty(mustGetString(cmd, "token1-symbol"), cfg.Token1Symbol),
		FeePips:      firstNonZeroU32(mustGetUint32(cmd, "fee-pips"), cfg.FeePips),
	}
	pool := statemachine.New(poolCfg, rm)
	if err := pool.Initialize(sqrtPriceX96); err != nil {
		return fmt.Errorf("clmmsim: initialize pool: %w", err)
	}

	owner := "replay"
	replayer := event.NewReplayer(pool, owner)
	replayer.OnProgress = func(blockNumber uint64) {
		logger.Info().Uint64("blockNumber", blockNumber).Msg("replayed event")
	}

	windows := dateutil.DayBuckets(startDate, endDate)
	logger.Info().Int("buckets", len(windows)).Int("liquidityEvents", len(liquidityEvents)).Int("swapEvents", len(swapEvents)).Msg("starting replay")

	if err := event.ReplayAll(context.Background(), replayer, liquidityEvents, swapEvents); err != nil {
		logger.Error().Err(err).Msg("replay failed")
		return err
	}

	description, _ := cmd.Flags().GetString("description")
	pool.TakeSnapshot(description)
	snapshotID, err := pool.PersistSnapshot(context.Background(), store)
	if err != nil {
		return fmt.Errorf("clmmsim: persist final snapshot: %w", err)
	}
	fmt.Printf("replay complete: poolId=%s snapshotId=%s\n", pool.State().ID, snapshotID)
	return nil
}

func filterLiquidityByDate(events []event.LiquidityEvent, start, end time.Time) []event.LiquidityEvent {
	out := events[:0:0]
	for _, ev := range events {
		if !ev.Date.Before(start) && ev.Date.Before(end) {
			out = append(out, ev)
		}
	}
	return out
}

func filterSwapByDate(events []event.SwapEvent, start, end time.Time) []event.SwapEvent {
	out := events[:0:0]
	for _, ev := range events {
		if !ev.Date.Before(start) && ev.Date.Before(end) {
			out = append(out, ev)
		}
	}
	return out
}
