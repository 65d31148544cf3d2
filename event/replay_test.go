package event

import (
	"context"
	"testing"
	"time"

	"github.com/ftchann/clmm-simulator/core"
	"github.com/ftchann/clmm-simulator/statemachine"

	ui "github.com/holiman/uint256"
)

func usdcWethConfig() core.Config {
	return core.Config{TickSpacing: 60, Token0Symbol: "USDC", Token1Symbol: "WETH", FeePips: 3000}
}

func mustBigHex(s string) *ui.Int {
	v, err := ui.FromHex(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newInitializedPool(t *testing.T) *statemachine.ConfigurableCorePool {
	t.Helper()
	pool := statemachine.New(usdcWethConfig(), nil)
	if err := pool.Initialize(mustBigHex("0x43efef20f018fdc58e7a5cf0416a")); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return pool
}

func TestReplayLiquidityMintMatchesRecordedAmounts(t *testing.T) {
	pool := newInitializedPool(t)
	r := NewReplayer(pool, "replay")

	// Run the mint once against the live engine to learn its actual
	// amount0/amount1 for this liquidity delta, then replay an event
	// carrying those exact amounts against a second, identical pool.
	probe := statemachine.New(usdcWethConfig(), nil)
	if err := probe.Initialize(mustBigHex("0x43efef20f018fdc58e7a5cf0416a")); err != nil {
		t.Fatalf("initialize probe: %v", err)
	}
	wantAmount0, wantAmount1, err := probe.Mint("probe", 192180, 193380, ui.NewInt(10_860_507_277_202))
	if err != nil {
		t.Fatalf("probe mint: %v", err)
	}

	ev := LiquidityEvent{
		ID:        "ev-1",
		Type:      "MINT",
		TickLower: 192180,
		TickUpper: 193380,
		Liquidity: ui.NewInt(10_860_507_277_202),
		Amount0:   wantAmount0,
		Amount1:   wantAmount1,
		Date:      time.Now(),
	}
	if err := r.ReplayLiquidity(ev); err != nil {
		t.Fatalf("replay liquidity: %v", err)
	}
}

func TestReplayLiquidityMismatchReported(t *testing.T) {
	pool := newInitializedPool(t)
	r := NewReplayer(pool, "replay")

	ev := LiquidityEvent{
		ID:        "ev-bad",
		Type:      "MINT",
		TickLower: 192180,
		TickUpper: 193380,
		Liquidity: ui.NewInt(10_860_507_277_202),
		Amount0:   ui.NewInt(1), // deliberately wrong
		Amount1:   ui.NewInt(1),
		Date:      time.Now(),
	}
	err := r.ReplayLiquidity(ev)
	if err == nil {
		t.Fatalf("expected mismatch error")
	}
	mismatch, ok := err.(*Mismatch)
	if !ok {
		t.Fatalf("expected *Mismatch, got %T: %v", err, err)
	}
	if mismatch.EventID != "ev-bad" {
		t.Fatalf("expected event id ev-bad, got %s", mismatch.EventID)
	}
}

func TestReplaySwapReproducesRecordedAmounts(t *testing.T) {
	pool := newInitializedPool(t)
	if _, _, err := pool.Mint("lp", -887220, 887220, ui.NewInt(10_860_507_277_202)); err != nil {
		t.Fatalf("seed mint: %v", err)
	}
	r := NewReplayer(pool, "replay")

	probe := statemachine.New(usdcWethConfig(), nil)
	if err := probe.Initialize(mustBigHex("0x43efef20f018fdc58e7a5cf0416a")); err != nil {
		t.Fatalf("initialize probe: %v", err)
	}
	if _, _, err := probe.Mint("lp", -887220, 887220, ui.NewInt(10_860_507_277_202)); err != nil {
		t.Fatalf("seed probe mint: %v", err)
	}
	// 4295128740 is MIN_SQRT_RATIO + 1, the lowest limit a zeroForOne swap accepts.
	amount0, amount1, err := probe.Swap(true, ui.NewInt(1_000_000), ui.NewInt(4295128740))
	if err != nil {
		t.Fatalf("probe swap: %v", err)
	}

	ev := SwapEvent{
		ID:           "swap-1",
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: probe.State().SqrtPriceX96,
		Date:         time.Now(),
	}
	if err := r.ReplaySwap(ev); err != nil {
		t.Fatalf("replay swap: %v", err)
	}
	if !pool.State().SqrtPriceX96.Eq(probe.State().SqrtPriceX96) {
		t.Fatalf("replayed pool price diverged from probe")
	}
}

func TestReplayAllOrdersByBlockThenLogIndex(t *testing.T) {
	pool := newInitializedPool(t)
	r := NewReplayer(pool, "replay")

	var visited []uint64
	r.OnProgress = func(block uint64) { visited = append(visited, block) }

	swapEvents := []SwapEvent{
		{ID: "s1", BlockNumber: 1, LogIndex: 0, Amount0: new(ui.Int), Amount1: new(ui.Int), SqrtPriceX96: pool.State().SqrtPriceX96},
		{ID: "s2", BlockNumber: 2, LogIndex: 0, Amount0: new(ui.Int), Amount1: new(ui.Int), SqrtPriceX96: pool.State().SqrtPriceX96},
	}

	// Both swaps specify a zero amount, a documented no-op (§8 boundary
	// behavior), so this only exercises that ReplayAll visits events in
	// ascending (blockNumber, logIndex) order without erroring.
	if err := ReplayAll(context.Background(), r, nil, swapEvents); err != nil {
		t.Fatalf("replay all: %v", err)
	}
	if len(visited) != 2 || visited[0] != 1 || visited[1] != 2 {
		t.Fatalf("expected progress in block order [1 2], got %v", visited)
	}
}
