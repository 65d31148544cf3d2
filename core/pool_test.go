package core

import (
	"errors"
	"testing"

	"github.com/ftchann/clmm-simulator/lib/position"
	"github.com/ftchann/clmm-simulator/lib/tickmath"

	ui "github.com/holiman/uint256"
)

func usdcWethConfig() Config {
	return Config{TickSpacing: 60, Token0Symbol: "USDC", Token1Symbol: "WETH", FeePips: 3000}
}

func mustBigHex(h string) *ui.Int {
	v, err := ui.FromHex(h)
	if err != nil {
		panic(err)
	}
	return v
}

func TestInitializeDerivesTickCurrent(t *testing.T) {
	p := NewPool(usdcWethConfig())
	sqrtPriceX96 := mustBigHex("0x43efef20f018fdc58e7a5cf0416a")

	if err := p.Initialize(sqrtPriceX96); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.State.TickCurrent != 195285 {
		t.Fatalf("want tickCurrent=195285 got=%d", p.State.TickCurrent)
	}
}

func TestInitializeTwiceFails(t *testing.T) {
	p := NewPool(usdcWethConfig())
	sqrtPriceX96 := mustBigHex("0x43efef20f018fdc58e7a5cf0416a")
	if err := p.Initialize(sqrtPriceX96); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := p.Initialize(sqrtPriceX96)
	if !errors.Is(err, Sentinel(ErrAlreadyInitialized)) {
		t.Fatalf("want AlreadyInitialized, got %v", err)
	}
}

func TestInitializeBoundaries(t *testing.T) {
	p := NewPool(usdcWethConfig())
	if err := p.Initialize(tickmath.MinSqrtRatio); err != nil {
		t.Fatalf("MIN_SQRT_RATIO should be accepted: %v", err)
	}

	p2 := NewPool(usdcWethConfig())
	maxMinusOne := new(ui.Int).Sub(tickmath.MaxSqrtRatio, ui.NewInt(1))
	if err := p2.Initialize(maxMinusOne); err != nil {
		t.Fatalf("MAX_SQRT_RATIO-1 should be accepted: %v", err)
	}

	p3 := NewPool(usdcWethConfig())
	err := p3.Initialize(tickmath.MaxSqrtRatio)
	if !errors.Is(err, Sentinel(ErrBadPriceLimit)) {
		t.Fatalf("MAX_SQRT_RATIO itself should be rejected, got %v", err)
	}
}

func TestMintSetsPositionLiquidity(t *testing.T) {
	p := NewPool(usdcWethConfig())
	p.Initialize(mustBigHex("0x43efef20f018fdc58e7a5cf0416a"))

	amount := ui.NewInt(10_860_507_277_202)
	_, _, err := p.Mint("user", 192180, 193380, amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := position.Key{Owner: "user", TickLower: 192180, TickUpper: 193380}
	pos := p.State.Positions[key]
	if pos.Liquidity.Cmp(amount) != 0 {
		t.Fatalf("want liquidity=%v got=%v", amount, pos.Liquidity)
	}
}

func TestMintOverFullRangeExceedsMaxLiquidityPerTick(t *testing.T) {
	p := NewPool(usdcWethConfig())
	p.Initialize(mustBigHex("0x43efef20f018fdc58e7a5cf0416a"))

	maxLiquidity := new(ui.Int).Sub(new(ui.Int).Exp(ui.NewInt(2), ui.NewInt(128)), ui.NewInt(1))
	_, _, err := p.Mint("whale", tickmath.MinTick/60*60, tickmath.MaxTick/60*60, maxLiquidity)
	if !errors.Is(err, Sentinel(ErrMaxLiquidityPerTick)) {
		t.Fatalf("want MaxLiquidityPerTick, got %v", err)
	}
}

func TestMintBurnRoundTrip(t *testing.T) {
	p := NewPool(usdcWethConfig())
	p.Initialize(mustBigHex("0x43efef20f018fdc58e7a5cf0416a"))

	amount := ui.NewInt(10_860_507_277_202)
	mintAmount0, mintAmount1, err := p.Mint("user", 192180, 193380, amount)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	burnAmount0, burnAmount1, err := p.Burn("user", 192180, 193380, amount)
	if err != nil {
		t.Fatalf("burn failed: %v", err)
	}

	diff0 := new(ui.Int).Sub(mintAmount0, burnAmount0)
	diff1 := new(ui.Int).Sub(mintAmount1, burnAmount1)
	if diff0.Sign() < 0 || diff0.Cmp(ui.NewInt(1)) > 0 {
		t.Fatalf("amount0 round trip differs by more than 1 wei: %v", diff0)
	}
	if diff1.Sign() < 0 || diff1.Cmp(ui.NewInt(1)) > 0 {
		t.Fatalf("amount1 round trip differs by more than 1 wei: %v", diff1)
	}
	if p.State.Liquidity.Sign() != 0 {
		t.Fatalf("liquidity should return to zero after the round trip, got %v", p.State.Liquidity)
	}
}

func TestBurnMoreThanMintedFailsWithoutMutatingState(t *testing.T) {
	p := NewPool(usdcWethConfig())
	p.Initialize(mustBigHex("0x43efef20f018fdc58e7a5cf0416a"))

	amount := ui.NewInt(10_860_507_277_202)
	p.Mint("user", 192180, 193380, amount)
	liquidityBefore := p.State.Liquidity.Clone()

	_, _, err := p.Burn("user", 192180, 193380, new(ui.Int).Add(amount, ui.NewInt(1)))
	if !errors.Is(err, Sentinel(ErrLiquiditySubUnderflow)) {
		t.Fatalf("want LiquiditySubUnderflow, got %v", err)
	}
	if p.State.Liquidity.Cmp(liquidityBefore) != 0 {
		t.Fatalf("a failed burn must not mutate pool liquidity, got %v want %v", p.State.Liquidity, liquidityBefore)
	}
}

func TestCollectCapsByTokensOwed(t *testing.T) {
	p := NewPool(usdcWethConfig())
	p.Initialize(mustBigHex("0x43efef20f018fdc58e7a5cf0416a"))

	amount := ui.NewInt(10_860_507_277_202)
	p.Mint("user", 192180, 193380, amount)
	p.Burn("user", 192180, 193380, amount)

	key := position.Key{Owner: "user", TickLower: 192180, TickUpper: 193380}
	owed0 := p.State.Positions[key].TokensOwed0.Clone()

	got0, _, err := p.Collect("user", 192180, 193380, new(ui.Int).Add(owed0, ui.NewInt(1000)), new(ui.Int))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got0.Cmp(owed0) != 0 {
		t.Fatalf("collect should cap at tokensOwed0=%v, got %v", owed0, got0)
	}
	if p.State.Positions[key].TokensOwed0.Sign() != 0 {
		t.Fatalf("tokensOwed0 should be zero after full collection")
	}
}

func TestSwapAtCurrentPriceLimitIsNoop(t *testing.T) {
	p := NewPool(usdcWethConfig())
	sqrtPriceX96 := mustBigHex("0x43efef20f018fdc58e7a5cf0416a")
	p.Initialize(sqrtPriceX96)
	p.Mint("user", tickmath.MinTick/60*60, tickmath.MaxTick/60*60, ui.NewInt(10_860_507_277_202))

	amount0, amount1, err := p.Swap(true, ui.NewInt(1_000_000), sqrtPriceX96)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount0.IsZero() || !amount1.IsZero() {
		t.Fatalf("swap with limit == current price should be a no-op, got (%v,%v)", amount0, amount1)
	}
}

func TestSwapZeroAmountIsNoop(t *testing.T) {
	p := NewPool(usdcWethConfig())
	sqrtPriceX96 := mustBigHex("0x43efef20f018fdc58e7a5cf0416a")
	p.Initialize(sqrtPriceX96)

	amount0, amount1, err := p.Swap(true, new(ui.Int), tickmath.MinSqrtRatio)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount0.IsZero() || !amount1.IsZero() {
		t.Fatalf("amountSpecified=0 should return (0,0)")
	}
}

func TestSwapMovesPriceAndConservesInvariants(t *testing.T) {
	p := NewPool(usdcWethConfig())
	sqrtPriceX96 := mustBigHex("0x43efef20f018fdc58e7a5cf0416a")
	p.Initialize(sqrtPriceX96)
	p.Mint("user", tickmath.MinTick/60*60, tickmath.MaxTick/60*60, ui.NewInt(10_860_507_277_202))

	priceBefore := p.State.SqrtPriceX96.Clone()
	amount0, _, err := p.Swap(true, ui.NewInt(1_000_000), new(ui.Int).AddUint64(tickmath.MinSqrtRatio, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount0.Sign() <= 0 {
		t.Fatalf("zeroForOne exact-in swap should have a positive amount0, got %v", amount0)
	}
	if p.State.SqrtPriceX96.Cmp(priceBefore) >= 0 {
		t.Fatalf("zeroForOne swap should move price down")
	}

	lower := tickmath.GetSqrtRatioAtTick(p.State.TickCurrent)
	upper := tickmath.GetSqrtRatioAtTick(p.State.TickCurrent + 1)
	if lower.Cmp(p.State.SqrtPriceX96) > 0 || upper.Cmp(p.State.SqrtPriceX96) <= 0 {
		t.Fatalf("tickCurrent must bracket sqrtPriceX96")
	}
}
