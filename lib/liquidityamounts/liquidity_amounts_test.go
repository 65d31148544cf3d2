package liquidityamounts

import (
	"testing"

	"github.com/ftchann/clmm-simulator/lib/tickmath"

	ui "github.com/holiman/uint256"
)

func TestGetLiquidityForAmountsBelowRange(t *testing.T) {
	lower := tickmath.GetSqrtRatioAtTick(-60)
	upper := tickmath.GetSqrtRatioAtTick(60)
	current := tickmath.GetSqrtRatioAtTick(-120)

	liquidity := GetLiquidityForAmounts(current, lower, upper, ui.NewInt(1_000_000), ui.NewInt(1_000_000))
	if liquidity.Sign() <= 0 {
		t.Fatalf("expected positive liquidity, got %v", liquidity)
	}
}

func TestGetLiquidityForAmountsInRangePicksBindingToken(t *testing.T) {
	lower := tickmath.GetSqrtRatioAtTick(-600)
	upper := tickmath.GetSqrtRatioAtTick(600)
	current := tickmath.GetSqrtRatioAtTick(0)

	liquidity := GetLiquidityForAmounts(current, lower, upper, ui.NewInt(1_000_000), ui.NewInt(1))
	liquidity1Only := GetLiquidityForAmount1(lower, current, ui.NewInt(1))
	if liquidity.Cmp(liquidity1Only) != 0 {
		t.Fatalf("the scarce token1 should bind: want %v got %v", liquidity1Only, liquidity)
	}
}

func TestGetLiquidityForAmountsAboveRange(t *testing.T) {
	lower := tickmath.GetSqrtRatioAtTick(-60)
	upper := tickmath.GetSqrtRatioAtTick(60)
	current := tickmath.GetSqrtRatioAtTick(120)

	liquidity := GetLiquidityForAmounts(current, lower, upper, ui.NewInt(1_000_000), ui.NewInt(1_000_000))
	want := GetLiquidityForAmount1(lower, upper, ui.NewInt(1_000_000))
	if liquidity.Cmp(want) != 0 {
		t.Fatalf("above range should be bound entirely by token1, want %v got %v", want, liquidity)
	}
}
