package swapmath

import (
	"math/big"
	"testing"

	ui "github.com/holiman/uint256"
)

func TestComputeSwapStepExactInCapped(t *testing.T) {
	current, _ := ui.FromBig(mustBig("1344919684864506912172695223877090"))
	target, _ := ui.FromBig(mustBig("1346938477169594858818217023321238"))
	liquidity, _ := ui.FromBig(mustBig("731344820973715931"))
	amountRemaining, _ := ui.FromBig(mustBig("26412237337162431364"))

	sqrtPriceX96, amountIn, amountOut, feeAmount := ComputeSwapStep(current, target, liquidity, amountRemaining, 500)

	if sqrtPriceX96.Sign() == 0 {
		t.Fatalf("expected a non-zero next price")
	}
	if amountIn.Sign() < 0 || amountOut.Sign() < 0 || feeAmount.Sign() < 0 {
		t.Fatalf("amounts must be non-negative: in=%v out=%v fee=%v", amountIn, amountOut, feeAmount)
	}
}

func TestComputeSwapStepNoLiquidityMovesToTarget(t *testing.T) {
	current := ui.NewInt(1 << 60)
	target := ui.NewInt(1 << 59)
	sqrtPriceX96, amountIn, amountOut, feeAmount := ComputeSwapStep(current, target, ui.NewInt(0), ui.NewInt(1_000_000), 3000)

	if sqrtPriceX96.Cmp(target) != 0 {
		t.Fatalf("with zero liquidity the step should jump straight to the target price")
	}
	if amountOut.Sign() != 0 {
		t.Fatalf("zero liquidity should produce zero output, got %v", amountOut)
	}
	_ = amountIn
	_ = feeAmount
}

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad number: " + s)
	}
	return n
}
