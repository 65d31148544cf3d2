// Package swapmath computes a single swap step: the amount of input
// consumed, output produced, and fee charged when moving from the current
// price toward a target price (bounded by either the next tick or the
// caller's price limit), under a given liquidity.
package swapmath

import (
	fm "github.com/ftchann/clmm-simulator/lib/fullmath"
	sqrtmath "github.com/ftchann/clmm-simulator/lib/sqrtprice_math"

	ui "github.com/holiman/uint256"
)

// MaxFeePips is the fee-pips denominator (1e6 == 100%).
var MaxFeePips = ui.NewInt(1_000_000)

// ComputeSwapStep runs one step of the swap loop. amountRemaining > 0 means
// exact-input; amountRemaining < 0 means exact-output (its magnitude is the
// output still wanted). The step stops at the first of: sqrtRatioTargetX96
// reached, or amountRemaining exhausted.
func ComputeSwapStep(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *ui.Int, feePips uint32) (sqrtRatioNextX96, amountIn, amountOut, feeAmount *ui.Int) {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0
	feePipsI := ui.NewInt(uint64(feePips))

	if exactIn {
		amountRemainingLessFee := new(ui.Int).Div(
			new(ui.Int).Mul(amountRemaining, new(ui.Int).Sub(MaxFeePips, feePipsI)),
			MaxFeePips,
		)
		if zeroForOne {
			amountIn = sqrtmath.GetAmount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
		} else {
			amountIn = sqrtmath.GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}
		if amountRemainingLessFee.Cmp(amountIn) >= 0 {
			sqrtRatioNextX96 = new(ui.Int).Set(sqrtRatioTargetX96)
		} else {
			sqrtRatioNextX96 = sqrtmath.GetNextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
		}
	} else {
		if zeroForOne {
			amountOut = sqrtmath.GetAmount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			amountOut = sqrtmath.GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
		}
		negRemaining := new(ui.Int).Neg(amountRemaining)
		if negRemaining.Cmp(amountOut) >= 0 {
			sqrtRatioNextX96 = new(ui.Int).Set(sqrtRatioTargetX96)
		} else {
			sqrtRatioNextX96 = sqrtmath.GetNextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, negRemaining, zeroForOne)
		}
	}

	reachedTarget := sqrtRatioTargetX96.Cmp(sqrtRatioNextX96) == 0

	if zeroForOne {
		if !(reachedTarget && exactIn) {
			amountIn = sqrtmath.GetAmount0Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true)
		}
		if !(reachedTarget && !exactIn) {
			amountOut = sqrtmath.GetAmount1Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
		}
	} else {
		if !(reachedTarget && exactIn) {
			amountIn = sqrtmath.GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, true)
		}
		if !(reachedTarget && !exactIn) {
			amountOut = sqrtmath.GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, false)
		}
	}

	// exact-output swaps never hand out more than was asked for.
	if !exactIn {
		negRemaining := new(ui.Int).Neg(amountRemaining)
		if amountOut.Cmp(negRemaining) > 0 {
			amountOut = negRemaining
		}
	}

	if exactIn && sqrtRatioNextX96.Cmp(sqrtRatioTargetX96) != 0 {
		// the full remaining amount was consumed before reaching the target;
		// whatever wasn't counted as amountIn is fee.
		feeAmount = new(ui.Int).Sub(amountRemaining, amountIn)
	} else {
		feeAmount = fm.MulDivRoundingUp(amountIn, feePipsI, new(ui.Int).Sub(MaxFeePips, feePipsI))
	}

	return sqrtRatioNextX96, amountIn, amountOut, feeAmount
}
