package core

import (
	"github.com/ftchann/clmm-simulator/lib/fullmath"
	"github.com/ftchann/clmm-simulator/lib/swapmath"
	"github.com/ftchann/clmm-simulator/lib/tickmath"

	cons "github.com/ftchann/clmm-simulator/lib/constants"

	ui "github.com/holiman/uint256"
)

// Swap drives the step loop of §4.E: it walks the price from its current
// value toward sqrtPriceLimitX96 (or until amountSpecified is exhausted),
// crossing initialized ticks and accruing fees one 256-bit word at a time.
// amountSpecified > 0 means exact-input; < 0 means exact-output; == 0 is a
// no-op returning (0,0) with no state change.
func (p *Pool) Swap(zeroForOne bool, amountSpecified *ui.Int, sqrtPriceLimitX96 *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if err := p.requireInitialized(); err != nil {
		return nil, nil, err
	}
	if amountSpecified.IsZero() {
		return new(ui.Int), new(ui.Int), nil
	}

	s := p.State

	// Equal-to-current is accepted (the step loop below then runs zero
	// iterations and returns (0,0)); a limit on the wrong side of current
	// price, or at or beyond MinSqrtRatio/MaxSqrtRatio, is rejected.
	if zeroForOne {
		if sqrtPriceLimitX96.Cmp(s.SqrtPriceX96) > 0 || sqrtPriceLimitX96.Cmp(tickmath.MinSqrtRatio) <= 0 {
			return nil, nil, newErr(ErrBadPriceLimit, "sqrtPriceLimitX96=%v invalid for zeroForOne swap from %v", sqrtPriceLimitX96, s.SqrtPriceX96)
		}
	} else {
		if sqrtPriceLimitX96.Cmp(s.SqrtPriceX96) < 0 || sqrtPriceLimitX96.Cmp(tickmath.MaxSqrtRatio) >= 0 {
			return nil, nil, newErr(ErrBadPriceLimit, "sqrtPriceLimitX96=%v invalid for one-for-zero swap from %v", sqrtPriceLimitX96, s.SqrtPriceX96)
		}
	}

	exactInput := amountSpecified.Sign() > 0

	amountSpecifiedRemaining := amountSpecified.Clone()
	amountCalculated := new(ui.Int)
	sqrtPriceX96 := s.SqrtPriceX96.Clone()
	tick := s.TickCurrent
	liquidity := s.Liquidity.Clone()

	feeGrowthGlobal0X128 := s.FeeGrowthGlobal0X128.Clone()
	feeGrowthGlobal1X128 := s.FeeGrowthGlobal1X128.Clone()
	// Crossings go to a copy of the tick table, written back with the rest.
	ticks := s.Ticks.Clone()

	for !amountSpecifiedRemaining.IsZero() && sqrtPriceX96.Cmp(sqrtPriceLimitX96) != 0 {
		stepStart := sqrtPriceX96.Clone()

		nextTick, initialized := s.Bitmap.NextInitializedTickWithinOneWord(tick, s.Config.TickSpacing, zeroForOne)
		if nextTick < tickmath.MinTick {
			nextTick = tickmath.MinTick
		} else if nextTick > tickmath.MaxTick {
			nextTick = tickmath.MaxTick
		}

		sqrtPriceNextTick := tickmath.GetSqrtRatioAtTick(nextTick)

		var sqrtPriceTarget *ui.Int
		if zeroForOne {
			sqrtPriceTarget = maxUint(sqrtPriceLimitX96, sqrtPriceNextTick)
		} else {
			sqrtPriceTarget = minUint(sqrtPriceLimitX96, sqrtPriceNextTick)
		}

		var amtIn, amtOut, fee *ui.Int
		sqrtPriceX96, amtIn, amtOut, fee = swapmath.ComputeSwapStep(stepStart, sqrtPriceTarget, liquidity, amountSpecifiedRemaining, s.Config.FeePips)

		if exactInput {
			amountSpecifiedRemaining = new(ui.Int).Sub(amountSpecifiedRemaining, new(ui.Int).Add(amtIn, fee))
			amountCalculated = new(ui.Int).Sub(amountCalculated, amtOut)
		} else {
			amountSpecifiedRemaining = new(ui.Int).Add(amountSpecifiedRemaining, amtOut)
			amountCalculated = new(ui.Int).Add(amountCalculated, new(ui.Int).Add(amtIn, fee))
		}

		if liquidity.Sign() > 0 {
			feeGrowthDelta, overflow := fullmath.CheckedMulDiv(fee, cons.Q128, liquidity)
			if overflow {
				return nil, nil, newErr(ErrOverflow, "fee growth accumulation overflowed at tick=%d fee=%v liquidity=%v", tick, fee, liquidity)
			}
			if zeroForOne {
				feeGrowthGlobal0X128 = new(ui.Int).Add(feeGrowthGlobal0X128, feeGrowthDelta)
			} else {
				feeGrowthGlobal1X128 = new(ui.Int).Add(feeGrowthGlobal1X128, feeGrowthDelta)
			}
		}

		if sqrtPriceX96.Cmp(sqrtPriceNextTick) == 0 {
			if initialized {
				liquidityNet := ticks.Cross(nextTick, feeGrowthGlobal0X128, feeGrowthGlobal1X128)
				if zeroForOne {
					liquidityNet = new(ui.Int).Neg(liquidityNet)
				}
				// Checked here, before s (the live state) is written back at
				// the end of the loop, so a failure aborts with no mutation.
				next, underflow, overflow := fullmath.CheckedAddDelta(liquidity, liquidityNet)
				if underflow {
					return nil, nil, newErr(ErrLiquiditySubUnderflow, "crossing tick=%d would underflow liquidity=%v", nextTick, liquidity)
				}
				if overflow {
					return nil, nil, newErr(ErrLiquidityAddOverflow, "crossing tick=%d would overflow liquidity=%v", nextTick, liquidity)
				}
				liquidity = next
			}
			if zeroForOne {
				tick = nextTick - 1
			} else {
				tick = nextTick
			}
		} else if sqrtPriceX96.Cmp(stepStart) != 0 {
			tick = tickmath.GetTickAtSqrtRatio(sqrtPriceX96)
		}
	}

	s.SqrtPriceX96 = sqrtPriceX96
	s.TickCurrent = tick
	s.Liquidity = liquidity
	s.FeeGrowthGlobal0X128 = feeGrowthGlobal0X128
	s.FeeGrowthGlobal1X128 = feeGrowthGlobal1X128
	s.Ticks = ticks

	if zeroForOne == exactInput {
		amount0 = new(ui.Int).Sub(amountSpecified, amountSpecifiedRemaining)
		amount1 = amountCalculated
	} else {
		amount0 = amountCalculated
		amount1 = new(ui.Int).Sub(amountSpecified, amountSpecifiedRemaining)
	}
	return amount0, amount1, nil
}

func maxUint(a, b *ui.Int) *ui.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func minUint(a, b *ui.Int) *ui.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
