// Package liquidityamounts converts between token amounts and the
// liquidity figure the pool engine actually tracks, for callers (a CLI
// command, a test fixture) that think in terms of "I have X of token0 and Y
// of token1" rather than the L unit.
package liquidityamounts

import (
	cons "github.com/ftchann/clmm-simulator/lib/constants"
	"github.com/ftchann/clmm-simulator/lib/fullmath"

	ui "github.com/holiman/uint256"
)

// GetLiquidityForAmount0 returns the liquidity received for amount0 of
// token0, for a position spanning [sqrtRatioAX96, sqrtRatioBX96].
func GetLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *ui.Int) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	intermediate := fullmath.MulDiv(sqrtRatioAX96, sqrtRatioBX96, cons.Q96)
	return fullmath.MulDiv(amount0, intermediate, new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// GetLiquidityForAmount1 is the token1 analogue of GetLiquidityForAmount0.
func GetLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *ui.Int) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	return fullmath.MulDiv(amount1, cons.Q96, new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// GetLiquidityForAmounts returns the maximum liquidity that amount0 and
// amount1 can support at the current price, picking whichever token is the
// binding constraint depending on where sqrtRatioX96 falls relative to the
// range.
func GetLiquidityForAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *ui.Int) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	switch {
	case sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0:
		return GetLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0)
	case sqrtRatioX96.Cmp(sqrtRatioBX96) < 0:
		liquidity0 := GetLiquidityForAmount0(sqrtRatioX96, sqrtRatioBX96, amount0)
		liquidity1 := GetLiquidityForAmount1(sqrtRatioAX96, sqrtRatioX96, amount1)
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0
		}
		return liquidity1
	default:
		return GetLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
	}
}
