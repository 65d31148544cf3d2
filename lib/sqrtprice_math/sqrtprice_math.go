// Package sqrtprice_math computes token amount deltas and next-price moves
// for a Q64.96 sqrt price, mirroring the reference contract's
// SqrtPriceMath library bit for bit (rounding discipline included).
package sqrtprice_math

import (
	cons "github.com/ftchann/clmm-simulator/lib/constants"
	"github.com/ftchann/clmm-simulator/lib/fullmath"

	ui "github.com/holiman/uint256"
)

func multiplyIn256(x, y *ui.Int) *ui.Int {
	product := new(ui.Int).Mul(x, y)
	return new(ui.Int).And(product, cons.MaxUint256)
}

func addIn256(x, y *ui.Int) *ui.Int {
	sum := new(ui.Int).Add(x, y)
	return new(ui.Int).And(sum, cons.MaxUint256)
}

// GetAmount0Delta returns the amount of token0 for a position covering the
// price range [sqrtRatioAX96, sqrtRatioBX96] at the given liquidity.
func GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *ui.Int, roundUp bool) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	numerator1 := new(ui.Int).Lsh(liquidity, 96)
	numerator2 := new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		return fullmath.MulDivRoundingUp(fullmath.MulDivRoundingUp(numerator1, numerator2, sqrtRatioBX96), cons.One, sqrtRatioAX96)
	}
	res := fullmath.MulDiv(numerator1, numerator2, sqrtRatioBX96)
	return res.Div(res, sqrtRatioAX96)
}

// GetAmount1Delta returns the amount of token1 for the same range.
func GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *ui.Int, roundUp bool) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	if roundUp {
		return fullmath.MulDivRoundingUp(liquidity, new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96), cons.Q96)
	}
	return fullmath.MulDiv(liquidity, new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96), cons.Q96)
}

// GetAmount0DeltaSigned rounds according to the sign of liquidity, matching
// the reference contract's overload used by _modifyPosition: rounds up when
// liquidity is being added, down when it is being removed.
func GetAmount0DeltaSigned(sqrtRatioAX96, sqrtRatioBX96, liquidity *ui.Int) *ui.Int {
	if liquidity.Sign() < 0 {
		return new(ui.Int).Neg(GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, new(ui.Int).Neg(liquidity), false))
	}
	return GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, true)
}

// GetAmount1DeltaSigned is the token1 analogue of GetAmount0DeltaSigned.
func GetAmount1DeltaSigned(sqrtRatioAX96, sqrtRatioBX96, liquidity *ui.Int) *ui.Int {
	if liquidity.Sign() < 0 {
		return new(ui.Int).Neg(GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, new(ui.Int).Neg(liquidity), false))
	}
	return GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, true)
}

// GetNextSqrtPriceFromInput returns the next sqrt price after adding
// amountIn of the input token, rounding in the direction that favors the
// pool (never gives away more than it should).
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *ui.Int, zeroForOne bool) *ui.Int {
	if zeroForOne {
		return getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput is the symmetric helper for exact-output steps.
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *ui.Int, zeroForOne bool) *ui.Int {
	if zeroForOne {
		return getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}

func getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *ui.Int, add bool) *ui.Int {
	if amount.IsZero() {
		return new(ui.Int).Set(sqrtPX96)
	}
	numerator1 := new(ui.Int).Lsh(liquidity, 96)

	if add {
		product := multiplyIn256(amount, sqrtPX96)
		if new(ui.Int).Div(product, amount).Eq(sqrtPX96) {
			denominator := addIn256(numerator1, product)
			if denominator.Cmp(numerator1) >= 0 {
				return fullmath.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
			}
		}
		return fullmath.MulDivRoundingUp(numerator1, cons.One, new(ui.Int).Add(new(ui.Int).Div(numerator1, sqrtPX96), amount))
	}

	product := multiplyIn256(amount, sqrtPX96)
	denominator := new(ui.Int).Sub(numerator1, product)
	return fullmath.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
}

func getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *ui.Int, add bool) *ui.Int {
	if add {
		var quotient *ui.Int
		if amount.Cmp(cons.MaxUint160) <= 0 {
			quotient = new(ui.Int).Div(new(ui.Int).Lsh(amount, 96), liquidity)
		} else {
			quotient = new(ui.Int).Div(new(ui.Int).Mul(amount, cons.Q96), liquidity)
		}
		return new(ui.Int).Add(sqrtPX96, quotient)
	}
	quotient := fullmath.MulDivRoundingUp(amount, cons.Q96, liquidity)
	return new(ui.Int).Sub(sqrtPX96, quotient)
}
