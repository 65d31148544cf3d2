// Package fullmath implements the 512-bit-safe mulDiv primitives and the
// liquidity delta helpers the pool engine leans on. No floating point,
// ever: every quantity on the price/tick/fee path is an exact integer.
package fullmath

import (
	cons "github.com/ftchann/clmm-simulator/lib/constants"

	ui "github.com/holiman/uint256"
)

// MulDiv computes floor(a*b/denominator). Panics if denominator is zero or
// if the full-precision product overflows 256 bits once divided back down,
// matching the Solidity library's revert-on-overflow behavior.
func MulDiv(a, b, denominator *ui.Int) *ui.Int {
	result, overflow := new(ui.Int).MulDivOverflow(a, b, denominator)
	if overflow {
		panic("fullmath: mulDiv overflow")
	}
	return result
}

// CheckedMulDiv is MulDiv guarded against the panic: it reports overflow as
// a bool instead, for the one caller (the pool's per-step fee-growth
// accumulation) that can be driven toward the 256-bit boundary by
// adversarial fee/liquidity magnitudes and needs to abort as a core.Error
// rather than crash.
func CheckedMulDiv(a, b, denominator *ui.Int) (result *ui.Int, overflow bool) {
	return new(ui.Int).MulDivOverflow(a, b, denominator)
}

// MulDivRoundingUp computes ceil(a*b/denominator).
func MulDivRoundingUp(a, b, denominator *ui.Int) *ui.Int {
	if a.IsZero() || b.IsZero() {
		return ui.NewInt(0)
	}
	result := MulDiv(a, b, denominator)
	rem := new(ui.Int).MulMod(a, b, denominator)
	if !rem.IsZero() {
		result.Add(result, cons.One)
	}
	return result
}

// AddDelta adds a signed liquidity delta to an unsigned liquidity value.
// Panics on underflow or overflow; callers on the pool's write path must
// not reach this panic on well-typed input — they pre-check with
// WouldUnderflow/WouldOverflow and surface a core.Error instead, per the
// §7 error taxonomy. The panic stays as the last-resort invariant guard
// for a caller that skips the pre-check.
func AddDelta(x *ui.Int, delta *ui.Int) *ui.Int {
	if delta.Sign() < 0 {
		magnitude := new(ui.Int).Neg(delta)
		if x.Cmp(magnitude) < 0 {
			panic("fullmath: liquidity sub underflow")
		}
		return new(ui.Int).Sub(x, magnitude)
	}
	result := new(ui.Int).Add(x, delta)
	if result.Cmp(cons.MaxUint128) > 0 {
		panic("fullmath: liquidity add overflow")
	}
	return result
}

// WouldUnderflow reports whether AddDelta(x, delta) would underflow.
func WouldUnderflow(x *ui.Int, delta *ui.Int) bool {
	if delta.Sign() >= 0 {
		return false
	}
	magnitude := new(ui.Int).Neg(delta)
	return x.Cmp(magnitude) < 0
}

// WouldOverflow reports whether AddDelta(x, delta) would overflow the
// 128-bit liquidity domain.
func WouldOverflow(x *ui.Int, delta *ui.Int) bool {
	if delta.Sign() < 0 {
		return false
	}
	result := new(ui.Int).Add(x, delta)
	return result.Cmp(cons.MaxUint128) > 0
}

// CheckedAddDelta is AddDelta guarded by WouldUnderflow/WouldOverflow: it
// returns the same failure as a bool pair instead of panicking, so a
// caller can turn it into a recoverable error before any state mutation.
func CheckedAddDelta(x *ui.Int, delta *ui.Int) (result *ui.Int, underflow, overflow bool) {
	if WouldUnderflow(x, delta) {
		return nil, true, false
	}
	if WouldOverflow(x, delta) {
		return nil, false, true
	}
	return AddDelta(x, delta), false, false
}
