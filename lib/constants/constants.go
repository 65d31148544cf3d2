// Package constants holds the fixed-point and domain constants shared by
// the math packages: Q-notation powers of two, the all-ones 256-bit mask,
// and the tick-spacing table for the standard fee tiers.
package constants

import (
	ui "github.com/holiman/uint256"
)

var (
	Zero          = new(ui.Int)
	One           = new(ui.Int).SetOne()
	MaxUint256, _ = ui.FromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	MaxUint160    = new(ui.Int).Sub(new(ui.Int).Exp(ui.NewInt(2), ui.NewInt(160)), One)
	MaxUint128, _ = ui.FromHex("0xffffffffffffffffffffffffffffffff")

	Q32  = ui.NewInt(1 << 32)
	Q96  = new(ui.Int).Exp(ui.NewInt(2), ui.NewInt(96))
	Q128 = new(ui.Int).Exp(ui.NewInt(2), ui.NewInt(128))
	Q192 = new(ui.Int).Exp(Q96, ui.NewInt(2))

	E6  = new(ui.Int).Exp(ui.NewInt(10), ui.NewInt(6))
	E18 = new(ui.Int).Exp(ui.NewInt(10), ui.NewInt(18))
)

// TickSpacings maps a fee tier, in hundredths of a basis point, to the
// tick spacing the factory assigns it.
var TickSpacings = map[uint32]int{
	500:   10,
	3000:  60,
	10000: 200,
}
