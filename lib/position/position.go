// Package position tracks a liquidity provider's stake in one tick range:
// its liquidity, the fee growth already credited, and tokens owed but not
// yet collected.
package position

import (
	cons "github.com/ftchann/clmm-simulator/lib/constants"
	"github.com/ftchann/clmm-simulator/lib/fullmath"

	ui "github.com/holiman/uint256"
)

// Key identifies a position by its owner and tick range.
type Key struct {
	Owner     string
	TickLower int
	TickUpper int
}

// Info is one position's accounting state.
type Info struct {
	Liquidity                *ui.Int
	FeeGrowthInside0LastX128 *ui.Int
	FeeGrowthInside1LastX128 *ui.Int
	TokensOwed0              *ui.Int
	TokensOwed1              *ui.Int
}

// New returns a zeroed position.
func New() *Info {
	return &Info{
		Liquidity:                new(ui.Int),
		FeeGrowthInside0LastX128: new(ui.Int),
		FeeGrowthInside1LastX128: new(ui.Int),
		TokensOwed0:              new(ui.Int),
		TokensOwed1:              new(ui.Int),
	}
}

// Clone returns a deep copy of i.
func (i *Info) Clone() *Info {
	return &Info{
		Liquidity:                i.Liquidity.Clone(),
		FeeGrowthInside0LastX128: i.FeeGrowthInside0LastX128.Clone(),
		FeeGrowthInside1LastX128: i.FeeGrowthInside1LastX128.Clone(),
		TokensOwed0:              i.TokensOwed0.Clone(),
		TokensOwed1:              i.TokensOwed1.Clone(),
	}
}

// Update's failure modes, exported so the pool engine can map each to its
// own §7 ErrorKind. ErrNoLiquidityToPoke is the reference contract's
// "cannot poke a position with no liquidity" guard against a zero-delta
// mint/burn on an untouched position.
const (
	ErrNoLiquidityToPoke  = infoError("position: cannot poke a position with no liquidity")
	ErrLiquidityUnderflow = infoError("position: liquidity would underflow")
	ErrLiquidityOverflow  = infoError("position: liquidity would overflow the 128-bit domain")
)

type infoError string

func (e infoError) Error() string { return string(e) }

// Update applies a liquidity delta and the range's latest fee growth,
// crediting any fees accrued since the position's last touch to
// TokensOwed0/1 before moving the checkpoint forward. liquidityDelta may be
// zero (a pure fee-collection poke, matching the reference contract's
// zero-liquidity mint/burn idiom used to refresh owed tokens). Returns an
// error instead of mutating i on underflow/overflow, so a burn larger than
// the position's own liquidity aborts cleanly rather than panicking.
func (i *Info) Update(liquidityDelta, feeGrowthInside0X128, feeGrowthInside1X128 *ui.Int) error {
	var liquidityNext *ui.Int
	if liquidityDelta.IsZero() {
		if i.Liquidity.IsZero() {
			return ErrNoLiquidityToPoke
		}
		liquidityNext = i.Liquidity
	} else {
		next, underflow, overflow := fullmath.CheckedAddDelta(i.Liquidity, liquidityDelta)
		if underflow {
			return ErrLiquidityUnderflow
		}
		if overflow {
			return ErrLiquidityOverflow
		}
		liquidityNext = next
	}

	feeGrowthDelta0 := new(ui.Int).Sub(feeGrowthInside0X128, i.FeeGrowthInside0LastX128)
	feeGrowthDelta1 := new(ui.Int).Sub(feeGrowthInside1X128, i.FeeGrowthInside1LastX128)

	tokensOwed0 := fullmath.MulDiv(feeGrowthDelta0, i.Liquidity, cons.Q128)
	tokensOwed1 := fullmath.MulDiv(feeGrowthDelta1, i.Liquidity, cons.Q128)

	i.Liquidity = liquidityNext
	i.FeeGrowthInside0LastX128 = feeGrowthInside0X128.Clone()
	i.FeeGrowthInside1LastX128 = feeGrowthInside1X128.Clone()
	if !tokensOwed0.IsZero() || !tokensOwed1.IsZero() {
		i.TokensOwed0 = new(ui.Int).Add(i.TokensOwed0, tokensOwed0)
		i.TokensOwed1 = new(ui.Int).Add(i.TokensOwed1, tokensOwed1)
	}
	return nil
}
