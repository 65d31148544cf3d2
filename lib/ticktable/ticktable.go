// Package ticktable tracks per-tick liquidity and fee-growth-outside
// accounting: the sparse map of initialized ticks a pool needs to compute
// GetFeeGrowthInside and to flip net liquidity as the price crosses a tick
// boundary.
package ticktable

import (
	fm "github.com/ftchann/clmm-simulator/lib/fullmath"

	ui "github.com/holiman/uint256"
)

// Info is the per-tick state the pool engine maintains.
type Info struct {
	LiquidityGross        *ui.Int
	LiquidityNet          *ui.Int
	FeeGrowthOutside0X128 *ui.Int
	FeeGrowthOutside1X128 *ui.Int
	Initialized           bool
}

func newInfo() *Info {
	return &Info{
		LiquidityGross:        new(ui.Int),
		LiquidityNet:          new(ui.Int),
		FeeGrowthOutside0X128: new(ui.Int),
		FeeGrowthOutside1X128: new(ui.Int),
	}
}

// Clone returns a deep copy of i.
func (i *Info) Clone() *Info {
	return &Info{
		LiquidityGross:        i.LiquidityGross.Clone(),
		LiquidityNet:          i.LiquidityNet.Clone(),
		FeeGrowthOutside0X128: i.FeeGrowthOutside0X128.Clone(),
		FeeGrowthOutside1X128: i.FeeGrowthOutside1X128.Clone(),
		Initialized:           i.Initialized,
	}
}

// Table is the sparse tick -> Info map of a pool.
type Table struct {
	ticks map[int]*Info
}

// New returns an empty tick table.
func New() *Table {
	return &Table{ticks: make(map[int]*Info)}
}

// Clone returns a deep copy sharing no mutable state with t.
func (t *Table) Clone() *Table {
	out := New()
	for tick, info := range t.ticks {
		out.ticks[tick] = info.Clone()
	}
	return out
}

// Get returns the tick's info and whether it has ever been touched. The
// returned Info is never nil; an untouched tick reads as all-zero.
func (t *Table) Get(tick int) (*Info, bool) {
	info, ok := t.ticks[tick]
	if !ok {
		return newInfo(), false
	}
	return info, true
}

// Update applies a liquidity delta to tick, seeding FeeGrowthOutside on the
// transition from uninitialized, and reports whether LiquidityGross flipped
// between zero and non-zero (the caller must flip the tick's bitmap bit
// when this happens). upper indicates whether tick is being touched as a
// position's upper bound.
func (t *Table) Update(
	tick int,
	tickCurrent int,
	liquidityDelta *ui.Int,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 *ui.Int,
	upper bool,
	maxLiquidityPerTick *ui.Int,
) (flipped bool, err error) {
	info, existed := t.ticks[tick]
	if !existed {
		info = newInfo()
	}

	liquidityGrossBefore := info.LiquidityGross
	liquidityGrossAfter, underflow, overflow := fm.CheckedAddDelta(liquidityGrossBefore, liquidityDelta)
	if underflow {
		return false, ErrLiquidityUnderflow
	}
	if overflow {
		return false, ErrLiquidityOverflow
	}
	if liquidityGrossAfter.Cmp(maxLiquidityPerTick) > 0 {
		return false, ErrMaxLiquidityPerTick
	}

	flipped = liquidityGrossAfter.IsZero() != liquidityGrossBefore.IsZero()

	if liquidityGrossBefore.IsZero() {
		// a tick at or below the current price starts as if all growth to
		// date happened below it, so GetFeeGrowthInside nets out correctly
		// for positions opened after ticks below have already accrued fees.
		if tick <= tickCurrent {
			info.FeeGrowthOutside0X128 = feeGrowthGlobal0X128.Clone()
			info.FeeGrowthOutside1X128 = feeGrowthGlobal1X128.Clone()
		} else {
			info.FeeGrowthOutside0X128 = new(ui.Int)
			info.FeeGrowthOutside1X128 = new(ui.Int)
		}
	}

	info.LiquidityGross = liquidityGrossAfter
	if upper {
		info.LiquidityNet = new(ui.Int).Sub(info.LiquidityNet, liquidityDelta)
	} else {
		info.LiquidityNet = new(ui.Int).Add(info.LiquidityNet, liquidityDelta)
	}
	info.Initialized = true
	t.ticks[tick] = info
	return flipped, nil
}

// Cross flips a tick's fee-growth-outside accounting as the price crosses
// it, and returns the tick's signed liquidityNet so the pool can apply it
// to in-range liquidity.
func (t *Table) Cross(tick int, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *ui.Int) *ui.Int {
	info, ok := t.ticks[tick]
	if !ok {
		return new(ui.Int)
	}
	info.FeeGrowthOutside0X128 = new(ui.Int).Sub(feeGrowthGlobal0X128, info.FeeGrowthOutside0X128)
	info.FeeGrowthOutside1X128 = new(ui.Int).Sub(feeGrowthGlobal1X128, info.FeeGrowthOutside1X128)
	return info.LiquidityNet.Clone()
}

// Set installs info verbatim at tick, bypassing Update's seeding logic.
// Used when restoring a tick table from a snapshot, where the caller
// already has the exact per-tick values to install.
func (t *Table) Set(tick int, info *Info) {
	t.ticks[tick] = info
}

// Clear removes a tick once its LiquidityGross returns to zero.
func (t *Table) Clear(tick int) {
	delete(t.ticks, tick)
}

// GetFeeGrowthInside returns the fee growth accrued inside [tickLower,
// tickUpper] per unit of liquidity, computed as global minus the growth
// outside both boundaries, matching the reference contract's three-region
// decomposition (below / inside / above).
func (t *Table) GetFeeGrowthInside(
	tickLower, tickUpper, tickCurrent int,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 *ui.Int,
) (feeGrowthInside0X128, feeGrowthInside1X128 *ui.Int) {
	lower, _ := t.Get(tickLower)
	upper, _ := t.Get(tickUpper)

	var feeGrowthBelow0, feeGrowthBelow1 *ui.Int
	if tickCurrent >= tickLower {
		feeGrowthBelow0 = lower.FeeGrowthOutside0X128
		feeGrowthBelow1 = lower.FeeGrowthOutside1X128
	} else {
		feeGrowthBelow0 = new(ui.Int).Sub(feeGrowthGlobal0X128, lower.FeeGrowthOutside0X128)
		feeGrowthBelow1 = new(ui.Int).Sub(feeGrowthGlobal1X128, lower.FeeGrowthOutside1X128)
	}

	var feeGrowthAbove0, feeGrowthAbove1 *ui.Int
	if tickCurrent < tickUpper {
		feeGrowthAbove0 = upper.FeeGrowthOutside0X128
		feeGrowthAbove1 = upper.FeeGrowthOutside1X128
	} else {
		feeGrowthAbove0 = new(ui.Int).Sub(feeGrowthGlobal0X128, upper.FeeGrowthOutside0X128)
		feeGrowthAbove1 = new(ui.Int).Sub(feeGrowthGlobal1X128, upper.FeeGrowthOutside1X128)
	}

	feeGrowthInside0X128 = new(ui.Int).Sub(new(ui.Int).Sub(feeGrowthGlobal0X128, feeGrowthBelow0), feeGrowthAbove0)
	feeGrowthInside1X128 = new(ui.Int).Sub(new(ui.Int).Sub(feeGrowthGlobal1X128, feeGrowthBelow1), feeGrowthAbove1)
	return feeGrowthInside0X128, feeGrowthInside1X128
}

// SortedTicks returns every initialized tick index in ascending order, for
// deterministic snapshot encoding.
func (t *Table) SortedTicks() []int {
	out := make([]int, 0, len(t.ticks))
	for tick := range t.ticks {
		out = append(out, tick)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

type tableError string

func (e tableError) Error() string { return string(e) }

// Update's failure modes, exported so the pool engine can distinguish them
// and map each to its own §7 ErrorKind instead of a single catch-all.
const (
	ErrMaxLiquidityPerTick = tableError("ticktable: liquidity gross would exceed maxLiquidityPerTick")
	ErrLiquidityUnderflow  = tableError("ticktable: liquidity gross would underflow")
	ErrLiquidityOverflow   = tableError("ticktable: liquidity gross would overflow the 128-bit domain")
)
