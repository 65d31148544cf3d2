package ticktable

import (
	"testing"

	ui "github.com/holiman/uint256"
)

func TestUpdateSeedsFeeGrowthOutsideBelowCurrent(t *testing.T) {
	table := New()
	global0 := ui.NewInt(1000)
	global1 := ui.NewInt(2000)
	max := ui.NewInt(1 << 62)

	flipped, err := table.Update(-60, 0, ui.NewInt(5), global0, global1, false, max)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flipped {
		t.Fatalf("liquidityGross should flip from zero on first touch")
	}

	info, _ := table.Get(-60)
	if info.FeeGrowthOutside0X128.Cmp(global0) != 0 {
		t.Fatalf("tick at/below current should seed feeGrowthOutside with the global value")
	}
}

func TestUpdateAboveCurrentStartsAtZero(t *testing.T) {
	table := New()
	max := ui.NewInt(1 << 62)
	_, err := table.Update(60, 0, ui.NewInt(5), ui.NewInt(1000), ui.NewInt(2000), true, max)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, _ := table.Get(60)
	if !info.FeeGrowthOutside0X128.IsZero() {
		t.Fatalf("tick above current should start with zero feeGrowthOutside")
	}
}

func TestUpdateUpperFlipsLiquidityNetSign(t *testing.T) {
	table := New()
	max := ui.NewInt(1 << 62)
	table.Update(60, 0, ui.NewInt(10), ui.NewInt(0), ui.NewInt(0), true, max)
	info, _ := table.Get(60)
	if info.LiquidityNet.Sign() >= 0 {
		t.Fatalf("upper-bound tick should subtract liquidityDelta from liquidityNet")
	}
}

func TestUpdateExceedsMaxLiquidityPerTick(t *testing.T) {
	table := New()
	max := ui.NewInt(5)
	_, err := table.Update(60, 0, ui.NewInt(10), ui.NewInt(0), ui.NewInt(0), false, max)
	if err != ErrMaxLiquidityPerTick {
		t.Fatalf("want ErrMaxLiquidityPerTick, got %v", err)
	}
}

func TestUpdateUnderflowReturnsErrorInsteadOfPanicking(t *testing.T) {
	table := New()
	max := ui.NewInt(1 << 62)
	_, err := table.Update(60, 0, new(ui.Int).Neg(ui.NewInt(1)), ui.NewInt(0), ui.NewInt(0), false, max)
	if err != ErrLiquidityUnderflow {
		t.Fatalf("want ErrLiquidityUnderflow, got %v", err)
	}
}

func TestCrossFlipsFeeGrowthOutside(t *testing.T) {
	table := New()
	max := ui.NewInt(1 << 62)
	table.Update(60, 100, ui.NewInt(5), ui.NewInt(0), ui.NewInt(0), false, max)

	liquidityNet := table.Cross(60, ui.NewInt(1000), ui.NewInt(2000))
	if liquidityNet.Cmp(ui.NewInt(5)) != 0 {
		t.Fatalf("cross should return the tick's liquidityNet")
	}
	info, _ := table.Get(60)
	if info.FeeGrowthOutside0X128.Cmp(ui.NewInt(1000)) != 0 {
		t.Fatalf("outside growth should become global-outside after crossing, got %v", info.FeeGrowthOutside0X128)
	}
}

func TestGetFeeGrowthInsideRange(t *testing.T) {
	table := New()
	max := ui.NewInt(1 << 62)
	global0 := ui.NewInt(1000)
	global1 := ui.NewInt(1000)

	table.Update(-60, 0, ui.NewInt(10), global0, global1, false, max)
	table.Update(60, 0, ui.NewInt(10), global0, global1, true, max)

	inside0, inside1 := table.GetFeeGrowthInside(-60, 60, 0, global0, global1)
	if !inside0.IsZero() || !inside1.IsZero() {
		t.Fatalf("a range opened around the current tick starts with zero fee growth inside, got %v %v", inside0, inside1)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	table := New()
	max := ui.NewInt(1 << 62)
	table.Update(60, 0, ui.NewInt(5), ui.NewInt(0), ui.NewInt(0), false, max)

	clone := table.Clone()
	clone.Update(60, 0, ui.NewInt(5), ui.NewInt(0), ui.NewInt(0), false, max)

	original, _ := table.Get(60)
	cloned, _ := clone.Get(60)
	if original.LiquidityGross.Cmp(cloned.LiquidityGross) == 0 {
		t.Fatalf("mutating a clone must not affect the original's liquidityGross")
	}
}

func TestSortedTicksAscending(t *testing.T) {
	table := New()
	max := ui.NewInt(1 << 62)
	table.Update(120, 0, ui.NewInt(1), ui.NewInt(0), ui.NewInt(0), false, max)
	table.Update(-60, 0, ui.NewInt(1), ui.NewInt(0), ui.NewInt(0), false, max)
	table.Update(0, 0, ui.NewInt(1), ui.NewInt(0), ui.NewInt(0), false, max)

	ticks := table.SortedTicks()
	want := []int{-60, 0, 120}
	for i, tick := range want {
		if ticks[i] != tick {
			t.Fatalf("sorted ticks = %v, want %v", ticks, want)
		}
	}
}
