package tickmath

import (
	"math/big"
	"testing"

	ui "github.com/holiman/uint256"
)

func TestGetSqrtRatioAtTickBounds(t *testing.T) {
	if GetSqrtRatioAtTick(MinTick).Cmp(MinSqrtRatio) != 0 {
		t.Fatalf("sqrtRatioAtTick(MinTick) should equal MinSqrtRatio")
	}
	maxRatio := GetSqrtRatioAtTick(MaxTick)
	if maxRatio.Cmp(MaxSqrtRatio) != 0 {
		t.Fatalf("sqrtRatioAtTick(MaxTick) should equal MaxSqrtRatio, got %v", maxRatio)
	}
}

func TestTickRoundTrip(t *testing.T) {
	for _, tick := range []int{MinTick, -887271, -1, 0, 1, 195285, 887271, MaxTick} {
		ratio := GetSqrtRatioAtTick(tick)
		got := GetTickAtSqrtRatio(ratio)
		if got != tick {
			t.Fatalf("tick=%d roundtrip got=%d", tick, got)
		}
	}
}

func TestGetTickAtSqrtRatioMonotonicBracket(t *testing.T) {
	sqrtX96big, _ := new(big.Int).SetString("1350174849792634181862360983626536", 10)
	sqrtX96, _ := ui.FromBig(sqrtX96big)
	tick := GetTickAtSqrtRatio(sqrtX96)

	lower := GetSqrtRatioAtTick(tick)
	upper := GetSqrtRatioAtTick(tick + 1)
	if lower.Cmp(sqrtX96) > 0 || upper.Cmp(sqrtX96) <= 0 {
		t.Fatalf("tick %d does not bracket sqrtX96=%v: lower=%v upper=%v", tick, sqrtX96, lower, upper)
	}
}

func TestScenarioInitializeTick(t *testing.T) {
	sqrtX96, _ := ui.FromHex("0x43efef20f018fdc58e7a5cf0416a")
	tick := GetTickAtSqrtRatio(sqrtX96)
	if tick != 195285 {
		t.Fatalf("want tick=195285 got=%d", tick)
	}
}
