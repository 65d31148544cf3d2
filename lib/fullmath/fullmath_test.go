package fullmath

import (
	"fmt"
	"testing"

	ui "github.com/holiman/uint256"
)

func TestMulDivRoundingUp(t *testing.T) {
	tests := [][]uint64{
		{0, 500, 1000000, 0},
		{1, 500, 1000000, 1},
		{1000000, 1, 1000000, 1},
		{1000001, 1, 1000000, 2},
	}
	for _, arg := range tests {
		t.Run(fmt.Sprint(arg), func(t *testing.T) {
			result := MulDivRoundingUp(ui.NewInt(arg[0]), ui.NewInt(arg[1]), ui.NewInt(arg[2]))
			if ui.NewInt(arg[3]).Cmp(result) != 0 {
				t.Fatalf("want=%v result=%v", arg[3], result)
			}
		})
	}
}

func TestMulDiv(t *testing.T) {
	tests := [][]uint64{
		{0, 500, 1000000, 0},
		{1000000, 500, 1000000, 500},
		{999999, 1, 1000000, 0},
	}
	for _, arg := range tests {
		t.Run(fmt.Sprint(arg), func(t *testing.T) {
			result := MulDiv(ui.NewInt(arg[0]), ui.NewInt(arg[1]), ui.NewInt(arg[2]))
			if ui.NewInt(arg[3]).Cmp(result) != 0 {
				t.Fatalf("want=%v result=%v", arg[3], result)
			}
		})
	}
}

func TestAddDelta(t *testing.T) {
	got := AddDelta(ui.NewInt(10), new(ui.Int).Neg(ui.NewInt(4)))
	if got.Cmp(ui.NewInt(6)) != 0 {
		t.Fatalf("want=6 got=%v", got)
	}

	got = AddDelta(ui.NewInt(10), ui.NewInt(4))
	if got.Cmp(ui.NewInt(14)) != 0 {
		t.Fatalf("want=14 got=%v", got)
	}
}

func TestAddDeltaUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on underflow")
		}
	}()
	AddDelta(ui.NewInt(1), new(ui.Int).Neg(ui.NewInt(2)))
}

func TestCheckedAddDeltaReportsInsteadOfPanicking(t *testing.T) {
	_, underflow, overflow := CheckedAddDelta(ui.NewInt(1), new(ui.Int).Neg(ui.NewInt(2)))
	if !underflow || overflow {
		t.Fatalf("want underflow=true overflow=false, got underflow=%v overflow=%v", underflow, overflow)
	}

	result, underflow, overflow := CheckedAddDelta(ui.NewInt(10), new(ui.Int).Neg(ui.NewInt(4)))
	if underflow || overflow {
		t.Fatalf("did not expect a failure, got underflow=%v overflow=%v", underflow, overflow)
	}
	if result.Cmp(ui.NewInt(6)) != 0 {
		t.Fatalf("want=6 got=%v", result)
	}
}

func TestCheckedMulDiv(t *testing.T) {
	result, overflow := CheckedMulDiv(ui.NewInt(1000000), ui.NewInt(500), ui.NewInt(1000000))
	if overflow {
		t.Fatalf("did not expect overflow")
	}
	if result.Cmp(ui.NewInt(500)) != 0 {
		t.Fatalf("want=500 got=%v", result)
	}
}

func TestWouldUnderflowOverflow(t *testing.T) {
	if !WouldUnderflow(ui.NewInt(1), new(ui.Int).Neg(ui.NewInt(2))) {
		t.Fatalf("expected underflow")
	}
	if WouldUnderflow(ui.NewInt(5), new(ui.Int).Neg(ui.NewInt(2))) {
		t.Fatalf("did not expect underflow")
	}
	if WouldOverflow(ui.NewInt(1), ui.NewInt(1)) {
		t.Fatalf("did not expect overflow")
	}
}
