package event

import (
	"context"
	"fmt"

	"github.com/ftchann/clmm-simulator/statemachine"

	ui "github.com/holiman/uint256"
)

// Mismatch reports that neither exact-in nor exact-out replay of a swap
// event reproduced its recorded amounts.
type Mismatch struct {
	EventID string
	Reason  string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("event: swap %s did not replay: %s", m.EventID, m.Reason)
}

// Replayer drives a pool through an ordered liquidity/swap event stream,
// implementing the recorded-amounts-only swap replay policy: since the
// event only records both resulting amounts and not which side the
// original caller specified, dry-run querySwap(zeroForOne, amount0) first;
// if it doesn't reproduce the recorded amounts, retry with amount1; commit
// with whichever dry run matched. LiquidityOwner names the synthetic owner
// used for every replayed MINT/BURN, since the on-chain events don't carry
// one.
type Replayer struct {
	Pool           *statemachine.ConfigurableCorePool
	LiquidityOwner string
	OnProgress     func(blockNumber uint64)
}

// NewReplayer wraps a live ConfigurableCorePool.
func NewReplayer(p *statemachine.ConfigurableCorePool, liquidityOwner string) *Replayer {
	return &Replayer{Pool: p, LiquidityOwner: liquidityOwner}
}

// ReplayLiquidity applies one MINT or BURN event.
func (r *Replayer) ReplayLiquidity(ev LiquidityEvent) error {
	var amount0, amount1 *ui.Int
	var err error
	switch ev.Type {
	case "MINT":
		amount0, amount1, err = r.Pool.Mint(r.LiquidityOwner, ev.TickLower, ev.TickUpper, ev.Liquidity)
	case "BURN":
		amount0, amount1, err = r.Pool.Burn(r.LiquidityOwner, ev.TickLower, ev.TickUpper, ev.Liquidity)
	default:
		return fmt.Errorf("event: unknown liquidity event type %q for event %s", ev.Type, ev.ID)
	}
	if err != nil {
		return fmt.Errorf("event: replay %s event %s: %w", ev.Type, ev.ID, err)
	}
	if !amount0.Eq(ev.Amount0) || !amount1.Eq(ev.Amount1) {
		return &Mismatch{EventID: ev.ID, Reason: "engine amounts differ from recorded amounts"}
	}
	if r.OnProgress != nil {
		r.OnProgress(ev.BlockNumber)
	}
	return nil
}

// ReplaySwap applies one SWAP event using the recorded-amounts replay
// policy: dry-run with amount0 as the specified amount; if the resulting
// amounts don't match the event, retry the dry run with amount1; commit
// with whichever succeeded. Returns a *Mismatch if neither attempt
// reproduces the recorded amounts.
func (r *Replayer) ReplaySwap(ev SwapEvent) error {
	zeroForOne := ev.ZeroForOne()

	amount0, amount1, err := r.Pool.QuerySwap(zeroForOne, ev.Amount0, ev.SqrtPriceX96)
	specified := ev.Amount0
	if err != nil || !amount0.Eq(ev.Amount0) || !amount1.Eq(ev.Amount1) {
		amount0, amount1, err = r.Pool.QuerySwap(zeroForOne, ev.Amount1, ev.SqrtPriceX96)
		specified = ev.Amount1
		if err != nil || !amount0.Eq(ev.Amount0) || !amount1.Eq(ev.Amount1) {
			return &Mismatch{EventID: ev.ID, Reason: "neither amount0 nor amount1 dry run reproduced the recorded amounts"}
		}
	}

	gotAmount0, gotAmount1, err := r.Pool.Swap(zeroForOne, specified, ev.SqrtPriceX96)
	if err != nil {
		return fmt.Errorf("event: commit swap event %s: %w", ev.ID, err)
	}
	if !gotAmount0.Eq(ev.Amount0) || !gotAmount1.Eq(ev.Amount1) {
		return &Mismatch{EventID: ev.ID, Reason: "committed swap amounts differ from the matching dry run"}
	}
	if r.OnProgress != nil {
		r.OnProgress(ev.BlockNumber)
	}
	return nil
}

// ReplayAll drives every liquidity and swap event, merged into recorded
// (blockNumber, logIndex) order, stopping at the first error.
func ReplayAll(ctx context.Context, r *Replayer, liquidityEvents []LiquidityEvent, swapEvents []SwapEvent) error {
	li, si := 0, 0
	for li < len(liquidityEvents) || si < len(swapEvents) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		useLiquidity := si >= len(swapEvents) ||
			(li < len(liquidityEvents) && before(liquidityEvents[li].BlockNumber, liquidityEvents[li].LogIndex, swapEvents[si].BlockNumber, swapEvents[si].LogIndex))

		if useLiquidity {
			if err := r.ReplayLiquidity(liquidityEvents[li]); err != nil {
				return err
			}
			li++
		} else {
			if err := r.ReplaySwap(swapEvents[si]); err != nil {
				return err
			}
			si++
		}
	}
	return nil
}

func before(blockA, logA, blockB, logB uint64) bool {
	if blockA != blockB {
		return blockA < blockB
	}
	return logA < logB
}
