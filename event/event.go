// Package event defines the on-chain event records a pool is replayed
// against, an ordered loader for CSV/JSON event files, and the Replayer
// that drives a statemachine.ConfigurableCorePool through an event stream
// following the recorded-amounts-only swap replay policy.
package event

import (
	"time"

	ui "github.com/holiman/uint256"
)

// LiquidityEvent is one on-chain MINT or BURN record.
type LiquidityEvent struct {
	ID          string    `json:"id"`
	BlockNumber uint64    `json:"blockNumber"`
	LogIndex    uint64    `json:"logIndex"`
	Type        string    `json:"type"` // "MINT" or "BURN"
	TickLower   int       `json:"tickLower"`
	TickUpper   int       `json:"tickUpper"`
	Liquidity   *ui.Int   `json:"liquidity"`
	Amount0     *ui.Int   `json:"amount0"`
	Amount1     *ui.Int   `json:"amount1"`
	Date        time.Time `json:"date"`
}

// SwapEvent is one on-chain SWAP record. Amount0/Amount1 are signed
// (negative meaning the pool paid out that token), encoded as decimal
// strings on the wire and materialized here as *ui.Int in the wraparound
// two's-complement convention the rest of the engine uses.
type SwapEvent struct {
	ID          string `json:"id"`
	BlockNumber uint64 `json:"blockNumber"`
	LogIndex    uint64 `json:"logIndex"`
	// Amount0 must arrive pre-encoded as its two's-complement decimal
	// string (e.g. a subgraph export's signed amount), not a human "-123"
	// — the loader's decimal parser rejects a leading minus sign.
	Amount0      *ui.Int   `json:"amount0"`
	Amount1      *ui.Int   `json:"amount1"`
	SqrtPriceX96 *ui.Int   `json:"sqrtPriceX96"`
	Liquidity    *ui.Int   `json:"liquidity"`
	Tick         int       `json:"tick"`
	Date         time.Time `json:"date"`
}

// ZeroForOne reports the swap direction the replay policy assumes:
// zeroForOne iff amount0 is positive (token0 flowed into the pool).
func (e SwapEvent) ZeroForOne() bool {
	return e.Amount0.Sign() > 0
}
