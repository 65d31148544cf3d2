package statemachine

import (
	"sort"
	"time"

	"github.com/ftchann/clmm-simulator/core"
	"github.com/ftchann/clmm-simulator/lib/position"
	"github.com/ftchann/clmm-simulator/lib/tickbitmap"
	"github.com/ftchann/clmm-simulator/lib/ticktable"

	"github.com/google/uuid"
	ui "github.com/holiman/uint256"
)

// TickEntry is one tick's canonical (sorted) encoding inside a Snapshot.
type TickEntry struct {
	Tick                  int    `json:"tick"`
	LiquidityGross        string `json:"liquidityGross"`
	LiquidityNet          string `json:"liquidityNet"`
	FeeGrowthOutside0X128 string `json:"feeGrowthOutside0X128"`
	FeeGrowthOutside1X128 string `json:"feeGrowthOutside1X128"`
}

// PositionEntry is one position's canonical encoding.
type PositionEntry struct {
	Owner                    string `json:"owner"`
	TickLower                int    `json:"tickLower"`
	TickUpper                int    `json:"tickUpper"`
	Liquidity                string `json:"liquidity"`
	FeeGrowthInside0LastX128 string `json:"feeGrowthInside0LastX128"`
	FeeGrowthInside1LastX128 string `json:"feeGrowthInside1LastX128"`
	TokensOwed0              string `json:"tokensOwed0"`
	TokensOwed1              string `json:"tokensOwed1"`
}

// BitmapWordEntry is one non-zero tick-bitmap word.
type BitmapWordEntry struct {
	Word int16  `json:"word"`
	Bits string `json:"bits"`
}

// Snapshot is a durable, whole-state, by-value copy of a pool. It shares no
// mutable structure with the live pool it was taken from.
type Snapshot struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	PoolID      uuid.UUID `json:"poolId"`

	TickSpacing  int    `json:"tickSpacing"`
	Token0Symbol string `json:"token0Symbol"`
	Token1Symbol string `json:"token1Symbol"`
	FeePips      uint32 `json:"feePips"`

	SqrtPriceX96         string `json:"sqrtPriceX96"`
	TickCurrent          int    `json:"tickCurrent"`
	Liquidity            string `json:"liquidity"`
	FeeGrowthGlobal0X128 string `json:"feeGrowthGlobal0X128"`
	FeeGrowthGlobal1X128 string `json:"feeGrowthGlobal1X128"`
	ProtocolFees0        string `json:"protocolFees0"`
	ProtocolFees1        string `json:"protocolFees1"`

	Ticks     []TickEntry       `json:"ticks"`
	Positions []PositionEntry   `json:"positions"`
	Bitmap    []BitmapWordEntry `json:"tickBitmap"`

	CreatedAt time.Time `json:"createdAt"`
}

// Config returns the pool configuration recorded in the snapshot, without
// decoding any of the big-integer state (so it's available even to a
// caller that only wants to construct a pool shell before recovering).
func (snap *Snapshot) Config() core.Config {
	return core.Config{
		TickSpacing:  snap.TickSpacing,
		Token0Symbol: snap.Token0Symbol,
		Token1Symbol: snap.Token1Symbol,
		FeePips:      snap.FeePips,
	}
}

// TakeSnapshot encodes s into a canonical, deterministic Snapshot: every
// map is flattened into a key-sorted slice so that two runs over the same
// state produce byte-identical JSON.
func TakeSnapshot(s *core.State, description string) *Snapshot {
	snap := &Snapshot{
		ID:          uuid.New(),
		Description: description,
		PoolID:      s.ID,

		TickSpacing:  s.Config.TickSpacing,
		Token0Symbol: s.Config.Token0Symbol,
		Token1Symbol: s.Config.Token1Symbol,
		FeePips:      s.Config.FeePips,

		SqrtPriceX96:         s.SqrtPriceX96.String(),
		TickCurrent:          s.TickCurrent,
		Liquidity:            s.Liquidity.String(),
		FeeGrowthGlobal0X128: s.FeeGrowthGlobal0X128.String(),
		FeeGrowthGlobal1X128: s.FeeGrowthGlobal1X128.String(),
		ProtocolFees0:        s.ProtocolFees0.String(),
		ProtocolFees1:        s.ProtocolFees1.String(),

		CreatedAt: time.Now().UTC(),
	}

	for _, tick := range s.Ticks.SortedTicks() {
		info, _ := s.Ticks.Get(tick)
		snap.Ticks = append(snap.Ticks, TickEntry{
			Tick:                  tick,
			LiquidityGross:        info.LiquidityGross.String(),
			LiquidityNet:          info.LiquidityNet.String(),
			FeeGrowthOutside0X128: info.FeeGrowthOutside0X128.String(),
			FeeGrowthOutside1X128: info.FeeGrowthOutside1X128.String(),
		})
	}

	keys := make([]position.Key, 0, len(s.Positions))
	for key := range s.Positions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Owner != keys[j].Owner {
			return keys[i].Owner < keys[j].Owner
		}
		if keys[i].TickLower != keys[j].TickLower {
			return keys[i].TickLower < keys[j].TickLower
		}
		return keys[i].TickUpper < keys[j].TickUpper
	})
	for _, key := range keys {
		info := s.Positions[key]
		snap.Positions = append(snap.Positions, PositionEntry{
			Owner:                    key.Owner,
			TickLower:                key.TickLower,
			TickUpper:                key.TickUpper,
			Liquidity:                info.Liquidity.String(),
			FeeGrowthInside0LastX128: info.FeeGrowthInside0LastX128.String(),
			FeeGrowthInside1LastX128: info.FeeGrowthInside1LastX128.String(),
			TokensOwed0:              info.TokensOwed0.String(),
			TokensOwed1:              info.TokensOwed1.String(),
		})
	}

	for _, word := range s.Bitmap.SortedWords() {
		snap.Bitmap = append(snap.Bitmap, BitmapWordEntry{Word: word.Word, Bits: word.Bits.String()})
	}

	return snap
}

// Restore materializes snap back into a live core.State, the inverse of
// TakeSnapshot. Returns a core.ErrCorrupt error (rather than panicking) if
// any persisted big-integer field fails to decode — a corrupt or
// hand-edited snapshot row must not crash the process.
func (snap *Snapshot) Restore() (*core.State, error) {
	s := core.NewState(snap.Config())
	s.ID = snap.PoolID

	var err error
	if s.SqrtPriceX96, err = decodeUint(snap.SqrtPriceX96); err != nil {
		return nil, err
	}
	s.TickCurrent = snap.TickCurrent
	if s.Liquidity, err = decodeUint(snap.Liquidity); err != nil {
		return nil, err
	}
	if s.FeeGrowthGlobal0X128, err = decodeUint(snap.FeeGrowthGlobal0X128); err != nil {
		return nil, err
	}
	if s.FeeGrowthGlobal1X128, err = decodeUint(snap.FeeGrowthGlobal1X128); err != nil {
		return nil, err
	}
	if s.ProtocolFees0, err = decodeUint(snap.ProtocolFees0); err != nil {
		return nil, err
	}
	if s.ProtocolFees1, err = decodeUint(snap.ProtocolFees1); err != nil {
		return nil, err
	}

	for _, entry := range snap.Ticks {
		liquidityGross, err := decodeUint(entry.LiquidityGross)
		if err != nil {
			return nil, err
		}
		liquidityNet, err := decodeUint(entry.LiquidityNet)
		if err != nil {
			return nil, err
		}
		feeGrowthOutside0, err := decodeUint(entry.FeeGrowthOutside0X128)
		if err != nil {
			return nil, err
		}
		feeGrowthOutside1, err := decodeUint(entry.FeeGrowthOutside1X128)
		if err != nil {
			return nil, err
		}
		s.Ticks.Set(entry.Tick, &ticktable.Info{
			LiquidityGross:        liquidityGross,
			LiquidityNet:          liquidityNet,
			FeeGrowthOutside0X128: feeGrowthOutside0,
			FeeGrowthOutside1X128: feeGrowthOutside1,
			Initialized:           true,
		})
	}

	for _, entry := range snap.Positions {
		key := position.Key{Owner: entry.Owner, TickLower: entry.TickLower, TickUpper: entry.TickUpper}
		info := position.New()
		if info.Liquidity, err = decodeUint(entry.Liquidity); err != nil {
			return nil, err
		}
		if info.FeeGrowthInside0LastX128, err = decodeUint(entry.FeeGrowthInside0LastX128); err != nil {
			return nil, err
		}
		if info.FeeGrowthInside1LastX128, err = decodeUint(entry.FeeGrowthInside1LastX128); err != nil {
			return nil, err
		}
		if info.TokensOwed0, err = decodeUint(entry.TokensOwed0); err != nil {
			return nil, err
		}
		if info.TokensOwed1, err = decodeUint(entry.TokensOwed1); err != nil {
			return nil, err
		}
		s.Positions[key] = info
	}

	entries := make([]tickbitmap.WordEntry, 0, len(snap.Bitmap))
	for _, word := range snap.Bitmap {
		bits, err := decodeUint(word.Bits)
		if err != nil {
			return nil, err
		}
		entries = append(entries, tickbitmap.WordEntry{Word: word.Word, Bits: bits})
	}
	s.Bitmap.LoadWords(entries)

	return s, nil
}

// decodeUint parses one of Snapshot's decimal-string big-integer fields.
func decodeUint(s string) (*ui.Int, error) {
	v, err := ui.FromDecimal(s)
	if err != nil {
		return nil, wrapErr(core.ErrCorrupt, err, "corrupt snapshot integer %q", s)
	}
	return v, nil
}
