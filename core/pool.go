// Package core implements the concentrated-liquidity pool engine: pure
// state and the initialize/mint/burn/swap/collect operations, agreeing
// with the reference contract down to the rounding of the last wei. No
// floating point anywhere on the price/tick/fee path.
package core

import (
	"github.com/ftchann/clmm-simulator/lib/fullmath"
	"github.com/ftchann/clmm-simulator/lib/liquidityamounts"
	"github.com/ftchann/clmm-simulator/lib/position"
	sqrtmath "github.com/ftchann/clmm-simulator/lib/sqrtprice_math"
	"github.com/ftchann/clmm-simulator/lib/tickbitmap"
	"github.com/ftchann/clmm-simulator/lib/ticktable"
	"github.com/ftchann/clmm-simulator/lib/tickmath"

	cons "github.com/ftchann/clmm-simulator/lib/constants"

	"github.com/google/uuid"
	ui "github.com/holiman/uint256"
)

// Config is a pool's immutable parameters.
type Config struct {
	TickSpacing  int
	Token0Symbol string
	Token1Symbol string
	FeePips      uint32
}

// MaxLiquidityPerTick derives the per-tick liquidity ceiling from
// tickSpacing, the same way the reference contract's Tick.tickSpacingToMaxLiquidityPerTick does.
func (c Config) MaxLiquidityPerTick() *ui.Int {
	minTick := (tickmath.MinTick / c.TickSpacing) * c.TickSpacing
	maxTick := (tickmath.MaxTick / c.TickSpacing) * c.TickSpacing
	numTicks := (maxTick-minTick)/c.TickSpacing + 1
	return new(ui.Int).Div(cons.MaxUint128, ui.NewInt(uint64(numTicks)))
}

// State is the mutable state of one pool at one instant.
type State struct {
	ID     uuid.UUID
	Config Config

	SqrtPriceX96 *ui.Int
	TickCurrent  int
	Liquidity    *ui.Int

	FeeGrowthGlobal0X128 *ui.Int
	FeeGrowthGlobal1X128 *ui.Int
	ProtocolFees0        *ui.Int
	ProtocolFees1        *ui.Int

	Ticks     *ticktable.Table
	Bitmap    *tickbitmap.Bitmap
	Positions map[position.Key]*position.Info
}

// NewState returns an uninitialized pool state (sqrtPriceX96 == 0).
func NewState(cfg Config) *State {
	return &State{
		ID:                   uuid.New(),
		Config:               cfg,
		SqrtPriceX96:         new(ui.Int),
		Liquidity:            new(ui.Int),
		FeeGrowthGlobal0X128: new(ui.Int),
		FeeGrowthGlobal1X128: new(ui.Int),
		ProtocolFees0:        new(ui.Int),
		ProtocolFees1:        new(ui.Int),
		Ticks:                ticktable.New(),
		Bitmap:               tickbitmap.New(),
		Positions:            make(map[position.Key]*position.Info),
	}
}

// Clone returns a deep copy sharing no mutable state with s.
func (s *State) Clone() *State {
	out := &State{
		ID:                   s.ID,
		Config:               s.Config,
		SqrtPriceX96:         s.SqrtPriceX96.Clone(),
		TickCurrent:          s.TickCurrent,
		Liquidity:            s.Liquidity.Clone(),
		FeeGrowthGlobal0X128: s.FeeGrowthGlobal0X128.Clone(),
		FeeGrowthGlobal1X128: s.FeeGrowthGlobal1X128.Clone(),
		ProtocolFees0:        s.ProtocolFees0.Clone(),
		ProtocolFees1:        s.ProtocolFees1.Clone(),
		Ticks:                s.Ticks.Clone(),
		Bitmap:                s.Bitmap.Clone(),
		Positions:            make(map[position.Key]*position.Info, len(s.Positions)),
	}
	for key, info := range s.Positions {
		out.Positions[key] = info.Clone()
	}
	return out
}

// Pool is the CorePool: the operations layer over State.
type Pool struct {
	State *State
}

// NewPool returns an uninitialized pool with the given config.
func NewPool(cfg Config) *Pool {
	return &Pool{State: NewState(cfg)}
}

// Initialize sets the starting price and derives tickCurrent. May only be
// called once.
func (p *Pool) Initialize(sqrtPriceX96 *ui.Int) error {
	if !p.State.SqrtPriceX96.IsZero() {
		return newErr(ErrAlreadyInitialized, "pool already initialized at sqrtPriceX96=%v", p.State.SqrtPriceX96)
	}
	if sqrtPriceX96.Cmp(tickmath.MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(tickmath.MaxSqrtRatio) >= 0 {
		return newErr(ErrBadPriceLimit, "sqrtPriceX96=%v outside [MIN_SQRT_RATIO, MAX_SQRT_RATIO)", sqrtPriceX96)
	}
	p.State.SqrtPriceX96 = sqrtPriceX96.Clone()
	p.State.TickCurrent = tickmath.GetTickAtSqrtRatio(sqrtPriceX96)
	return nil
}

func (p *Pool) requireInitialized() error {
	if p.State.SqrtPriceX96.IsZero() {
		return newErr(ErrNotInitialized, "pool has not been initialized")
	}
	return nil
}

// wrapTickTableErr maps a ticktable.Update failure to its §7 ErrorKind.
func wrapTickTableErr(err error, format string, args ...any) error {
	switch err {
	case ticktable.ErrLiquidityUnderflow:
		return wrapErr(ErrLiquiditySubUnderflow, err, format, args...)
	case ticktable.ErrLiquidityOverflow:
		return wrapErr(ErrLiquidityAddOverflow, err, format, args...)
	default:
		return wrapErr(ErrMaxLiquidityPerTick, err, format, args...)
	}
}

// wrapPositionErr maps a position.Info.Update failure to its §7 ErrorKind.
func wrapPositionErr(err error, format string, args ...any) error {
	switch err {
	case position.ErrLiquidityUnderflow:
		return wrapErr(ErrLiquiditySubUnderflow, err, format, args...)
	case position.ErrLiquidityOverflow:
		return wrapErr(ErrLiquidityAddOverflow, err, format, args...)
	default:
		return wrapErr(ErrZeroLiquidity, err, format, args...)
	}
}

func validateTickRange(tickLower, tickUpper, tickSpacing int) error {
	if tickLower >= tickUpper {
		return newErr(ErrTickOrder, "tickLower=%d must be < tickUpper=%d", tickLower, tickUpper)
	}
	if tickLower < tickmath.MinTick || tickUpper > tickmath.MaxTick {
		return newErr(ErrTickOutOfRange, "range [%d,%d] outside [%d,%d]", tickLower, tickUpper, tickmath.MinTick, tickmath.MaxTick)
	}
	if tickLower%tickSpacing != 0 || tickUpper%tickSpacing != 0 {
		return newErr(ErrTickMisaligned, "range [%d,%d] not aligned to tickSpacing=%d", tickLower, tickUpper, tickSpacing)
	}
	return nil
}

// Mint adds amount liquidity to [tickLower, tickUpper] for owner, returning
// the token amounts the caller must supply.
func (p *Pool) Mint(owner string, tickLower, tickUpper int, amount *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if err := p.requireInitialized(); err != nil {
		return nil, nil, err
	}
	if amount.IsZero() {
		return nil, nil, newErr(ErrZeroLiquidity, "mint amount must be > 0")
	}
	amount0, amount1, err = p.modifyPosition(owner, tickLower, tickUpper, new(ui.Int).Set(amount))
	return amount0, amount1, err
}

// Burn removes amount liquidity from [tickLower, tickUpper], crediting the
// resulting token amounts to the position's owed balances, and returns
// those amounts (not negated).
func (p *Pool) Burn(owner string, tickLower, tickUpper int, amount *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if err := p.requireInitialized(); err != nil {
		return nil, nil, err
	}
	negAmount := new(ui.Int).Neg(amount)
	amount0Neg, amount1Neg, err := p.modifyPosition(owner, tickLower, tickUpper, negAmount)
	if err != nil {
		return nil, nil, err
	}
	amount0 = new(ui.Int).Neg(amount0Neg)
	amount1 = new(ui.Int).Neg(amount1Neg)

	key := position.Key{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
	pos := p.State.Positions[key]
	if !amount0.IsZero() || !amount1.IsZero() {
		pos.TokensOwed0 = new(ui.Int).Add(pos.TokensOwed0, amount0)
		pos.TokensOwed1 = new(ui.Int).Add(pos.TokensOwed1, amount1)
	}
	return amount0, amount1, nil
}

// Collect withdraws up to amount0Requested/amount1Requested of a position's
// owed tokens.
func (p *Pool) Collect(owner string, tickLower, tickUpper int, amount0Requested, amount1Requested *ui.Int) (amount0, amount1 *ui.Int, err error) {
	key := position.Key{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
	pos, ok := p.State.Positions[key]
	if !ok {
		return new(ui.Int), new(ui.Int), nil
	}

	amount0 = amount0Requested
	if amount0.Cmp(pos.TokensOwed0) > 0 {
		amount0 = pos.TokensOwed0
	}
	amount1 = amount1Requested
	if amount1.Cmp(pos.TokensOwed1) > 0 {
		amount1 = pos.TokensOwed1
	}

	if !amount0.IsZero() {
		pos.TokensOwed0 = new(ui.Int).Sub(pos.TokensOwed0, amount0)
	}
	if !amount1.IsZero() {
		pos.TokensOwed1 = new(ui.Int).Sub(pos.TokensOwed1, amount1)
	}
	return amount0.Clone(), amount1.Clone(), nil
}

// modifyPosition implements the shared mint/burn path from §4.E: validate
// the range, update both boundary ticks, recompute fee growth inside, and
// compute the token amounts the delta corresponds to at the current price.
// It works on a copy of the state and installs it only on success.
func (p *Pool) modifyPosition(owner string, tickLower, tickUpper int, liquidityDelta *ui.Int) (amount0, amount1 *ui.Int, err error) {
	s := p.State.Clone()
	if err := validateTickRange(tickLower, tickUpper, s.Config.TickSpacing); err != nil {
		return nil, nil, err
	}

	maxLiquidity := s.Config.MaxLiquidityPerTick()

	flippedLower, err := s.Ticks.Update(tickLower, s.TickCurrent, liquidityDelta, s.FeeGrowthGlobal0X128, s.FeeGrowthGlobal1X128, false, maxLiquidity)
	if err != nil {
		return nil, nil, wrapTickTableErr(err, "tickLower=%d", tickLower)
	}
	flippedUpper, err := s.Ticks.Update(tickUpper, s.TickCurrent, liquidityDelta, s.FeeGrowthGlobal0X128, s.FeeGrowthGlobal1X128, true, maxLiquidity)
	if err != nil {
		return nil, nil, wrapTickTableErr(err, "tickUpper=%d", tickUpper)
	}

	if flippedLower {
		s.Bitmap.FlipTick(tickLower, s.Config.TickSpacing)
	}
	if flippedUpper {
		s.Bitmap.FlipTick(tickUpper, s.Config.TickSpacing)
	}

	feeGrowthInside0X128, feeGrowthInside1X128 := s.Ticks.GetFeeGrowthInside(tickLower, tickUpper, s.TickCurrent, s.FeeGrowthGlobal0X128, s.FeeGrowthGlobal1X128)

	key := position.Key{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
	pos, ok := s.Positions[key]
	if !ok {
		pos = position.New()
		s.Positions[key] = pos
	}
	if err := pos.Update(liquidityDelta, feeGrowthInside0X128, feeGrowthInside1X128); err != nil {
		return nil, nil, wrapPositionErr(err, "owner=%s range=[%d,%d]", owner, tickLower, tickUpper)
	}

	amount0 = new(ui.Int)
	amount1 = new(ui.Int)
	switch {
	case s.TickCurrent < tickLower:
		amount0 = sqrtmath.GetAmount0DeltaSigned(tickmath.GetSqrtRatioAtTick(tickLower), tickmath.GetSqrtRatioAtTick(tickUpper), liquidityDelta)
	case s.TickCurrent < tickUpper:
		amount0 = sqrtmath.GetAmount0DeltaSigned(s.SqrtPriceX96, tickmath.GetSqrtRatioAtTick(tickUpper), liquidityDelta)
		amount1 = sqrtmath.GetAmount1DeltaSigned(tickmath.GetSqrtRatioAtTick(tickLower), s.SqrtPriceX96, liquidityDelta)
		newLiquidity, underflow, overflow := fullmath.CheckedAddDelta(s.Liquidity, liquidityDelta)
		if underflow {
			return nil, nil, newErr(ErrLiquiditySubUnderflow, "applying liquidityDelta=%v to in-range liquidity=%v would underflow", liquidityDelta, s.Liquidity)
		}
		if overflow {
			return nil, nil, newErr(ErrLiquidityAddOverflow, "applying liquidityDelta=%v to in-range liquidity=%v would overflow", liquidityDelta, s.Liquidity)
		}
		s.Liquidity = newLiquidity
	default:
		amount1 = sqrtmath.GetAmount1DeltaSigned(tickmath.GetSqrtRatioAtTick(tickLower), tickmath.GetSqrtRatioAtTick(tickUpper), liquidityDelta)
	}

	if liquidityDelta.Sign() < 0 {
		lowerInfo, _ := s.Ticks.Get(tickLower)
		if lowerInfo.LiquidityGross.IsZero() {
			s.Ticks.Clear(tickLower)
		}
		upperInfo, _ := s.Ticks.Get(tickUpper)
		if upperInfo.LiquidityGross.IsZero() {
			s.Ticks.Clear(tickUpper)
		}
	}

	p.State = s
	return amount0, amount1, nil
}

// LiquidityForAmounts is a convenience wrapper for callers that think in
// token amounts rather than the L unit.
func (p *Pool) LiquidityForAmounts(tickLower, tickUpper int, amount0, amount1 *ui.Int) *ui.Int {
	return liquidityamounts.GetLiquidityForAmounts(
		p.State.SqrtPriceX96,
		tickmath.GetSqrtRatioAtTick(tickLower),
		tickmath.GetSqrtRatioAtTick(tickUpper),
		amount0, amount1,
	)
}
