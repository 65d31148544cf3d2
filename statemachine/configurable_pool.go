package statemachine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ftchann/clmm-simulator/core"

	"github.com/google/uuid"
	ui "github.com/holiman/uint256"
)

// Roadmap is the process-wide directory a ConfigurableCorePool registers
// itself and its snapshots with, so fork descendants and recover targets
// are discoverable across pool instances. Defined here, on the consumer
// side, so this package never imports its concrete implementation.
type Roadmap interface {
	RegisterPool(id uuid.UUID, pool *ConfigurableCorePool)
	RegisterSnapshot(snap *Snapshot)
	LookupSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error)
}

// PostProcessor is invoked after every successful transition. An error
// rolls the transition back as if it had never happened.
type PostProcessor func(pool *ConfigurableCorePool, t *Transition) error

// ConfigurableCorePool is the transactional shell around a core.Pool: it
// records every mutation as a Transition, and supports fork, snapshot,
// step-back, recover, and a side-effect-free querySwap.
type ConfigurableCorePool struct {
	pool *core.Pool

	transitions []*Transition
	preStates   []*core.State // preStates[i] is the state immediately before transitions[i]

	snapshot      *Snapshot
	postProcessor PostProcessor
	roadmap       Roadmap
}

// New returns a ConfigurableCorePool around a fresh, uninitialized pool.
// roadmap may be nil; fork/persistSnapshot/recover-from-store then become
// no-ops/errors as documented on each method.
func New(cfg core.Config, roadmap Roadmap) *ConfigurableCorePool {
	c := &ConfigurableCorePool{pool: core.NewPool(cfg), roadmap: roadmap}
	if roadmap != nil {
		roadmap.RegisterPool(c.pool.State.ID, c)
	}
	return c
}

// State exposes the live pool state for read-only inspection.
func (c *ConfigurableCorePool) State() *core.State { return c.pool.State }

// UpdatePostProcessor installs fn as the observer invoked after every
// successful transition.
func (c *ConfigurableCorePool) UpdatePostProcessor(fn PostProcessor) {
	c.postProcessor = fn
}

func (c *ConfigurableCorePool) lastTransitionID() *uuid.UUID {
	if len(c.transitions) == 0 {
		return nil
	}
	id := c.transitions[len(c.transitions)-1].ID
	return &id
}

// commit appends a transition recording inputs/outputs and runs the
// post-processor; a post-processor failure restores preState and drops
// the transition, so the caller observes an unchanged pool on any error.
func (c *ConfigurableCorePool) commit(eventType EventType, preState *core.State, inputs, outputs json.RawMessage) error {
	t := &Transition{
		ID:          uuid.New(),
		ParentID:    c.lastTransitionID(),
		EventType:   eventType,
		Inputs:      inputs,
		Outputs:     outputs,
		PostStateID: c.pool.State.ID,
	}
	c.transitions = append(c.transitions, t)
	c.preStates = append(c.preStates, preState)

	if c.postProcessor != nil {
		if err := c.postProcessor(c, t); err != nil {
			c.transitions = c.transitions[:len(c.transitions)-1]
			c.preStates = c.preStates[:len(c.preStates)-1]
			c.pool.State = preState
			return wrapErr(core.ErrPostProcessorFailure, err, "post-processor rejected %s transition %s", eventType, t.ID)
		}
	}
	return nil
}

func wrapErr(kind core.ErrorKind, cause error, format string, args ...any) *core.Error {
	return &core.Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Initialize sets the pool's starting price and records an INITIALIZE
// transition.
func (c *ConfigurableCorePool) Initialize(sqrtPriceX96 *ui.Int) error {
	preState := c.pool.State.Clone()
	if err := c.pool.Initialize(sqrtPriceX96); err != nil {
		return err
	}
	c.pool.State.ID = uuid.New()
	return c.commit(EventInitialize, preState, mustJSON(initializePayload{SqrtPriceX96: sqrtPriceX96.String()}),
		mustJSON(initializePayload{SqrtPriceX96: sqrtPriceX96.String(), TickCurrent: c.pool.State.TickCurrent}))
}

// Mint forwards to the engine and records a MINT transition.
func (c *ConfigurableCorePool) Mint(owner string, tickLower, tickUpper int, amount *ui.Int) (amount0, amount1 *ui.Int, err error) {
	preState := c.pool.State.Clone()
	amount0, amount1, err = c.pool.Mint(owner, tickLower, tickUpper, amount)
	if err != nil {
		return nil, nil, err
	}
	c.pool.State.ID = uuid.New()
	in := mintBurnPayload{Owner: owner, TickLower: tickLower, TickUpper: tickUpper, Amount: amount.String()}
	out := in
	out.Amount0, out.Amount1 = amount0.String(), amount1.String()
	if err := c.commit(EventMint, preState, mustJSON(in), mustJSON(out)); err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}

// Burn forwards to the engine and records a BURN transition.
func (c *ConfigurableCorePool) Burn(owner string, tickLower, tickUpper int, amount *ui.Int) (amount0, amount1 *ui.Int, err error) {
	preState := c.pool.State.Clone()
	amount0, amount1, err = c.pool.Burn(owner, tickLower, tickUpper, amount)
	if err != nil {
		return nil, nil, err
	}
	c.pool.State.ID = uuid.New()
	in := mintBurnPayload{Owner: owner, TickLower: tickLower, TickUpper: tickUpper, Amount: amount.String()}
	out := in
	out.Amount0, out.Amount1 = amount0.String(), amount1.String()
	if err := c.commit(EventBurn, preState, mustJSON(in), mustJSON(out)); err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}

// Collect forwards to the engine and records a COLLECT transition.
func (c *ConfigurableCorePool) Collect(owner string, tickLower, tickUpper int, amount0Requested, amount1Requested *ui.Int) (amount0, amount1 *ui.Int, err error) {
	preState := c.pool.State.Clone()
	amount0, amount1, err = c.pool.Collect(owner, tickLower, tickUpper, amount0Requested, amount1Requested)
	if err != nil {
		return nil, nil, err
	}
	c.pool.State.ID = uuid.New()
	in := collectPayload{Owner: owner, TickLower: tickLower, TickUpper: tickUpper, Amount0Requested: amount0Requested.String(), Amount1Requested: amount1Requested.String()}
	out := in
	out.Amount0, out.Amount1 = amount0.String(), amount1.String()
	if err := c.commit(EventCollect, preState, mustJSON(in), mustJSON(out)); err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}

// Swap forwards to the engine and records a SWAP transition.
func (c *ConfigurableCorePool) Swap(zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *ui.Int) (amount0, amount1 *ui.Int, err error) {
	preState := c.pool.State.Clone()
	amount0, amount1, err = c.pool.Swap(zeroForOne, amountSpecified, sqrtPriceLimitX96)
	if err != nil {
		return nil, nil, err
	}
	c.pool.State.ID = uuid.New()
	in := swapPayload{ZeroForOne: zeroForOne, AmountSpecified: amountSpecified.String(), SqrtPriceLimitX96: sqrtPriceLimitX96.String()}
	out := in
	out.Amount0, out.Amount1 = amount0.String(), amount1.String()
	if err := c.commit(EventSwap, preState, mustJSON(in), mustJSON(out)); err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}

// QuerySwap dry-runs a swap against a deep clone of the live state and
// returns the amounts without mutating the live pool. Callers (the event
// replay driver) use this to pick between exact-in and exact-out replay.
func (c *ConfigurableCorePool) QuerySwap(zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *ui.Int) (amount0, amount1 *ui.Int, err error) {
	clone := &core.Pool{State: c.pool.State.Clone()}
	return clone.Swap(zeroForOne, amountSpecified, sqrtPriceLimitX96)
}

// Fork deep-copies the current state into a new ConfigurableCorePool with
// a fresh pool ID, rooting a new transition DAG (a forked pool's stepBack
// never crosses back to the parent's history). The fork and the original
// share no mutable storage.
func (c *ConfigurableCorePool) Fork() *ConfigurableCorePool {
	childState := c.pool.State.Clone()
	childState.ID = uuid.New()

	child := &ConfigurableCorePool{pool: &core.Pool{State: childState}, roadmap: c.roadmap}

	parentID := c.pool.State.ID
	forkTransition := &Transition{
		ID:          uuid.New(),
		ParentID:    c.lastTransitionID(),
		EventType:   EventFork,
		Inputs:      mustJSON(forkPayload{ParentPoolID: parentID, ChildPoolID: childState.ID}),
		Outputs:     mustJSON(forkPayload{ParentPoolID: parentID, ChildPoolID: childState.ID}),
		PostStateID: childState.ID,
	}
	child.transitions = []*Transition{forkTransition}
	child.preStates = []*core.State{nil} // fork roots the DAG: stepBack at this point fails NoTransition

	if c.roadmap != nil {
		c.roadmap.RegisterPool(childState.ID, child)
	}
	return child
}

// TakeSnapshot deep-copies the current state into a durable, by-value
// Snapshot, cached locally and registered with the roadmap (not yet
// persisted — see PersistSnapshot).
func (c *ConfigurableCorePool) TakeSnapshot(description string) *Snapshot {
	snap := TakeSnapshot(c.pool.State, description)
	c.snapshot = snap
	if c.roadmap != nil {
		c.roadmap.RegisterSnapshot(snap)
	}
	return snap
}

// StepBack undoes the most recent transition, restoring the pool to its
// pre-transition state. Fails NoTransition at the root (including
// immediately after a Fork, by design: fork roots a new DAG).
func (c *ConfigurableCorePool) StepBack() error {
	if len(c.transitions) == 0 {
		return core.Sentinel(core.ErrNoTransition)
	}
	last := len(c.transitions) - 1
	preState := c.preStates[last]
	if preState == nil {
		return wrapErr(core.ErrNoTransition, nil, "cannot step back past a fork root")
	}
	c.pool.State = preState
	c.transitions = c.transitions[:last]
	c.preStates = c.preStates[:last]
	return nil
}

// Recover loads a snapshot (checking the roadmap's in-memory cache first,
// then falling back to the persistent store) and replaces the live state
// with a deep copy of it, resetting the transition log to a single
// RECOVER root.
func (c *ConfigurableCorePool) Recover(ctx context.Context, snapshotID uuid.UUID) error {
	if c.roadmap == nil {
		return wrapErr(core.ErrSnapshotNotFound, nil, "no roadmap configured, cannot resolve snapshot %s", snapshotID)
	}
	snap, err := c.roadmap.LookupSnapshot(ctx, snapshotID)
	if err != nil {
		return wrapErr(core.ErrSnapshotNotFound, err, "snapshot %s", snapshotID)
	}

	state, err := snap.Restore()
	if err != nil {
		return wrapErr(core.ErrCorrupt, err, "restoring snapshot %s", snapshotID)
	}
	c.pool.State = state
	recoverTransition := &Transition{
		ID:          uuid.New(),
		EventType:   EventRecover,
		Inputs:      mustJSON(recoverPayload{SnapshotID: snapshotID}),
		Outputs:     mustJSON(recoverPayload{SnapshotID: snapshotID}),
		PostStateID: c.pool.State.ID,
	}
	c.transitions = []*Transition{recoverTransition}
	c.preStates = []*core.State{nil}
	return nil
}

// PersistSnapshot writes the current snapshot (taking one first if absent)
// to store and returns its id.
func (c *ConfigurableCorePool) PersistSnapshot(ctx context.Context, store interface {
	Put(ctx context.Context, snap *Snapshot) error
}) (uuid.UUID, error) {
	if c.snapshot == nil {
		c.TakeSnapshot("")
	}
	if err := store.Put(ctx, c.snapshot); err != nil {
		return uuid.Nil, wrapErr(core.ErrIOFailure, err, "persist snapshot %s", c.snapshot.ID)
	}
	return c.snapshot.ID, nil
}
