package core

import "fmt"

// ErrorKind is a sentinel the caller can match with errors.Is, grouped the
// way §7 of the design groups them: validation, arithmetic, state-machine,
// persistence.
type ErrorKind string

const (
	ErrTickOutOfRange        ErrorKind = "tick_out_of_range"
	ErrTickMisaligned        ErrorKind = "tick_misaligned"
	ErrTickOrder             ErrorKind = "tick_order"
	ErrZeroLiquidity         ErrorKind = "zero_liquidity"
	ErrAlreadyInitialized    ErrorKind = "already_initialized"
	ErrNotInitialized        ErrorKind = "not_initialized"
	ErrBadPriceLimit         ErrorKind = "bad_price_limit"
	ErrOverflow              ErrorKind = "overflow"
	ErrLiquiditySubUnderflow ErrorKind = "liquidity_sub_underflow"
	ErrLiquidityAddOverflow  ErrorKind = "liquidity_add_overflow"
	ErrMaxLiquidityPerTick   ErrorKind = "max_liquidity_per_tick"
	ErrNoTransition          ErrorKind = "no_transition"
	ErrSnapshotNotFound      ErrorKind = "snapshot_not_found"
	ErrPostProcessorFailure  ErrorKind = "post_processor_failure"
	ErrIOFailure             ErrorKind = "io_failure"
	ErrCorrupt               ErrorKind = "corrupt"
)

// Error wraps an ErrorKind with a human-readable message and, optionally,
// the underlying cause. Callers match on Kind with errors.Is; the message
// is for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, SomeKind) work by comparing against a bare
// ErrorKind sentinel value wrapped in an *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinel returns a bare *Error carrying only a Kind, suitable as the
// target of errors.Is(err, core.Sentinel(core.ErrTickOrder)).
func Sentinel(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}
