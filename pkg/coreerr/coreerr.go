// Package coreerr defines the error taxonomy shared by every core package:
// a small sentinel per failure mode, plus a stable numeric code for the wire.
package coreerr

import "fmt"

// Class groups sentinels into the categories named in the error-handling
// design: local/no-state-change, economic, resource, safety, oracle, and
// fatal invariant violations.
type Class int

const (
	ClassInvalidInput Class = iota + 1
	ClassEconomic
	ClassResource
	ClassSafety
	ClassOracle
	ClassInvariant
)

// Err is a taxonomy member: a stable code, a class, a human tag, and an
// optional wrapped cause.
type Err struct {
	Code  int
	Class Class
	Tag   string
	Cause error
}

func (e *Err) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Tag, e.Code, e.Cause)
	}
	return fmt.Sprintf("%s (code %d)", e.Tag, e.Code)
}

func (e *Err) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, coreerr.ErrSlippageExceeded) match regardless of any
// wrapped cause, by comparing the numeric code rather than identity.
func (e *Err) Is(target error) bool {
	other, ok := target.(*Err)
	if !ok {
		return false
	}
	return other.Code == e.Code
}

// Wrap returns a copy of a sentinel carrying an additional cause, so callers
// can do `return coreerr.ErrInvalidTickRange.Wrap(err)` without losing the
// stable code.
func (e *Err) Wrap(cause error) *Err {
	return &Err{Code: e.Code, Class: e.Class, Tag: e.Tag, Cause: cause}
}

// InvalidInput: misaligned ticks, inverted ranges, limit on wrong side,
// unsupported pair. Local, surfaced, no state change.
var (
	ErrInvalidTickRange   = &Err{Code: 1001, Class: ClassInvalidInput, Tag: "InvalidTickRange"}
	ErrInvalidLimit       = &Err{Code: 1002, Class: ClassInvalidInput, Tag: "InvalidLimit"}
	ErrUnsupportedPair    = &Err{Code: 1003, Class: ClassInvalidInput, Tag: "UnsupportedPair"}
	ErrInvalidPhase       = &Err{Code: 1004, Class: ClassInvalidInput, Tag: "InvalidPhase"}
	ErrFloorNotReady      = &Err{Code: 1005, Class: ClassInvalidInput, Tag: "FloorNotReady"}
)

// Economic: surfaced, no state change.
var (
	ErrSlippageExceeded = &Err{Code: 2001, Class: ClassEconomic, Tag: "SlippageExceeded"}
	ErrFeeCapExceeded   = &Err{Code: 2002, Class: ClassEconomic, Tag: "FeeCapExceeded"}
	ErrAmountTooSmall   = &Err{Code: 2003, Class: ClassEconomic, Tag: "AmountTooSmall"}
)

// Resource: surfaced, no state change.
var (
	ErrInsufficientLiquidity = &Err{Code: 3001, Class: ClassResource, Tag: "InsufficientLiquidity"}
	ErrZeroLiquidity         = &Err{Code: 3002, Class: ClassResource, Tag: "ZeroLiquidity"}
)

// Safety: surfaced; SafetyController updates its counters regardless.
var (
	ErrPaused       = &Err{Code: 4001, Class: ClassSafety, Tag: "Paused"}
	ErrRateLimited  = &Err{Code: 4002, Class: ClassSafety, Tag: "RateLimited"}
	ErrBudgetExceed = &Err{Code: 4003, Class: ClassSafety, Tag: "BudgetExceeded"}
)

// Oracle: non-fatal to swaps; blocks redemption only.
var (
	ErrHubDepegged = &Err{Code: 5001, Class: ClassOracle, Tag: "HubDepegged"}
	ErrHubNotHealthy = &Err{Code: 5002, Class: ClassOracle, Tag: "HubNotHealthy"}
)

// Invariant: fatal, abort the entire operation, no partial state may persist.
var (
	ErrTickIndexOverflow  = &Err{Code: 9001, Class: ClassInvariant, Tag: "TickIndexOverflow"}
	ErrLiquidityOverflow  = &Err{Code: 9002, Class: ClassInvariant, Tag: "LiquidityOverflow"}
	ErrAccountingMismatch = &Err{Code: 9003, Class: ClassInvariant, Tag: "AccountingMismatch"}
	ErrAmountOverflow     = &Err{Code: 9004, Class: ClassInvariant, Tag: "AmountOverflow"}
	ErrInvariantViolation = &Err{Code: 9005, Class: ClassInvariant, Tag: "InvariantViolation"}
)
