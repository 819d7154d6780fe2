package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies ledger errors for propagation policy: validation
// errors are never retried, state errors need a corrected request, not-found
// errors identify the missing record, and concurrency errors are safe to
// treat as an idempotent no-op.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindState
	KindNotFound
	KindConcurrency
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindState:
		return "STATE"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConcurrency:
		return "CONCURRENCY"
	}
	return "UNKNOWN"
}

// LedgerError is the typed error every mutating ledger operation returns.
// Ref carries the offending folio/charge/order id so corrections stay
// traceable; the message is surfaced to the caller verbatim.
type LedgerError struct {
	Kind ErrorKind
	Ref  string
	Msg  string
	Err  error
}

func (e *LedgerError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Ref)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *LedgerError) Unwrap() error { return e.Err }

// Sentinel causes, matched with errors.Is through LedgerError.Unwrap.
var (
	ErrUnrecognizedSourceShape   = errors.New("unrecognized source shape")
	ErrInvalidAmount             = errors.New("invalid amount")
	ErrSourceNotBillable         = errors.New("source record is not billable")
	ErrMissingLocationIdentifier = errors.New("missing location identifier")
	ErrInvalidTransition         = errors.New("invalid order status transition")
	ErrFolioClosed               = errors.New("folio is closed")
	ErrBalanceNotZero            = errors.New("balance is not zero")
	ErrAlreadyVoided             = errors.New("charge already voided")
	ErrChargeNotFound            = errors.New("charge not found")
	ErrFolioNotFound             = errors.New("folio not found")
	ErrOrderNotFound             = errors.New("order not found")
	ErrDuplicateTerminal         = errors.New("duplicate terminal transition")
)

func validationErr(ref string, cause error, format string, args ...any) *LedgerError {
	return &LedgerError{Kind: KindValidation, Ref: ref, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func stateErr(ref string, cause error, format string, args ...any) *LedgerError {
	return &LedgerError{Kind: KindState, Ref: ref, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func notFoundErr(ref string, cause error, format string, args ...any) *LedgerError {
	return &LedgerError{Kind: KindNotFound, Ref: ref, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func concurrencyErr(ref string, cause error, format string, args ...any) *LedgerError {
	return &LedgerError{Kind: KindConcurrency, Ref: ref, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// IsKind reports whether err is a LedgerError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var le *LedgerError
	return errors.As(err, &le) && le.Kind == kind
}

// RetryableError marks a persistence failure that happened after a successful
// in-memory transition. The caller must retry the durable write; the ledger
// state itself is already correct.
type RetryableError struct {
	Op  string
	Ref string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %s failed for %s: %v", e.Op, e.Ref, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }
