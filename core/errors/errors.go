// Package errors defines the failure taxonomy shared by every ledger module.
// Each failure carries a Kind used for programmatic matching and a reason
// string that is surfaced to callers unchanged.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a ledger failure.
type Kind string

const (
	KindUnauthorized        Kind = "Unauthorized"
	KindNotFound            Kind = "NotFound"
	KindAlreadyInitialized  Kind = "AlreadyInitialized"
	KindNotInitialized      Kind = "NotInitialized"
	KindNullAddress         Kind = "NullAddress"
	KindInsufficientBalance Kind = "InsufficientBalance"
	KindFeeOutOfRange       Kind = "FeeOutOfRange"
	KindEmptyInput          Kind = "EmptyInput"
	KindTooMany             Kind = "TooMany"
	KindNotActivated        Kind = "NotActivated"
	KindZeroAmount          Kind = "ZeroAmount"
	KindExceedsStaked       Kind = "ExceedsStaked"
	KindInvalidAmount       Kind = "InvalidAmount"
)

// Sentinels for errors.Is matching. They match any *Error of the same kind
// regardless of its reason.
var (
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrAlreadyInitialized  = &Error{Kind: KindAlreadyInitialized}
	ErrNotInitialized      = &Error{Kind: KindNotInitialized}
	ErrNullAddress         = &Error{Kind: KindNullAddress}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance}
	ErrFeeOutOfRange       = &Error{Kind: KindFeeOutOfRange}
	ErrEmptyInput          = &Error{Kind: KindEmptyInput}
	ErrTooMany             = &Error{Kind: KindTooMany}
	ErrNotActivated        = &Error{Kind: KindNotActivated}
	ErrZeroAmount          = &Error{Kind: KindZeroAmount}
	ErrExceedsStaked       = &Error{Kind: KindExceedsStaked}
	ErrInvalidAmount       = &Error{Kind: KindInvalidAmount}
)

// Error is a labelled ledger failure.
type Error struct {
	Kind   Kind
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is reports whether target is a reasonless sentinel of the same kind, or an
// identical error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Reason == e.Reason
}

// New creates a labelled failure.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Newf creates a labelled failure with a formatted reason.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of a ledger failure. Errors that are not ledger
// failures report an empty kind.
func KindOf(err error) Kind {
	var target *Error
	if stderrors.As(err, &target) {
		return target.Kind
	}
	return ""
}

// ReasonOf extracts the human-readable reason of a ledger failure.
func ReasonOf(err error) string {
	var target *Error
	if stderrors.As(err, &target) {
		return target.Reason
	}
	return ""
}
