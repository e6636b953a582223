// Package errors provides error handling for fbstubs.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints attached to fatal errors
//
// Usage:
//
//	// Wrap with context
//	if err := inspector.Classes(); err != nil {
//	    return errors.Wrap(err, "failed to list classes")
//	}
//
//	// Classify with a sentinel
//	return errors.Wrapf(errors.ErrMissingSymbol, "class %q", name)
//
//	// Check errors
//	if errors.Is(err, errors.ErrDependencyCycle) {
//	    // report the cycle
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Sentinel errors shared across the generator.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested entity or page does not exist
	ErrNotFound = New("not found")

	// ErrMissingSymbol indicates the target module lacks an expected attribute
	ErrMissingSymbol = New("missing symbol")

	// ErrDependencyCycle indicates classes depend on each other circularly
	ErrDependencyCycle = New("dependency cycle")

	// ErrFetch indicates a documentation fetch failed after retrying
	ErrFetch = New("fetch failed")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsFatal reports whether err belongs to a class of errors that must abort a run.
func IsFatal(err error) bool {
	return err != nil && IsAny(err, ErrMissingSymbol, ErrDependencyCycle)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewMissingSymbolError names a symbol the target module should expose but does not.
func NewMissingSymbolError(symbol string) error {
	return WithHint(
		Wrapf(ErrMissingSymbol, "%s", symbol),
		"regenerate the module snapshot from the host runtime",
	)
}
