// Package errors defines the error taxonomy of the bundle planner.
//
// Sentinel errors classify a failure; typed errors carry the offending asset
// or bundle so callers can report it:
//
//	var oe *errors.OracleError
//	if errors.As(err, &oe) { fmt.Println(oe.Bundle) }
//	if errors.Is(err, errors.ErrCancelled) { ... }
//
// A ValidationSkip is deliberately not an error: assets failing the path
// predicate are dropped silently and only logged.
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions so callers import a single package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

var (
	// ErrInvalidDeclaration is returned when a declaration cannot be accepted,
	// e.g. an explicit grouping without a group name.
	ErrInvalidDeclaration = errors.New("invalid declaration")

	// ErrOracleFailure marks a dependency oracle error. It is fatal for the
	// whole analysis pass.
	ErrOracleFailure = errors.New("dependency oracle failed")

	// ErrCancelled marks a pass aborted by the host.
	ErrCancelled = errors.New("analysis cancelled")
)

// DeclarationError reports a rejected declaration for a single asset.
type DeclarationError struct {
	Asset  string
	Reason string
}

// NewDeclarationError creates a DeclarationError.
func NewDeclarationError(asset, reason string) *DeclarationError {
	return &DeclarationError{Asset: asset, Reason: reason}
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("invalid declaration for %q: %s", e.Asset, e.Reason)
}

func (e *DeclarationError) Unwrap() error { return ErrInvalidDeclaration }

// OracleError wraps an oracle failure with the bundle being walked.
type OracleError struct {
	Bundle string
	Err    error
}

// NewOracleError creates an OracleError.
func NewOracleError(bundle string, err error) *OracleError {
	return &OracleError{Bundle: bundle, Err: err}
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("dependencies of bundle %q: %v", e.Bundle, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *OracleError) Unwrap() []error { return []error{ErrOracleFailure, e.Err} }

// CancelledError records where a pass stopped.
type CancelledError struct {
	Phase string
	At    string // bundle or asset being processed
	Done  int
	Total int
	Cause error // context error, if any
}

func (e *CancelledError) Error() string {
	msg := fmt.Sprintf("analysis cancelled during %s at %q (%d/%d)", e.Phase, e.At, e.Done, e.Total)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CancelledError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrCancelled, e.Cause}
	}
	return []error{ErrCancelled}
}
