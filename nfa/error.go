// Package nfa provides a Thompson NFA for regex matching, compiled from
// a syntax tree, together with two execution engines: a Pike VM (lockstep
// NFA simulation with capture tracking) and a bounded backtracker.
package nfa

import (
	"errors"
	"fmt"
)

// Common NFA errors.
var (
	// ErrTooComplex indicates the pattern exceeds compilation limits
	// (nesting depth or unrolled program size).
	ErrTooComplex = errors.New("pattern too complex")

	// ErrInvalidState indicates a dangling state reference during
	// construction; it signals a compiler bug, not bad user input.
	ErrInvalidState = errors.New("invalid NFA state")
)

// CompileError wraps NFA compilation failures with the pattern context.
type CompileError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("NFA compilation failed for pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("NFA compilation failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// BuildError reports a malformed construction through the Builder API.
type BuildError struct {
	Message string
	StateID StateID
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.StateID != InvalidState {
		return fmt.Sprintf("NFA build error at state %d: %s", e.StateID, e.Message)
	}
	return fmt.Sprintf("NFA build error: %s", e.Message)
}
