package types

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR KINDS
// =============================================================================
// Every failure that leaves a component is tagged with one of these kinds so
// the CLI boundary can log it once, with context, and exit non-zero.

var (
	// ErrConfig: missing or malformed configuration, or a missing required key.
	ErrConfig = errors.New("config error")

	// ErrLayoutLoad: template unreadable, sheet missing, or bad layout rows.
	ErrLayoutLoad = errors.New("layout load error")

	// ErrInputRead: flat file missing or unreadable.
	ErrInputRead = errors.New("input read error")

	// ErrLookupSource: database connection or query failure.
	ErrLookupSource = errors.New("lookup source error")

	// ErrExport: output sink write failure.
	ErrExport = errors.New("export error")

	// ErrDecode is reserved. Decoding degrades to empty/partial values and
	// never returns it.
	ErrDecode = errors.New("decode error")
)

// Error carries the kind of failure plus the operation and input line where it
// happened.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Op names the failing operation, e.g. "layout.Load".
	Op string

	// Line is the 1-based input line number, or 0 when not applicable.
	Line int

	// Err is the underlying cause.
	Err error
}

// E builds an Error without a line number.
func E(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// EAt builds an Error pinned to an input line.
func EAt(kind error, op string, line int, err error) *Error {
	return &Error{Kind: kind, Op: op, Line: line, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}
