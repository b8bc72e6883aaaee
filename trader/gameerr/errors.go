// Package gameerr classifies the failures a game operation can surface to
// a caller. Every expected rejection (missing row, failed precondition,
// duplicate request) carries a kind and a human-readable reason; anything
// else is Internal and only a generic message leaves the process.
package gameerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindPrecondition
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindPrecondition:
		return "PRECONDITION_FAILED"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

type Error struct {
	Kind   Kind
	Reason string
	err    error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.err }

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

func Precondition(format string, args ...any) error {
	return &Error{Kind: KindPrecondition, Reason: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected error. The wrapped detail is for logs; the
// Reason is what a caller may see.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Reason: "internal error", err: err}
}

// KindOf extracts the kind from err, defaulting to KindInternal for
// anything that is not a *Error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

// Reason returns the user-facing reason for err. Internal errors collapse
// to a generic message so storage detail never leaks.
func Reason(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		if ge.Kind == KindInternal {
			return "internal error"
		}
		return ge.Reason
	}
	return "internal error"
}

// Expected reports whether err is a caller-recoverable outcome rather
// than a defect.
func Expected(err error) bool {
	return KindOf(err) != KindInternal
}
