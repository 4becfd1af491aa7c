package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure reported by the desktop resource.
type Kind int

const (
	KindInternal Kind = iota
	KindClassNotRegistered
	KindServerUnavailable
	KindObjectNotConnected
	KindNullResult
	KindAccessDenied
	KindNotFound
	KindInvalidArgument
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindClassNotRegistered:
		return "class not registered"
	case KindServerUnavailable:
		return "server unavailable"
	case KindObjectNotConnected:
		return "object not connected"
	case KindNullResult:
		return "unexpected null result"
	case KindAccessDenied:
		return "access denied"
	case KindNotFound:
		return "not found"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "internal error"
	}
}

// Transient reports whether the kind is in the retryable set.
func (k Kind) Transient() bool {
	switch k {
	case KindClassNotRegistered, KindServerUnavailable, KindObjectNotConnected, KindNullResult:
		return true
	default:
		return false
	}
}

// ResourceError is a classified failure of an operation on the desktop resource.
type ResourceError struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements error.
func (e *ResourceError) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return "vdesk: " + msg
}

// Unwrap returns the underlying cause.
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Is matches any ResourceError of the same kind, so the Err* kind sentinels
// below can be used with errors.Is.
func (e *ResourceError) Is(target error) bool {
	var t *ResourceError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels, usable with errors.Is.
var (
	ErrClassNotRegistered = &ResourceError{Kind: KindClassNotRegistered}
	ErrServerUnavailable  = &ResourceError{Kind: KindServerUnavailable}
	ErrObjectNotConnected = &ResourceError{Kind: KindObjectNotConnected}
	ErrNullResult         = &ResourceError{Kind: KindNullResult}
	ErrAccessDenied       = &ResourceError{Kind: KindAccessDenied}
	ErrNotFound           = &ResourceError{Kind: KindNotFound}
	ErrInvalidArgument    = &ResourceError{Kind: KindInvalidArgument}
)

// NewResourceError builds a classified error for op.
func NewResourceError(kind Kind, op string, err error) *ResourceError {
	return &ResourceError{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first ResourceError in err's chain.
// ok is false when err carries no ResourceError.
func KindOf(err error) (kind Kind, ok bool) {
	var re *ResourceError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return KindInternal, false
}

// IsTransient reports whether err should be retried after resetting the resource.
func IsTransient(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind.Transient()
}
