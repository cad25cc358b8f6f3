package lookup

import (
	"errors"
)

// Kind classifies a resolution failure.
type Kind int

const (
	Timeout   Kind = iota + 1 // No response within the strategy bound
	NotFound                  // Authoritative negative answer or missing fixture
	Malformed                 // Name or response could not be interpreted
	Network                   // Transport-level failure. Cause is opaque.
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "Timeout"
	case NotFound:
		return "NotFound"
	case Malformed:
		return "Malformed"
	case Network:
		return "Network"
	}

	return "Unknown"
}

// Error is the only error type returned by strategies and, apart from caller context
// errors, the coordinator.
type Error struct {
	Kind  Kind
	Host  string
	Cause error // May be nil
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrTimeout   = &Error{Kind: Timeout}
	ErrNotFound  = &Error{Kind: NotFound}
	ErrMalformed = &Error{Kind: Malformed}
	ErrNetwork   = &Error{Kind: Network}
)

// NewError is a convenience constructor.
func NewError(k Kind, host Hostname, cause error) *Error {
	return &Error{Kind: k, Host: string(host), Cause: cause}
}

func (t *Error) Error() string {
	s := t.Kind.String()
	if len(t.Host) > 0 {
		s = t.Host + ": " + s
	}
	if t.Cause != nil {
		s += ": " + t.Cause.Error()
	}

	return s
}

func (t *Error) Unwrap() error {
	return t.Cause
}

// Is matches sentinels by Kind alone.
func (t *Error) Is(target error) bool {
	o, ok := target.(*Error)
	if !ok {
		return false
	}

	return o.Kind == t.Kind && len(o.Host) == 0 && o.Cause == nil
}

// KindOf returns the Kind of the first *Error in err's chain, or zero if there is none.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}

	return 0
}
