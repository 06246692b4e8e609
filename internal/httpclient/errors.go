package httpclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed fetch.
type Kind int

const (
	// KindTransient covers timeouts, connection failures and 5xx responses.
	KindTransient Kind = iota + 1
	// KindBlocked covers 429, 403 and hostile/corrupted content. Never retried.
	KindBlocked
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

var (
	ErrTransient = errors.New("transient fetch failure")
	ErrBlocked   = errors.New("blocked by target site")
)

// Error is returned by every failed fetch. errors.Is matches it against
// ErrTransient or ErrBlocked according to its Kind.
type Error struct {
	Kind     Kind
	URL      string
	Status   int
	Attempts int
	Reason   string
	Cause    error

	retryable bool
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("httpclient: %s: %s", e.Kind, e.URL)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrBlocked:
		return e.Kind == KindBlocked
	case ErrTransient:
		return e.Kind == KindTransient
	}
	return false
}

// Blocked builds a non-retryable error for content an adapter judged hostile.
func Blocked(url, reason string) *Error {
	return &Error{Kind: KindBlocked, URL: url, Reason: reason}
}

// Transient builds a transient error, e.g. for an unparseable payload.
func Transient(url, reason string, cause error) *Error {
	return &Error{Kind: KindTransient, URL: url, Reason: reason, Cause: cause}
}
