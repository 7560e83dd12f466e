package geocode

import (
	"errors"
	"fmt"
)

// Kind classifies a lookup failure.
type Kind string

const (
	// KindInvalidInput covers bad caller parameters and addresses the upstream
	// does not recognize.
	KindInvalidInput Kind = "invalid_input"

	// KindUnauthorized means the upstream rejected the access key.
	KindUnauthorized Kind = "unauthorized"

	// KindMalformedResponse means a 2xx upstream body could not be decoded.
	KindMalformedResponse Kind = "malformed_upstream_response"

	// KindUpstreamUnreachable covers transport failures and any other non-2xx status.
	KindUpstreamUnreachable Kind = "upstream_unreachable"
)

// Sentinels for errors.Is matching on kind.
var (
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrMalformedResponse   = &Error{Kind: KindMalformedResponse}
	ErrUpstreamUnreachable = &Error{Kind: KindUpstreamUnreachable}
)

// Error is a classified lookup failure.
type Error struct {
	Kind       Kind
	StatusCode int // upstream HTTP status, 0 when no response was received
	Message    string
	Err        error
}

// NewError creates an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
// ok is false for uncategorized errors.
func KindOf(err error) (kind Kind, ok bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind, true
	}
	return "", false
}
