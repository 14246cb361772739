package ssotica

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the integration can surface.
type Kind string

const (
	KindConfiguration      Kind = "ConfigurationError"
	KindCsrfTokenMissing   Kind = "CsrfTokenMissing"
	KindRequestFailed      Kind = "RequestFailed"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindInvalidInput       Kind = "InvalidInputError"
	KindSearch             Kind = "SearchError"
)

// Error carries a Kind, a human readable message and the underlying cause.
//
// errors.Is matches on kind alone when the target is one of the Err* sentinels,
// so `errors.Is(err, ErrInvalidCredentials)` holds even when the credentials
// error is wrapped inside a SearchError.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrConfiguration      = &Error{Kind: KindConfiguration}
	ErrCsrfTokenMissing   = &Error{Kind: KindCsrfTokenMissing}
	ErrRequestFailed      = &Error{Kind: KindRequestFailed}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrSearch             = &Error{Kind: KindSearch}

	// ErrSessionExpired is returned by QueryInstallments when the remote system
	// bounced the request back to the login page.
	ErrSessionExpired = errors.New("ssotica session expired")
)

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return t.Kind == e.Kind
	}
	return t == e
}

// NewSearchError wraps cause into a SearchError.
func NewSearchError(cause error, format string, args ...any) *Error {
	return newError(KindSearch, cause, format, args...)
}

// NewInvalidInputError creates an InvalidInputError.
func NewInvalidInputError(format string, args ...any) *Error {
	return newError(KindInvalidInput, nil, format, args...)
}

// KindOf returns the most specific kind found in err's chain. A SearchError
// that wraps a login failure reports the login failure's kind, a bare
// SearchError reports KindSearch, and errors outside the taxonomy report "".
func KindOf(err error) Kind {
	var kind Kind
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return kind
		}
		kind = e.Kind
		if kind != KindSearch {
			return kind
		}
		err = e.Err
	}
	return kind
}
