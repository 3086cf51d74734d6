package apierr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindValidation is a client-side rejection; the request was never built.
	KindValidation Kind = "validation"
	// KindRequest means the request failed before it could be sent.
	KindRequest Kind = "request"
	// KindNetwork means the request was sent but no response arrived.
	KindNetwork Kind = "network"
	// KindServer means the server answered with a non-2xx status.
	KindServer Kind = "server"
)

// Error carries the normalized, user-facing Message alongside the raw
// response details the transport saw.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Body    string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Kind: KindServer, Status: status, Code: code, Err: err}
}

func Validation(msg string, err error) *Error {
	return &Error{Kind: KindValidation, Message: msg, Err: err}
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return 0
}

func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
