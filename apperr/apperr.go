package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage error")
)

// Error carries one of the kinds above together with a caller-facing message
// and, for storage failures, the underlying driver error.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

func Storage(op string, err error) error {
	return &Error{Kind: ErrStorage, Msg: op, Err: err}
}

// Message returns the text safe to hand back to a caller. Storage details
// stay server-side.
func Message(err error) string {
	if errors.Is(err, ErrStorage) {
		return "internal storage error"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}

func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
