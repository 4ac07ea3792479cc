// Package errors provides the status-coded error taxonomy used throughout
// revstore. It is not part of the stable public API and is subject to
// change without notice.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Status codes, reused from the HTTP status space per spec.md §6, even
// though revstore is never addressed over HTTP.
const (
	StatusBadRequest = http.StatusBadRequest
	StatusNotFound   = http.StatusNotFound
	StatusConflict   = http.StatusConflict
	StatusBusy       = 429 // SQLITE_BUSY mapped onto 429 Too Many Requests
	StatusInternal   = http.StatusInternalServerError
)

// statusError is an error message bundled with a status code.
type statusError struct {
	statusCode int
	message    string
}

// MarshalJSON satisfies the json.Marshaler interface for statusError.
func (se *statusError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"error":  statusText(se.statusCode),
		"reason": se.message,
	})
}

func (se *statusError) Error() string { return se.message }

// HTTPStatus returns the error's embedded status code.
func (se *statusError) HTTPStatus() int { return se.statusCode }

// Reason returns the error's underlying message.
func (se *statusError) Reason() string { return se.message }

func statusText(code int) string {
	switch code {
	case StatusBadRequest:
		return "bad_request"
	case StatusNotFound:
		return "not_found"
	case StatusConflict:
		return "conflict"
	case StatusBusy:
		return "busy"
	default:
		return "internal_error"
	}
}

// Status returns a new error with the given status code.
func Status(status int, msg string) error {
	return &statusError{statusCode: status, message: msg}
}

// Statusf returns a new error with the given status code and formatted
// message.
func Statusf(status int, format string, args ...interface{}) error {
	return &statusError{statusCode: status, message: fmt.Sprintf(format, args...)}
}

// BadRequest returns a 400 error.
func BadRequest(format string, args ...interface{}) error {
	return Statusf(StatusBadRequest, format, args...)
}

// NotFound returns a 404 error.
func NotFound(format string, args ...interface{}) error {
	return Statusf(StatusNotFound, format, args...)
}

// Conflict returns a 409 error.
func Conflict(format string, args ...interface{}) error {
	return Statusf(StatusConflict, format, args...)
}

// Busy returns an error indicating the storage engine's busy-retry window
// was exceeded.
func Busy(format string, args ...interface{}) error {
	return Statusf(StatusBusy, format, args...)
}

// Internal wraps an underlying cause as a 500 error.
func Internal(err error) error {
	return WrapStatus(StatusInternal, err)
}

type wrappedError struct {
	err        error
	statusCode int
}

func (e *wrappedError) Error() string   { return e.err.Error() }
func (e *wrappedError) HTTPStatus() int { return e.statusCode }
func (e *wrappedError) Cause() error    { return e.err }
func (e *wrappedError) Unwrap() error   { return e.err }

// WrapStatus bundles an existing error with a status code.
func WrapStatus(status int, err error) error {
	if err == nil {
		return nil
	}
	return &wrappedError{err: err, statusCode: status}
}

// Wrap is a thin wrapper around pkg/errors.Wrap, kept as a single import
// point so call sites never need to import pkg/errors directly.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Wrapf is a thin wrapper around pkg/errors.Wrapf.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// HTTPStatus extracts the status code from err, defaulting to 500 if err
// doesn't implement the `HTTPStatus() int` interface anywhere in its cause
// chain.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	type statusCoder interface {
		HTTPStatus() int
	}
	type causer interface{ Cause() error }
	for e := err; e != nil; {
		if sc, ok := e.(statusCoder); ok {
			return sc.HTTPStatus()
		}
		c, ok := e.(causer)
		if !ok {
			break
		}
		e = c.Cause()
	}
	return StatusInternal
}
