// Package errorx carries business error codes across handler boundaries.
//
// A Coder maps an integer business code to an HTTP status and a safe,
// user-facing message. Handlers wrap internal errors with WrapC; the core
// response writer looks the coder up and renders the envelope.
package errorx

import (
	"fmt"
	"net/http"
	"sync"
)

// Coder describes a registered business error code.
type Coder interface {
	// Code returns the integer business code.
	Code() int
	// HTTPStatus returns the HTTP status associated with the code.
	HTTPStatus() int
	// String returns the user-facing message.
	String() string
	// Reference returns an optional documentation link.
	Reference() string
}

var (
	codesMu sync.RWMutex
	codes   = map[int]Coder{}
)

// Register registers a coder. Re-registering a code overwrites it.
func Register(coder Coder) {
	if coder.Code() == 0 {
		panic("code '0' is reserved as unknown error code")
	}
	codesMu.Lock()
	defer codesMu.Unlock()
	codes[coder.Code()] = coder
}

// MustRegister registers a coder and panics when the code is already taken.
func MustRegister(coder Coder) {
	if coder.Code() == 0 {
		panic("code '0' is reserved as unknown error code")
	}
	codesMu.Lock()
	defer codesMu.Unlock()
	if _, ok := codes[coder.Code()]; ok {
		panic(fmt.Sprintf("code %d already registered", coder.Code()))
	}
	codes[coder.Code()] = coder
}

type withCode struct {
	err  error
	code int
}

func (w *withCode) Error() string { return w.err.Error() }
func (w *withCode) Unwrap() error { return w.err }

// WrapC wraps err with a business code and a formatted internal message.
func WrapC(err error, code int, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if err == nil {
		return &withCode{err: fmt.Errorf("%s", msg), code: code}
	}
	return &withCode{err: fmt.Errorf("%s: %w", msg, err), code: code}
}

// NewC creates a coded error without an underlying cause.
func NewC(code int, format string, args ...interface{}) error {
	return WrapC(nil, code, format, args...)
}

type unknownCoder struct{}

func (unknownCoder) Code() int         { return 1 }
func (unknownCoder) HTTPStatus() int   { return http.StatusInternalServerError }
func (unknownCoder) String() string    { return "An internal server error occurred" }
func (unknownCoder) Reference() string { return "" }

// ParseCoder resolves the coder attached to err. Errors without a code
// resolve to the unknown coder (code 1, HTTP 500).
func ParseCoder(err error) Coder {
	if err == nil {
		return nil
	}
	if wc, ok := err.(*withCode); ok {
		codesMu.RLock()
		defer codesMu.RUnlock()
		if coder, ok := codes[wc.code]; ok {
			return coder
		}
	}
	return unknownCoder{}
}

// IsCode reports whether err carries the given business code.
func IsCode(err error, code int) bool {
	wc, ok := err.(*withCode)
	return ok && wc.code == code
}
