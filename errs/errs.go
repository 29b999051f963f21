// Package errs defines the failure kinds shared by the pricing, greeks and
// risk packages. Every error names the parameter that caused it and unwraps
// to one of the sentinel kinds, so callers branch with errors.Is.
package errs

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParameter marks malformed or out-of-domain inputs.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumericalInstability marks a method that cannot produce a
	// meaningful number for otherwise valid inputs.
	ErrNumericalInstability = errors.New("numerical instability")

	// ErrConvergence marks an iterative solver that ran out of iterations
	// or could not bracket a root.
	ErrConvergence = errors.New("no convergence")
)

type Error struct {
	Kind  error
	Param string
	Value float64
	Msg   string
}

func (e *Error) Error() string {
	if math.IsNaN(e.Value) {
		return fmt.Sprintf("%v: %s: %s", e.Kind, e.Param, e.Msg)
	}
	return fmt.Sprintf("%v: %s=%g: %s", e.Kind, e.Param, e.Value, e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, param string, value float64, format string, args ...any) error {
	return &Error{
		Kind:  kind,
		Param: param,
		Value: value,
		Msg:   fmt.Sprintf(format, args...),
	}
}

// Invalid returns an ErrInvalidParameter for param.
func Invalid(param string, value float64, format string, args ...any) error {
	return newError(ErrInvalidParameter, param, value, format, args...)
}

// Unstable returns an ErrNumericalInstability for param.
func Unstable(param string, value float64, format string, args ...any) error {
	return newError(ErrNumericalInstability, param, value, format, args...)
}

// NotConverged returns an ErrConvergence for param.
func NotConverged(param string, value float64, format string, args ...any) error {
	return newError(ErrConvergence, param, value, format, args...)
}

// Param extracts the offending parameter name from err, if any.
func Param(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Param, true
	}
	return "", false
}
