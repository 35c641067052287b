// Package errors provides errors whose message is only formatted when printed.
//
// Any error among the arguments is wrapped, so errors.Is and errors.As see through it.
package errors

import (
	"fmt"
)

type lazyError struct {
	format string
	args   []any
}

func (err lazyError) Error() string {
	return fmt.Sprintf(err.format, err.args...)
}

func (err lazyError) Unwrap() []error {
	var errs []error
	for _, arg := range err.args {
		if wrapped, ok := arg.(error); ok {
			errs = append(errs, wrapped)
		}
	}
	return errs
}

// New returns an error with a message formatted from format and args.
func New(format string, args ...any) error {
	return lazyError{format, args}
}
