// Package errors collects the problems found while decoding or encoding a
// file. A fatal problem is returned as an ordinary error, while non-fatal
// problems are gathered into an Errors list and returned next to the result.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

func New(text string) error {
	return errors.New(text)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Errors is a list of non-fatal problems.
type Errors []error

// Error returns the message of a list with one problem. Any other list is
// described by its length, followed by one numbered line per problem.
// Continuation lines of a message are indented below its number.
func (errs Errors) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d problems", len(errs))
	for i, err := range errs {
		msg := strings.ReplaceAll(err.Error(), "\n", "\n\t\t")
		fmt.Fprintf(&b, "\n\t%d: %s", i+1, msg)
	}
	return b.String()
}

// Unwrap allows Is and As to inspect each problem.
func (errs Errors) Unwrap() []error {
	return errs
}

// Append adds the non-nil problems of err to the list.
func (errs Errors) Append(err ...error) Errors {
	for _, e := range err {
		if e != nil {
			errs = append(errs, e)
		}
	}
	return errs
}

// Return converts the list to an error, which is nil for an empty list.
func (errs Errors) Return() error {
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Union flattens each err into a single list, as returned by List. The result
// is nil when no problem remains.
func Union(errs ...error) error {
	var all Errors
	for _, err := range errs {
		all = append(all, List(err)...)
	}
	return all.Return()
}

// List returns the problems held by err: the non-nil elements of an Errors,
// err alone for any other error, and nil for nil.
func List(err error) []error {
	errs, ok := err.(Errors)
	if !ok {
		if err == nil {
			return nil
		}
		return []error{err}
	}
	return Errors(nil).Append(errs...)
}

// Strings returns the message of each problem held by err.
func Strings(err error) []string {
	var s []string
	for _, e := range List(err) {
		s = append(s, e.Error())
	}
	return s
}
