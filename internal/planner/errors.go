package planner

import (
	"errors"
	"fmt"
	"strings"
)

// CompileError is a single validation failure.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string {
	return e.Message
}

// Errors is the ordered list of failures found during one compilation.
type Errors []*CompileError

func (e Errors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Messages returns the failure messages in discovery order.
func (e Errors) Messages() []string {
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Message
	}
	return out
}

// Messages returns the compile failure messages carried by err. Errors that
// did not come from compilation yield their own text.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var errs Errors
	if errors.As(err, &errs) {
		return errs.Messages()
	}
	var one *CompileError
	if errors.As(err, &one) {
		return []string{one.Message}
	}
	return []string{err.Error()}
}

func compileErrorf(format string, args ...interface{}) error {
	return Errors{{Message: fmt.Sprintf(format, args...)}}
}

// errorList accumulates failures from independent branches of the input.
type errorList struct {
	errs Errors
}

func (l *errorList) add(err error) {
	if err == nil {
		return
	}
	var errs Errors
	if errors.As(err, &errs) {
		l.errs = append(l.errs, errs...)
		return
	}
	l.errs = append(l.errs, &CompileError{Message: err.Error()})
}

func (l *errorList) err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return l.errs
}

func fieldNotFound(name, typeName string) error {
	return compileErrorf("Field `%s` for type `%s` not found.", name, typeName)
}

func typeNotFound(typeName string) error {
	return compileErrorf("Type `%s` not found.", typeName)
}
