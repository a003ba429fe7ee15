package main

import (
	"errors"
	"fmt"
)

// ModuleFailure is the recoverable severity: one mutator could not do its
// job (bounds violation, missing optional structure, unmet precondition).
// The pipeline logs it and moves on to the next mutator.
type ModuleFailure struct {
	Mutator string
	Message string
}

func (e *ModuleFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Mutator, e.Message)
}

func moduleFailf(mutator, format string, args ...interface{}) error {
	return &ModuleFailure{Mutator: mutator, Message: fmt.Sprintf(format, args...)}
}

// FatalPrecondition aborts the whole run: unresolvable header geometry or a
// managed/CLR input. No further mutation is meaningful after one of these.
type FatalPrecondition struct {
	Message string
}

func (e *FatalPrecondition) Error() string {
	return e.Message
}

func fatalf(format string, args ...interface{}) error {
	return &FatalPrecondition{Message: fmt.Sprintf(format, args...)}
}

func isFatal(err error) bool {
	var fp *FatalPrecondition
	return errors.As(err, &fp)
}
