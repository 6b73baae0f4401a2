package meta

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Every error returned by this package matches one of these with
// errors.Is; the message carries the identifiers involved.
var (
	ErrClassNotFound     = errors.New("class not found")
	ErrEnumNotFound      = errors.New("enum not found")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrFunctionNotFound  = errors.New("function not found")
	ErrEnumNameNotFound  = errors.New("enum name not found")
	ErrEnumValueNotFound = errors.New("enum value not found")

	ErrForbiddenRead  = errors.New("property is not readable")
	ErrForbiddenWrite = errors.New("property is not writable")
	ErrForbiddenCall  = errors.New("function is not callable")

	ErrOutOfRange     = errors.New("index out of range")
	ErrBadType        = errors.New("bad type")
	ErrClassUnrelated = errors.New("classes are unrelated")

	ErrNotEnoughArguments = errors.New("not enough arguments")
	ErrBadArgument        = errors.New("bad argument")
	ErrNullObject         = errors.New("null object")

	ErrDuplicateClass = errors.New("class already registered")
	ErrDuplicateEnum  = errors.New("enum already registered")
	ErrDuplicateName  = errors.New("name already declared")
	ErrRegistryFrozen = errors.New("registry is frozen")
)

// RangeError is returned when an index is not below its bound.
type RangeError struct {
	Index int
	Bound int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Bound)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

func outOfRange(index, bound int) error {
	return &RangeError{Index: index, Bound: bound}
}

// TypeError is returned when a Value cannot be converted to the requested
// type. Err, when set, is the underlying reason (an unrelated class or a
// missing enum name, for example).
type TypeError struct {
	From Type
	To   string
	Err  error
}

func (e *TypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %s to %s: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

func (e *TypeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrBadType, e.Err}
	}
	return []error{ErrBadType}
}

func badType(from Type, to string, cause error) error {
	return &TypeError{From: from, To: to, Err: cause}
}
