package author

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the service wraps exactly one.
var (
	ErrInvalidID      = errors.New("not a valid document id")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("document not found")
	ErrStore          = errors.New("store operation failed")
)

// Op names the resource operation that failed.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpDelete Op = "delete"
	OpUpdate Op = "update"
)

// Error carries the failing operation, its kind and the underlying cause.
type Error struct {
	Op   Op
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the kind wrapped by err, or ErrStore for anything unclassified.
func KindOf(err error) error {
	for _, k := range []error{ErrInvalidID, ErrInvalidRequest, ErrNotFound, ErrStore} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrStore
}

// OpOf returns the operation recorded on err, if any.
func OpOf(err error) (Op, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Op, true
	}
	return "", false
}
