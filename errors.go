package tessera

import (
	"errors"
	"fmt"

	"github.com/tessera-db/tessera/core"
)

var (
	// ErrUnbalancedGroup is returned when EndGroup is called on the
	// outermost frame, or a group is still open at execution.
	ErrUnbalancedGroup = errors.New("unbalanced group")
	// ErrEmptyNegation is returned when a query with no conditions is
	// negated.
	ErrEmptyNegation = errors.New("negation of an empty query is not supported")
	// ErrSerialisationUnsupported is returned when describing a query
	// constrained by a view.
	ErrSerialisationUnsupported = errors.New("serialisation of a query constrained by a view is not supported")
	// ErrDetached is returned when the query's base table is gone.
	ErrDetached = errors.New("table is no longer attached")
	// ErrInvalidQuery is returned by terminal operations on a query whose
	// builder recorded an error.
	ErrInvalidQuery = errors.New("invalid query")
)

// TypeMismatchError indicates a builder operation with a value that is
// incompatible with the target column.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type TypeMismatchError struct {
	Column   string
	Expected core.DataType
	Detail   string
	cause    error
}

func (e *TypeMismatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("type mismatch on column %q: %s", e.Column, e.Detail)
	}
	return fmt.Sprintf("type mismatch on column %q: expected %s", e.Column, e.Expected)
}

func (e *TypeMismatchError) Unwrap() error { return e.cause }

// NoSuchColumnError indicates a reference to a column absent from the
// base table.
type NoSuchColumnError struct {
	Name string
}

func (e *NoSuchColumnError) Error() string {
	return fmt.Sprintf("no such column: %q", e.Name)
}
