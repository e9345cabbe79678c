package executor

import (
	"errors"
	"fmt"

	"github.com/hanpama/fieldplan/internal/lookup"
)

var (
	// ErrNilSchema is returned when an instance is created without a schema.
	ErrNilSchema = errors.New("nil schema")
	// ErrNotCollection is returned when batch mode gets a source that is not a
	// slice or an array.
	ErrNotCollection = errors.New("batch source must be a slice or an array")
	// ErrNotCallable is returned when a Call field extracts something that
	// cannot be invoked without arguments.
	ErrNotCallable = errors.New("value is not callable")
)

// MissingFieldError reports a required field absent from its source.
type MissingFieldError struct {
	Schema string
	Field  string
	Attr   string
}

func (e *MissingFieldError) Error() string {
	if e.Attr != "" && e.Attr != e.Field {
		return fmt.Sprintf("%s.%s: %v (%s)", e.Schema, e.Field, lookup.ErrMissing, e.Attr)
	}
	return fmt.Sprintf("%s.%s: %v", e.Schema, e.Field, lookup.ErrMissing)
}

func (e *MissingFieldError) Unwrap() error { return lookup.ErrMissing }

// FieldError wraps a failure of a method, call, or transform.
type FieldError struct {
	Schema string
	Field  string
	Err    error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s.%s: %v", e.Schema, e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// ItemError locates the batch element that stopped a batch.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string { return fmt.Sprintf("item %d: %v", e.Index, e.Err) }

func (e *ItemError) Unwrap() error { return e.Err }

// PanicError carries a value recovered from a panic during serialization.
type PanicError struct {
	Schema string
	Value  any
}

func (e *PanicError) Error() string { return fmt.Sprintf("%s: panic: %v", e.Schema, e.Value) }
