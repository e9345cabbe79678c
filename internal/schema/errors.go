package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelRequired is reported when Fields or Exclude is configured
	// without a model.
	ErrModelRequired = errors.New("a model is required when fields or exclude is set")
	// ErrFieldsOrExclude is reported when a model is bound without Fields or
	// Exclude.
	ErrFieldsOrExclude = errors.New("either fields or exclude must be set with a model")
	// ErrFieldsAndExclude is reported when both Fields and Exclude are set.
	ErrFieldsAndExclude = errors.New("fields and exclude prohibit each other")
	// ErrInvalidField is reported for malformed field declarations.
	ErrInvalidField = errors.New("invalid field")
)

// ConfigError lists every configuration violation of a schema. A schema with
// violations is never built.
type ConfigError struct {
	Schema     string
	Violations []error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema %q: invalid configuration:\n", e.Schema)
	for _, v := range e.Violations {
		b.WriteString("- " + v.Error() + "\n")
	}
	return b.String()
}

// Unwrap exposes the violations to errors.Is and errors.As.
func (e *ConfigError) Unwrap() []error { return e.Violations }

func violationEmptyFieldName() error {
	return fmt.Errorf("%w: empty field name", ErrInvalidField)
}

func violationNilField(name string) error {
	return fmt.Errorf("%w %q: nil descriptor", ErrInvalidField, name)
}

func violationGetterAndMethod(name string) error {
	return fmt.Errorf("%w %q: getter and method prohibit each other", ErrInvalidField, name)
}

func violationTransform(name string, err error) error {
	return fmt.Errorf("%w %q: transform: %w", ErrInvalidField, name, err)
}

func violationNilStrategy() error {
	return errors.New("lookup strategy must not be nil")
}
