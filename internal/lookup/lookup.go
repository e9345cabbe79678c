// Package lookup provides the default read strategies a schema uses to pull a
// named value out of a source object.
//
// A Getter reports absence explicitly through its boolean result instead of
// failing: the executor decides whether a missing value is omitted or is an
// error, depending on whether the field is required.
//
// Two strategies ship with the package:
//   - Attr reads struct fields, zero-argument methods, and protobuf message
//     fields. Names may be dotted paths ("author.name").
//   - Key reads entries of maps keyed by strings.
//
// Any function with the Strategy signature can be used instead.
package lookup

import "errors"

// ErrMissing reports that a source has no value under the requested name.
var ErrMissing = errors.New("missing value")

// Getter reads one value from src. found is false when src has no such value.
type Getter func(src any) (value any, found bool)

// Strategy builds the Getter used for a field name.
type Strategy func(name string) Getter
