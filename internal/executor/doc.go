// Package executor applies compiled schema plans to source values and produces
// generic output trees.
//
// # Overview
//
// An Instance binds a schema to one source value, or to a collection of source
// values in batch mode. Its output is computed on the first call to Data and
// memoized: later calls return the same value (and the same error) without
// running any extractor again. Concurrent first calls compute once.
//
// Output trees are map[string]any for a single source and []map[string]any in
// batch mode. Values are whatever the extractors and transforms produced:
// primitives, nested trees, or raw values passed through unchanged.
//
// # Execution
//
// For every accessor of the plan, in order:
//
//  1. Method accessors are called with the owning Instance and the source.
//     Their result is stored as-is; the method owns its failure behavior.
//  2. Other accessors call their getter. A missing value is an error for
//     required fields (MissingFieldError) and an omitted key otherwise.
//  3. When the field is required or the value is not nil, a Call field
//     invokes the value with no arguments and a Transform is applied.
//  4. The value is stored under the accessor's output name.
//
// Extraction never mutates the source.
//
// # Batches
//
// Batch mode serializes elements in order, one at a time. The first failing
// element stops the batch: Data returns the outputs of the elements before it
// together with an ItemError carrying the failing index. Earlier outputs are
// not rolled back.
//
// # Nesting
//
// Nested turns a schema into a field: the extracted value is serialized by a
// transient Instance of the nested schema, sharing the parent's context, and
// its output tree is embedded under the field's name.
package executor
