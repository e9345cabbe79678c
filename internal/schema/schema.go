// Package schema compiles field declarations into an immutable execution plan.
//
// A Schema is a frozen template: its merged field map and compiled Plan are
// computed once by Builder.Build and never change afterwards. Executions
// borrow the plan; it holds no reference to any source value.
//
// # Field map
//
// The field map of a schema is the field map of its parent (itself merged from
// all of its ancestors, most-ancestral first) overlaid with the fields
// declared on the schema. A redeclared name replaces the inherited descriptor
// entirely and keeps the position of the first declaration.
//
// # Implicit fields
//
// A schema bound to an external model (see package model) also receives a
// default field for every canonical model field that is not declared directly
// on it. Exactly one of Fields or Exclude selects which canonical fields are
// used. Implicit fields are appended after the direct declarations.
//
// # Plan
//
// Each field resolves to an Accessor: the output name, the extractor (the
// schema's lookup strategy applied to the source name, a custom getter, or a
// method taking the owning serializer), the optional value transform, and
// the call and required flags. The plan preserves field map order.
package schema

import (
	"github.com/hanpama/fieldplan/internal/field"
	"github.com/hanpama/fieldplan/internal/lookup"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Schema is a compiled, immutable serialization template.
type Schema struct {
	name     string
	parent   *Schema
	strategy lookup.Strategy
	fields   *orderedmap.OrderedMap[string, *field.Field]
	plan     Plan
}

// Name returns the name the schema was built with.
func (s *Schema) Name() string { return s.name }

// Parent returns the schema this one extends, or nil.
func (s *Schema) Parent() *Schema { return s.parent }

// Strategy returns the default lookup strategy of the schema.
func (s *Schema) Strategy() lookup.Strategy { return s.strategy }

// Plan returns the compiled plan.
func (s *Schema) Plan() Plan { return s.plan }

// FieldNames returns the declared names of the merged field map, in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, s.fields.Len())
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Field returns the descriptor merged under name.
func (s *Schema) Field(name string) (*field.Field, bool) {
	return s.fields.Get(name)
}

// Accessor is the compiled extraction plan of one field.
type Accessor struct {
	// Name is the output key.
	Name string
	// Attr is the name handed to the lookup strategy; empty for custom
	// getters and methods.
	Attr string
	// Getter extracts the value when PassSelf is false.
	Getter lookup.Getter
	// Method extracts the value when PassSelf is true.
	Method field.MethodFunc
	// Transform is nil when the field keeps extracted values as they are.
	Transform field.Transformer
	Call      bool
	Required  bool
	PassSelf  bool
}

// Plan is the ordered, read-only list of accessors of a schema.
type Plan struct {
	accessors []Accessor
}

// Len returns the number of accessors.
func (p Plan) Len() int { return len(p.accessors) }

// At returns a copy of the i'th accessor.
func (p Plan) At(i int) Accessor { return p.accessors[i] }

// Names returns the output names in plan order.
func (p Plan) Names() []string {
	names := make([]string, len(p.accessors))
	for i, a := range p.accessors {
		names[i] = a.Name
	}
	return names
}
