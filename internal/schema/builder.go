package schema

import (
	"github.com/hanpama/fieldplan/internal/field"
	"github.com/hanpama/fieldplan/internal/lookup"
	"github.com/hanpama/fieldplan/internal/model"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AllFields selects every canonical model field when passed to Fields.
const AllFields = "__all__"

// Builder collects the declaration of one schema. Build compiles it.
type Builder struct {
	name     string
	parent   *Schema
	strategy lookup.Strategy
	direct   *orderedmap.OrderedMap[string, *field.Field]

	model    any
	include  []string
	exclude  []string
	adapters *model.Registry

	violations []error
}

// New starts the declaration of a schema called name.
func New(name string) *Builder {
	return &Builder{
		name:   name,
		direct: orderedmap.New[string, *field.Field](),
	}
}

// Extends makes the schema inherit the merged fields and the lookup strategy
// of parent.
func (b *Builder) Extends(parent *Schema) *Builder {
	b.parent = parent
	return b
}

// Lookup sets the default lookup strategy. Without it the parent's strategy
// is used, or lookup.Attr for root schemas.
func (b *Builder) Lookup(s lookup.Strategy) *Builder {
	if s == nil {
		b.violations = append(b.violations, violationNilStrategy())
		return b
	}
	b.strategy = s
	return b
}

// Field declares a field directly on the schema.
func (b *Builder) Field(name string, f *field.Field) *Builder {
	switch {
	case name == "":
		b.violations = append(b.violations, violationEmptyFieldName())
	case f == nil:
		b.violations = append(b.violations, violationNilField(name))
	default:
		b.direct.Set(name, f)
	}
	return b
}

// Model binds an external model whose canonical fields are expanded into
// implicit fields.
func (b *Builder) Model(m any) *Builder {
	b.model = m
	return b
}

// Fields selects the canonical fields to expand; pass AllFields for all.
func (b *Builder) Fields(names ...string) *Builder {
	b.include = append(b.include, names...)
	return b
}

// Exclude expands every canonical field except names.
func (b *Builder) Exclude(names ...string) *Builder {
	b.exclude = append(b.exclude, names...)
	return b
}

// Adapters sets the model adapter registry. model.Default is used otherwise.
func (b *Builder) Adapters(r *model.Registry) *Builder {
	b.adapters = r
	return b
}

// MustBuild is like Build but panics on configuration errors. It is meant for
// package-level schema declarations.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
