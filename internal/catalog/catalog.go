// Package catalog builds key-lookup schemas from the object types of a GraphQL
// SDL document, so that JSON-shaped data can be projected onto those types.
//
// Every object type becomes a schema bound to its definition through the
// GraphQL model adapter. Fields map as follows:
//   - Int, Float, String, ID, and Boolean fields get the matching scalar
//     transform, applied element-wise for lists.
//   - Enum fields are converted to strings.
//   - Object-typed fields nest the schema of that type (batch mode for lists).
//     Null elements of a list with nullable elements stay null.
//   - Anything else is passed through unchanged.
//
// Non-null fields are required; nullable fields are optional.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hanpama/fieldplan/internal/executor"
	"github.com/hanpama/fieldplan/internal/field"
	"github.com/hanpama/fieldplan/internal/language"
	"github.com/hanpama/fieldplan/internal/lookup"
	"github.com/hanpama/fieldplan/internal/schema"
)

// ErrRecursiveType is returned for object types that reach themselves through
// their fields.
var ErrRecursiveType = errors.New("recursive object type")

// ErrUnknownType is returned when an option names a type missing from the
// document.
var ErrUnknownType = errors.New("unknown object type")

type Options struct {
	// Exclude lists, per type name, the fields left out of the schema.
	Exclude map[string][]string
}

type Option func(*Options)

// WithExclude leaves fields out of the schema of typeName.
func WithExclude(typeName string, fields ...string) Option {
	return func(o *Options) {
		if o.Exclude == nil {
			o.Exclude = map[string][]string{}
		}
		o.Exclude[typeName] = append(o.Exclude[typeName], fields...)
	}
}

// Catalog holds one compiled schema per object type.
type Catalog struct {
	names   []string
	schemas map[string]*schema.Schema
}

// Names returns the object type names in document order.
func (c *Catalog) Names() []string { return c.names }

// Schema returns the schema compiled for typeName.
func (c *Catalog) Schema(typeName string) (*schema.Schema, bool) {
	s, ok := c.schemas[typeName]
	return s, ok
}

type builder struct {
	opt      Options
	defs     map[string]*language.Definition
	schemas  map[string]*schema.Schema
	visiting map[string]bool
}

// Build compiles every object type of doc.
func Build(doc *language.SchemaDocument, opts ...Option) (*Catalog, error) {
	var o Options
	for _, f := range opts {
		f(&o)
	}
	b := &builder{
		opt:      o,
		defs:     map[string]*language.Definition{},
		schemas:  map[string]*schema.Schema{},
		visiting: map[string]bool{},
	}
	c := &Catalog{schemas: b.schemas}
	for _, def := range language.Definitions(doc) {
		b.defs[def.Name] = def
		if def.Kind == language.Object {
			c.names = append(c.names, def.Name)
		}
	}
	for typeName := range o.Exclude {
		if def, ok := b.defs[typeName]; !ok || def.Kind != language.Object {
			return nil, fmt.Errorf("%w %q", ErrUnknownType, typeName)
		}
	}
	for _, name := range c.names {
		if _, err := b.build(name, nil); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (b *builder) build(typeName string, path []string) (*schema.Schema, error) {
	if s, ok := b.schemas[typeName]; ok {
		return s, nil
	}
	path = append(path, typeName)
	if b.visiting[typeName] {
		return nil, fmt.Errorf("%w: %s", ErrRecursiveType, strings.Join(path, " -> "))
	}
	b.visiting[typeName] = true
	defer delete(b.visiting, typeName)

	def := b.defs[typeName]
	excluded := b.opt.Exclude[typeName]
	sb := schema.New(typeName).Lookup(lookup.Key).Model(def)
	if len(excluded) > 0 {
		sb.Exclude(excluded...)
	} else {
		sb.Fields(schema.AllFields)
	}
	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") || slices.Contains(excluded, fd.Name) {
			continue
		}
		f, err := b.fieldFor(fd.Type, path)
		if err != nil {
			return nil, err
		}
		sb.Field(fd.Name, f.SetRequired(fd.Type.NonNull))
	}
	s, err := sb.Build()
	if err != nil {
		return nil, err
	}
	b.schemas[typeName] = s
	return s, nil
}

func (b *builder) fieldFor(t *language.Type, path []string) (*field.Field, error) {
	named, list := t.Name(), t.Elem != nil
	if list && t.Elem.Elem != nil {
		return field.New(), nil
	}
	def, ok := b.defs[named]
	if ok && def.Kind == language.Object {
		child, err := b.build(named, path)
		if err != nil {
			return nil, err
		}
		if list && !t.Elem.NonNull {
			elem := executor.Nested(child, false)
			return elem.SetTransform(eachElement{elem.Transform}), nil
		}
		return executor.Nested(child, list), nil
	}

	var leaf *field.Field
	switch {
	case ok && def.Kind == language.Enum:
		leaf = field.Str()
	default:
		leaf = scalarField(named)
	}
	if list && leaf.Transform != nil {
		leaf.SetTransform(eachElement{leaf.Transform})
	}
	return leaf, nil
}

func scalarField(name string) *field.Field {
	switch name {
	case "Int":
		return field.Int()
	case "Float":
		return field.Float()
	case "String", "ID":
		return field.Str()
	case "Boolean":
		return field.Bool()
	}
	return field.New()
}

// eachElement applies a transform to every element of a list value. Nil
// elements stay nil.
type eachElement struct {
	inner field.Transformer
}

func (e eachElement) ToValue(ctx context.Context, v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]any, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		conv, err := e.inner.ToValue(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = conv
	}
	return out, nil
}
