package field

import (
	"context"

	"github.com/hanpama/fieldplan/internal/lookup"
)

// Owner is the serializer instance passed to method getters.
type Owner interface {
	// Context returns the context the serialization runs with.
	Context() context.Context
	// Source returns the value (or collection) the instance was created for.
	Source() any
}

// MethodFunc extracts a value with access to the owning serializer instance.
// Its result is stored as-is: no call, transform, or required handling applies.
type MethodFunc func(owner Owner, src any) (any, error)

// Transformer converts an extracted value into its output form.
type Transformer interface {
	ToValue(ctx context.Context, v any) (any, error)
}

// Validator is implemented by transforms that can be misconfigured. A schema
// declaring a field whose transform fails Validate is not built.
type Validator interface {
	Validate() error
}

// TransformFunc adapts a plain function to Transformer.
type TransformFunc func(ctx context.Context, v any) (any, error)

func (f TransformFunc) ToValue(ctx context.Context, v any) (any, error) { return f(ctx, v) }

// Field declares how one output field is extracted and transformed.
// It holds no behavior; the schema compiler turns it into an accessor.
type Field struct {
	// Attr is the attribute or key read from the source. Empty means the
	// declared field name.
	Attr string
	// Label renames the field in the output.
	Label string
	// Call invokes the extracted value with no arguments.
	Call bool
	// Required turns a missing source value into an error instead of an
	// omitted key.
	Required bool
	// Getter replaces the schema's default lookup.
	Getter lookup.Getter
	// Method replaces the schema's default lookup and receives the owner.
	Method MethodFunc
	// Transform is applied to present values. Nil means identity and the
	// step is skipped.
	Transform Transformer
}

// New returns a required field read with the schema's default lookup.
func New() *Field { return &Field{Required: true} }

func (f *Field) SetAttr(attr string) *Field {
	f.Attr = attr
	return f
}

func (f *Field) SetLabel(label string) *Field {
	f.Label = label
	return f
}

func (f *Field) SetCall(call bool) *Field {
	f.Call = call
	return f
}

func (f *Field) SetRequired(required bool) *Field {
	f.Required = required
	return f
}

func (f *Field) SetGetter(g lookup.Getter) *Field {
	f.Getter = g
	return f
}

func (f *Field) SetMethod(m MethodFunc) *Field {
	f.Method = m
	return f
}

func (f *Field) SetTransform(t Transformer) *Field {
	f.Transform = t
	return f
}

// NeedsOwner reports whether the field is extracted by a method getter.
func (f *Field) NeedsOwner() bool { return f.Method != nil }

// Method returns a field whose value is computed by fn.
func Method(fn MethodFunc) *Field { return New().SetMethod(fn) }
