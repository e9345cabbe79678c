package executor

import (
	"context"

	"github.com/hanpama/fieldplan/internal/field"
	"github.com/hanpama/fieldplan/internal/schema"
)

// Nested returns a required field serializing its extracted value with s.
// With many set the value must be a slice or an array and the field holds a
// []map[string]any. A nil s is reported when the enclosing schema is built.
func Nested(s *schema.Schema, many bool) *field.Field {
	return field.New().SetTransform(nested{schema: s, many: many})
}

type nested struct {
	schema *schema.Schema
	many   bool
}

func (n nested) Validate() error {
	if n.schema == nil {
		return ErrNilSchema
	}
	return nil
}

func (n nested) ToValue(ctx context.Context, v any) (any, error) {
	inst, err := New(n.schema, v, WithContext(ctx), WithMany(n.many))
	if err != nil {
		return nil, err
	}
	return inst.Data()
}
