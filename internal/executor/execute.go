package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hanpama/fieldplan/internal/schema"
)

// serialize runs the plan of inst's schema against one source value. ctx is
// handed to transforms. On error the partial output is discarded.
func serialize(ctx context.Context, inst *Instance, src any) (map[string]any, error) {
	plan := inst.schema.Plan()
	out := make(map[string]any, plan.Len())
	for k := 0; k < plan.Len(); k++ {
		a := plan.At(k)
		if a.PassSelf {
			v, err := a.Method(inst, src)
			if err != nil {
				return nil, fieldError(inst, a, err)
			}
			out[a.Name] = v
			continue
		}

		v, found := a.Getter(src)
		if !found {
			if a.Required {
				return nil, &MissingFieldError{Schema: inst.schema.Name(), Field: a.Name, Attr: a.Attr}
			}
			continue
		}
		if a.Required || !isNil(v) {
			var err error
			if a.Call {
				if v, err = invoke(v); err != nil {
					return nil, fieldError(inst, a, err)
				}
			}
			if a.Transform != nil {
				if v, err = a.Transform.ToValue(ctx, v); err != nil {
					return nil, fieldError(inst, a, err)
				}
			}
		}
		out[a.Name] = v
	}
	return out, nil
}

// serializeMany serializes the elements of src in order and stops at the
// first failing element, returning the outputs produced before it.
func serializeMany(ctx context.Context, inst *Instance, src any) ([]map[string]any, error) {
	rv := reflect.ValueOf(src)
	out := make([]map[string]any, 0, rv.Len())
	for idx := 0; idx < rv.Len(); idx++ {
		m, err := serialize(ctx, inst, rv.Index(idx).Interface())
		if err != nil {
			return out, &ItemError{Index: idx, Err: err}
		}
		out = append(out, m)
	}
	return out, nil
}

func fieldError(inst *Instance, a schema.Accessor, err error) error {
	return &FieldError{Schema: inst.schema.Name(), Field: a.Name, Err: err}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// invoke calls a function value taking no arguments. A trailing error result
// is returned as the error.
func invoke(v any) (any, error) {
	switch fn := v.(type) {
	case func() any:
		if fn == nil {
			return nil, fmt.Errorf("%w: nil %T", ErrNotCallable, v)
		}
		return fn(), nil
	case func() (any, error):
		if fn == nil {
			return nil, fmt.Errorf("%w: nil %T", ErrNotCallable, v)
		}
		return fn()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, v)
	}
	if rv.IsNil() {
		return nil, fmt.Errorf("%w: nil %T", ErrNotCallable, v)
	}
	t := rv.Type()
	switch t.NumOut() {
	case 0:
		rv.Call(nil)
		return nil, nil
	case 1:
		res := rv.Call(nil)[0]
		if t.Out(0) == errorType {
			err, _ := res.Interface().(error)
			return nil, err
		}
		return res.Interface(), nil
	case 2:
		if t.Out(1) != errorType {
			break
		}
		res := rv.Call(nil)
		err, _ := res[1].Interface().(error)
		return res[0].Interface(), err
	}
	return nil, fmt.Errorf("%w: %s has unsupported results", ErrNotCallable, t)
}

// isNil reports whether v is the absent-value sentinel: a nil interface, or a
// nil pointer, func, map or channel. Zero values, empty strings, and slices
// (nil or empty) are present.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
