package field

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Str returns a required field whose value is converted to a string.
func Str() *Field { return New().SetTransform(TransformFunc(toString)) }

// Int returns a required field whose value is converted to an int64.
func Int() *Field { return New().SetTransform(TransformFunc(toInt)) }

// Float returns a required field whose value is converted to a float64.
func Float() *Field { return New().SetTransform(TransformFunc(toFloat)) }

// Bool returns a required field whose value is converted to its truth value.
func Bool() *Field { return New().SetTransform(TransformFunc(toBool)) }

func toString(_ context.Context, v any) (any, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	case nil:
		return "", nil
	}
	return fmt.Sprint(v), nil
}

func toInt(_ context.Context, v any) (any, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int: %w", n, err)
		}
		return int64(f), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int: %w", n, err)
		}
		return i, nil
	case bool:
		if n {
			return int64(1), nil
		}
		return int64(0), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("cannot convert %d to int: out of range", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("cannot convert %v to int", f)
		}
		return int64(f), nil
	}
	return nil, fmt.Errorf("cannot convert %T to int", v)
}

func toFloat(_ context.Context, v any) (any, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to float: %w", n, err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to float: %w", n, err)
		}
		return f, nil
	case bool:
		if n {
			return float64(1), nil
		}
		return float64(0), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, fmt.Errorf("cannot convert %T to float", v)
}

func toBool(_ context.Context, v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case nil:
		return false, nil
	case json.Number:
		f, err := b.Float64()
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to bool: %w", b, err)
		}
		return f != 0, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0, nil
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil(), nil
	}
	return true, nil
}
