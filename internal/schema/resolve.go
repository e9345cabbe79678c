package schema

import (
	"github.com/hanpama/fieldplan/internal/field"
	"github.com/hanpama/fieldplan/internal/lookup"
)

// resolve compiles one declared field into its accessor.
func resolve(name string, f *field.Field, strategy lookup.Strategy) (Accessor, error) {
	if f.Getter != nil && f.Method != nil {
		return Accessor{}, violationGetterAndMethod(name)
	}
	if v, ok := f.Transform.(field.Validator); ok {
		if err := v.Validate(); err != nil {
			return Accessor{}, violationTransform(name, err)
		}
	}
	a := Accessor{
		Name:      name,
		Transform: f.Transform,
		Call:      f.Call,
		Required:  f.Required,
	}
	if f.Label != "" {
		a.Name = f.Label
	}
	switch {
	case f.Method != nil:
		a.Method = f.Method
		a.PassSelf = true
	case f.Getter != nil:
		a.Getter = f.Getter
	default:
		attr := f.Attr
		if attr == "" {
			attr = name
		}
		a.Attr = attr
		a.Getter = strategy(attr)
	}
	return a, nil
}
