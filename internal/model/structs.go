package model

import (
	"reflect"
)

// StructAdapter lists the exported fields of Go struct types. It accepts a
// reflect.Type or any value whose dereferenced type is a struct. Fields of
// embedded structs are listed in place of the embedded field; a field tagged
// `fieldplan:"-"` is skipped.
type StructAdapter struct{}

func (StructAdapter) Name() string { return "struct" }

func (StructAdapter) CanHandle(model any) bool {
	return structType(model) != nil
}

func (StructAdapter) Fields(model any) ([]string, error) {
	var names []string
	seen := map[string]bool{}
	collectStructFields(structType(model), seen, map[reflect.Type]bool{}, &names)
	return names, nil
}

func collectStructFields(t reflect.Type, seen map[string]bool, visiting map[reflect.Type]bool, names *[]string) {
	if visiting[t] {
		return
	}
	visiting[t] = true
	defer delete(visiting, t)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Tag.Get("fieldplan") == "-" {
			continue
		}
		if sf.Anonymous {
			et := sf.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				collectStructFields(et, seen, visiting, names)
				continue
			}
		}
		if !sf.IsExported() || seen[sf.Name] {
			continue
		}
		seen[sf.Name] = true
		*names = append(*names, sf.Name)
	}
}

func structType(model any) reflect.Type {
	t, ok := model.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(model)
	}
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}
