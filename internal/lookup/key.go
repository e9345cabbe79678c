package lookup

import "reflect"

// Key returns a Getter reading the entry name from a map keyed by strings.
// Sources that are not such maps have no entries.
func Key(name string) Getter {
	return func(src any) (any, bool) {
		switch m := src.(type) {
		case map[string]any:
			v, ok := m[name]
			return v, ok
		case nil:
			return nil, false
		}
		rv := reflect.ValueOf(src)
		for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
			if rv.IsNil() {
				return nil, false
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	}
}
