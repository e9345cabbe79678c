package lookup

import (
	"reflect"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Attr returns a Getter reading the attribute name from a source.
//
// Structs resolve exported fields (promoted fields included) and methods;
// a method is returned as a function value, so pair it with a Call field to
// use its result. Protobuf messages resolve fields by proto name or JSON name.
// A dotted name walks nested values, and any missing or nil step makes the
// whole path missing.
func Attr(name string) Getter {
	if !strings.Contains(name, ".") {
		return func(src any) (any, bool) { return attr(src, name) }
	}
	path := strings.Split(name, ".")
	return func(src any) (any, bool) {
		cur := src
		for _, step := range path {
			v, ok := attr(cur, step)
			if !ok {
				return nil, false
			}
			cur = v
		}
		return cur, true
	}
}

func attr(src any, name string) (any, bool) {
	switch s := src.(type) {
	case nil:
		return nil, false
	case protoreflect.Message:
		return protoField(s, name)
	case protoreflect.ProtoMessage:
		return protoField(s.ProtoReflect(), name)
	}

	rv := reflect.ValueOf(src)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), true
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	sf, ok := rv.Type().FieldByName(name)
	if !ok || !sf.IsExported() {
		return nil, false
	}
	fv, err := rv.FieldByIndexErr(sf.Index)
	if err != nil {
		// promoted through a nil embedded pointer
		return nil, false
	}
	return fv.Interface(), true
}

func protoField(msg protoreflect.Message, name string) (any, bool) {
	if msg == nil || !msg.IsValid() {
		return nil, false
	}
	fields := msg.Descriptor().Fields()
	fd := fields.ByName(protoreflect.Name(name))
	if fd == nil {
		fd = fields.ByJSONName(name)
	}
	if fd == nil {
		return nil, false
	}
	switch {
	case fd.IsList():
		lst := msg.Get(fd).List()
		out := make([]any, 0, lst.Len())
		for i := 0; i < lst.Len(); i++ {
			out = append(out, protoValue(fd, lst.Get(i)))
		}
		return out, true
	case fd.IsMap():
		mp := msg.Get(fd).Map()
		out := make(map[string]any, mp.Len())
		mp.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
			out[k.String()] = protoValue(fd.MapValue(), v)
			return true
		})
		return out, true
	case fd.Message() != nil && !msg.Has(fd):
		// unset singular message
		return nil, true
	}
	return protoValue(fd, msg.Get(fd)), true
}

// protoValue converts a protobuf field value to a plain Go value. Messages are
// kept as protoreflect.Message so attribute lookups can continue into them.
func protoValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return v.Bool()
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return int32(v.Int())
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int()
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return uint32(v.Uint())
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint()
	case protoreflect.FloatKind:
		return float32(v.Float())
	case protoreflect.DoubleKind:
		return v.Float()
	case protoreflect.StringKind:
		return v.String()
	case protoreflect.BytesKind:
		return v.Bytes()
	case protoreflect.EnumKind:
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return string(ev.Name())
		}
		return int32(v.Enum())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return v.Message()
	default:
		return nil
	}
}
