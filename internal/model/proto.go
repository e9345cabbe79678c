package model

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ProtoAdapter lists the fields of protobuf messages. It accepts message
// descriptors, reflective messages, and generated message values.
type ProtoAdapter struct{}

func (ProtoAdapter) Name() string { return "protobuf" }

func (ProtoAdapter) CanHandle(model any) bool {
	return protoDescriptor(model) != nil
}

// Fields returns proto field names in declaration order.
func (ProtoAdapter) Fields(model any) ([]string, error) {
	md := protoDescriptor(model)
	fields := md.Fields()
	names := make([]string, 0, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		names = append(names, string(fields.Get(i).Name()))
	}
	return names, nil
}

func protoDescriptor(model any) protoreflect.MessageDescriptor {
	switch m := model.(type) {
	case protoreflect.MessageDescriptor:
		return m
	case protoreflect.Message:
		return m.Descriptor()
	case protoreflect.ProtoMessage:
		return m.ProtoReflect().Descriptor()
	}
	return nil
}
