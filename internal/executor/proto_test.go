package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/fieldplan/internal/field"
	"github.com/hanpama/fieldplan/internal/schema"
	"github.com/jhump/protoreflect/v2/protobuilder"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

func buildOrderDescriptor(t *testing.T) protoreflect.MessageDescriptor {
	t.Helper()
	line := protobuilder.NewMessage("Line").
		AddField(protobuilder.NewField("sku", protobuilder.FieldTypeScalar(protoreflect.StringKind)).SetNumber(1)).
		AddField(protobuilder.NewField("qty", protobuilder.FieldTypeScalar(protoreflect.Int32Kind)).SetNumber(2))
	order := protobuilder.NewMessage("Order").
		AddField(protobuilder.NewField("order_id", protobuilder.FieldTypeScalar(protoreflect.StringKind)).SetNumber(1)).
		AddField(protobuilder.NewField("note", protobuilder.FieldTypeScalar(protoreflect.StringKind)).SetNumber(2)).
		AddField(protobuilder.NewField("lines", protobuilder.FieldTypeMessage(line)).SetNumber(3).SetRepeated())
	fd, err := protobuilder.NewFile("order.proto").
		SetPackageName("test.executor").
		SetSyntax(protoreflect.Proto3).
		AddMessage(line).
		AddMessage(order).
		Build()
	require.NoError(t, err)
	return fd.Messages().ByName("Order")
}

func TestProtoMessageSource(t *testing.T) {
	md := buildOrderDescriptor(t)
	lineMD := md.Fields().ByName("lines").Message()

	msg := dynamicpb.NewMessage(md)
	msg.Set(md.Fields().ByName("order_id"), protoreflect.ValueOfString("o-1"))
	lines := msg.Mutable(md.Fields().ByName("lines")).List()
	for i, sku := range []string{"a", "b"} {
		l := dynamicpb.NewMessage(lineMD)
		l.Set(lineMD.Fields().ByName("sku"), protoreflect.ValueOfString(sku))
		l.Set(lineMD.Fields().ByName("qty"), protoreflect.ValueOfInt32(int32(i+1)))
		lines.Append(protoreflect.ValueOfMessage(l))
	}

	lineSchema := schema.New("Line").Model(lineMD).Fields(schema.AllFields).MustBuild()
	orderSchema := schema.New("Order").
		Model(md).Exclude("note").
		Field("lines", Nested(lineSchema, true)).
		Field("first_sku", field.New().SetAttr("lines").SetTransform(field.TransformFunc(
			func(_ context.Context, v any) (any, error) {
				return v.([]any)[0].(protoreflect.Message).Get(lineMD.Fields().ByName("sku")).String(), nil
			}))).
		MustBuild()
	require.Equal(t, []string{"lines", "first_sku", "order_id"}, orderSchema.Plan().Names())

	got, err := Execute(context.Background(), orderSchema, msg, false)
	require.NoError(t, err)
	want := map[string]any{
		"order_id":  "o-1",
		"first_sku": "a",
		"lines": []map[string]any{
			{"sku": "a", "qty": int32(1)},
			{"sku": "b", "qty": int32(2)},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}
