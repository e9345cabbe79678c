package field

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIsRequired(t *testing.T) {
	f := New()
	require.True(t, f.Required)
	require.False(t, f.NeedsOwner())
	require.Nil(t, f.Transform)
}

func TestSetters(t *testing.T) {
	f := New().SetAttr("full_name").SetLabel("name").SetCall(true).SetRequired(false)
	require.Equal(t, &Field{Attr: "full_name", Label: "name", Call: true}, f)
}

func TestMethodNeedsOwner(t *testing.T) {
	f := Method(func(Owner, any) (any, error) { return 1, nil })
	require.True(t, f.NeedsOwner())
	require.True(t, f.Required)
}

type named string

func (n named) String() string { return "named:" + string(n) }

func TestScalarTransforms(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		f    *Field
		in   any
		want any
	}{
		{"str from string", Str(), "a", "a"},
		{"str from int", Str(), 42, "42"},
		{"str from bytes", Str(), []byte("b"), "b"},
		{"str from stringer", Str(), named("x"), "named:x"},
		{"str from json number", Str(), json.Number("7"), "7"},
		{"str from nil", Str(), nil, ""},
		{"int from int32", Int(), int32(5), int64(5)},
		{"int from uint", Int(), uint(5), int64(5)},
		{"int from float", Int(), 3.9, int64(3)},
		{"int from string", Int(), " 12 ", int64(12)},
		{"int from json number", Int(), json.Number("12"), int64(12)},
		{"int from json float", Int(), json.Number("12.5"), int64(12)},
		{"int from bool", Int(), true, int64(1)},
		{"float from int", Float(), 2, float64(2)},
		{"float from float32", Float(), float32(0.5), float64(0.5)},
		{"float from string", Float(), "1.25", 1.25},
		{"float from json number", Float(), json.Number("1.5"), 1.5},
		{"bool from bool", Bool(), false, false},
		{"bool from zero", Bool(), 0, false},
		{"bool from number", Bool(), 3, true},
		{"bool from empty string", Bool(), "", false},
		{"bool from string", Bool(), "no", true},
		{"bool from empty slice", Bool(), []int{}, false},
		{"bool from nil", Bool(), nil, false},
		{"bool from struct", Bool(), struct{}{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.f.Transform.ToValue(ctx, tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestScalarTransformErrors(t *testing.T) {
	ctx := context.Background()
	for name, tc := range map[string]struct {
		f  *Field
		in any
	}{
		"int from word":       {Int(), "abc"},
		"int from struct":     {Int(), struct{}{}},
		"int from huge uint":  {Int(), uint64(1 << 63)},
		"float from word":     {Float(), "abc"},
		"float from map":      {Float(), map[string]any{}},
		"bool from bad count": {Bool(), json.Number("x")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tc.f.Transform.ToValue(ctx, tc.in)
			require.Error(t, err)
		})
	}
}
