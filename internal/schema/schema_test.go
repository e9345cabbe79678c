package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/fieldplan/internal/eventbus"
	"github.com/hanpama/fieldplan/internal/events"
	"github.com/hanpama/fieldplan/internal/field"
	"github.com/hanpama/fieldplan/internal/lookup"
	"github.com/hanpama/fieldplan/internal/model"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID   int
	Name string
	Age  int
}

func TestPlanFollowsDeclarationOrder(t *testing.T) {
	s, err := New("Person").
		Field("Name", field.New()).
		Field("ID", field.New()).
		Build()
	require.NoError(t, err)
	require.Equal(t, "Person", s.Name())
	require.Equal(t, []string{"Name", "ID"}, s.Plan().Names())
	require.Equal(t, []string{"Name", "ID"}, s.FieldNames())
}

func TestInheritanceMerge(t *testing.T) {
	base := New("Base").
		Field("a", field.New().SetAttr("A")).
		Field("b", field.New()).
		MustBuild()
	mid := New("Mid").Extends(base).
		Field("c", field.New()).
		MustBuild()
	override := field.New().SetRequired(false)
	leaf := New("Leaf").Extends(mid).
		Field("a", override).
		Field("d", field.New()).
		MustBuild()

	require.Equal(t, []string{"a", "b", "c", "d"}, leaf.FieldNames())
	got, ok := leaf.Field("a")
	require.True(t, ok)
	require.Same(t, override, got)

	a := leaf.Plan().At(0)
	require.Equal(t, "a", a.Attr, "the redeclared descriptor replaces the inherited one")
	require.False(t, a.Required)

	// ancestors are untouched
	require.Equal(t, []string{"a", "b"}, base.FieldNames())
	require.Equal(t, "A", base.Plan().At(0).Attr)
	require.Same(t, mid, leaf.Parent())
}

func TestLookupStrategyInherited(t *testing.T) {
	base := New("Base").Lookup(lookup.Key).Field("a", field.New()).MustBuild()
	child := New("Child").Extends(base).Field("b", field.New()).MustBuild()

	src := map[string]any{"a": 1, "b": 2}
	for i := 0; i < child.Plan().Len(); i++ {
		a := child.Plan().At(i)
		v, found := a.Getter(src)
		require.True(t, found, a.Name)
		require.Equal(t, src[a.Name], v)
	}
}

func TestDefaultStrategyIsAttr(t *testing.T) {
	s := New("Person").Field("name", field.New().SetAttr("Name")).MustBuild()
	v, found := s.Plan().At(0).Getter(person{Name: "ann"})
	require.True(t, found)
	require.Equal(t, "ann", v)
}

func TestResolveAccessors(t *testing.T) {
	getter := func(src any) (any, bool) { return "custom", true }
	method := func(field.Owner, any) (any, error) { return "method", nil }
	s, err := New("S").
		Field("plain", field.New()).
		Field("renamed", field.New().SetLabel("out").SetAttr("src")).
		Field("custom", field.New().SetGetter(getter)).
		Field("computed", field.Method(method)).
		Field("callable", field.Str().SetCall(true).SetRequired(false)).
		Build()
	require.NoError(t, err)

	plan := s.Plan()
	require.Equal(t, []string{"plain", "out", "custom", "computed", "callable"}, plan.Names())

	require.Equal(t, "plain", plan.At(0).Attr)
	require.Equal(t, "src", plan.At(1).Attr)

	custom := plan.At(2)
	require.Empty(t, custom.Attr)
	v, _ := custom.Getter(nil)
	require.Equal(t, "custom", v)

	computed := plan.At(3)
	require.True(t, computed.PassSelf)
	require.Nil(t, computed.Getter)
	require.NotNil(t, computed.Method)

	callable := plan.At(4)
	require.True(t, callable.Call)
	require.False(t, callable.Required)
	require.NotNil(t, callable.Transform)
}

func TestImplicitFieldsExclude(t *testing.T) {
	s, err := New("Person").Model(person{}).Exclude("Age").Build()
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "Name"}, s.Plan().Names())
}

func TestImplicitFieldsAll(t *testing.T) {
	s, err := New("Person").Model(person{}).Fields(AllFields).Build()
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "Name", "Age"}, s.Plan().Names())
}

func TestImplicitFieldsInclude(t *testing.T) {
	s, err := New("Person").Model(person{}).Fields("Name", "Nickname").Build()
	require.NoError(t, err)
	require.Equal(t, []string{"Name", "Nickname"}, s.Plan().Names())
}

func TestImplicitFieldsFollowDirectFields(t *testing.T) {
	greeting := field.Method(func(field.Owner, any) (any, error) { return "hi", nil })
	name := field.Str()
	s, err := New("Person").
		Model(person{}).Fields(AllFields).
		Field("Greeting", greeting).
		Field("Name", name).
		Build()
	require.NoError(t, err)
	require.Equal(t, []string{"Greeting", "Name", "ID", "Age"}, s.FieldNames())

	got, _ := s.Field("Name")
	require.Same(t, name, got, "implicit fields never replace direct declarations")
}

func TestImplicitFieldsOverrideInherited(t *testing.T) {
	inherited := field.New().SetAttr("Other")
	base := New("Base").Field("Name", inherited).MustBuild()
	child := New("Child").Extends(base).Model(person{}).Fields("Name").MustBuild()

	got, _ := child.Field("Name")
	require.NotSame(t, inherited, got)
	require.Equal(t, "Name", child.Plan().At(0).Attr)
}

func TestModelConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		b    *Builder
		want error
	}{
		{"fields without model", New("S").Fields("a"), ErrModelRequired},
		{"exclude without model", New("S").Exclude("a"), ErrModelRequired},
		{"model without selection", New("S").Model(person{}), ErrFieldsOrExclude},
		{"fields and exclude", New("S").Model(person{}).Fields("ID").Exclude("Age"), ErrFieldsAndExclude},
		{"unsupported model", New("S").Model(42).Fields(AllFields), model.ErrUnsupportedModel},
		{"empty field name", New("S").Field("", field.New()), ErrInvalidField},
		{"nil field", New("S").Field("a", nil), ErrInvalidField},
		{"getter and method", New("S").Field("a", field.New().
			SetGetter(func(any) (any, bool) { return nil, false }).
			SetMethod(func(field.Owner, any) (any, error) { return nil, nil })), ErrInvalidField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := tc.b.Build()
			require.Nil(t, s)
			require.ErrorIs(t, err, tc.want)

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			require.Equal(t, "S", ce.Schema)
		})
	}
}

func TestConfigErrorCollectsAllViolations(t *testing.T) {
	_, err := New("S").
		Lookup(nil).
		Field("", field.New()).
		Model(person{}).
		Build()
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	require.Len(t, ce.Violations, 3)
	require.ErrorIs(t, err, ErrInvalidField)
	require.ErrorIs(t, err, ErrFieldsOrExclude)
	require.Contains(t, err.Error(), "lookup strategy must not be nil")
}

func TestMustBuildPanics(t *testing.T) {
	require.Panics(t, func() { New("S").Fields("a").MustBuild() })
}

func TestCustomAdapters(t *testing.T) {
	reg := model.NewRegistry(staticAdapter{"x", "y"})
	s, err := New("S").Model("anything").Exclude("y").Adapters(reg).Build()
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, s.Plan().Names())
}

type staticAdapter []string

func (staticAdapter) Name() string { return "static" }

func (staticAdapter) CanHandle(any) bool { return true }

func (a staticAdapter) Fields(any) ([]string, error) { return a, nil }

func TestCompiledEvent(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var got []events.SchemaCompiled
	defer eventbus.Subscribe(func(_ context.Context, e events.SchemaCompiled) {
		got = append(got, e)
	})()

	New("A").Field("x", field.New()).MustBuild()
	_, err := New("B").Fields("x").Build()
	require.Error(t, err)

	require.Len(t, got, 1, "failed builds publish nothing")
	if diff := cmp.Diff([]string{"x"}, got[0].Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "A", got[0].Schema)
}
