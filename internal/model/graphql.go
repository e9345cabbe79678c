package model

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// GraphQLAdapter lists the fields of GraphQL SDL type definitions.
type GraphQLAdapter struct{}

func (GraphQLAdapter) Name() string { return "graphql" }

func (GraphQLAdapter) CanHandle(model any) bool {
	def, ok := model.(*ast.Definition)
	return ok && def != nil
}

// Fields returns the definition's field names in declaration order. Reserved
// "__" fields are skipped. Only object, interface, and input object types
// have fields.
func (GraphQLAdapter) Fields(model any) ([]string, error) {
	def := model.(*ast.Definition)
	switch def.Kind {
	case ast.Object, ast.Interface, ast.InputObject:
	default:
		return nil, fmt.Errorf("%s type %q has no fields", strings.ToLower(string(def.Kind)), def.Name)
	}
	names := make([]string, 0, len(def.Fields))
	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		names = append(names, f.Name)
	}
	return names, nil
}
