// Package language parses GraphQL SDL documents used as field models.
package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseSchema parses one SDL source.
func ParseSchema(name, source string) (*SchemaDocument, error) {
	return ParseSchemas(&ast.Source{Name: name, Input: source})
}

// ParseSchemas parses several SDL sources into a single document.
func ParseSchemas(sources ...*Source) (*SchemaDocument, error) {
	doc, err := parser.ParseSchemas(sources...)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Definitions returns the type definitions of doc in declaration order, with
// the fields of every `extend type` appended to their base definition. The
// document itself is not modified.
func Definitions(doc *SchemaDocument) DefinitionList {
	out := make(DefinitionList, 0, len(doc.Definitions))
	byName := make(map[string]*Definition, len(doc.Definitions))
	for _, def := range doc.Definitions {
		cp := *def
		cp.Fields = append(FieldList(nil), def.Fields...)
		out = append(out, &cp)
		byName[def.Name] = &cp
	}
	for _, ext := range doc.Extensions {
		base, ok := byName[ext.Name]
		if !ok {
			continue
		}
		base.Fields = append(base.Fields, ext.Fields...)
	}
	return out
}
