// Package language wraps the gqlparser entry points used to read selection
// text and to check synthesized documents against a schema.
package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ValidateQuery parses source and runs the standard validation rules against
// schema. The returned list is empty when the document is valid.
func ValidateQuery(schema *Schema, source string) (*QueryDocument, gqlerror.List) {
	return gqlparser.LoadQuery(schema, source)
}
