// Package operation holds the immutable value types produced by the
// synthesis engine and renders them as GraphQL document text.
package operation

import (
	"fmt"
	"strings"
)

// Kind is the GraphQL operation type.
type Kind string

const (
	Query        Kind = "query"
	Mutation     Kind = "mutation"
	Subscription Kind = "subscription"
)

// ParseKind converts a case-sensitive operation keyword into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Query, Mutation, Subscription:
		return k, nil
	}
	return "", fmt.Errorf("operation: unknown kind %q", s)
}

// Variable binds a generated variable name to its declared GraphQL type and
// the caller-supplied value.
type Variable struct {
	Name  string
	Type  string
	Value any
}

// Argument passes a variable to a field or directive argument.
type Argument struct {
	Name     string
	Variable string
}

type Directive struct {
	Name      string
	Arguments []Argument
}

// Selection is a Field or an InlineFragment.
type Selection interface {
	write(b *strings.Builder)
}

// Field is one requested field. Selections is non-empty exactly when the
// field's type is composite.
type Field struct {
	Alias      string
	Name       string
	Arguments  []Argument
	Directives []Directive
	Selections []Selection
}

// ResponseKey is the key the field's value appears under in the response.
func (f *Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

type InlineFragment struct {
	TypeCondition string
	Directives    []Directive
	Selections    []Selection
}

// Document is a single GraphQL operation. It is immutable once built; the
// query text is rendered at construction.
type Document struct {
	kind      Kind
	name      string
	variables []Variable
	root      *Field
	text      string
}

// NewDocument assembles a document from its parts. The slices are copied.
func NewDocument(kind Kind, name string, variables []Variable, root *Field) *Document {
	d := &Document{
		kind:      kind,
		name:      name,
		variables: append([]Variable(nil), variables...),
		root:      root,
	}
	d.text = d.render()
	return d
}

func (d *Document) Kind() Kind     { return d.kind }
func (d *Document) Name() string   { return d.name }
func (d *Document) Root() *Field   { return d.root }
func (d *Document) Query() string  { return d.text }
func (d *Document) String() string { return d.text }

// Variables returns the variable bindings in declaration order.
func (d *Document) Variables() []Variable {
	return append([]Variable(nil), d.variables...)
}

// VariableValues returns the variables payload sent next to the query text.
func (d *Document) VariableValues() map[string]any {
	out := make(map[string]any, len(d.variables))
	for _, v := range d.variables {
		out[v.Name] = v.Value
	}
	return out
}
