package schema

import "fmt"

// SchemaError reports a malformed or incomplete introspection payload.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string { return "schema: " + e.Reason }

func schemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// UnknownTypeError is returned when a type name is not part of the schema.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("schema: unknown type %q", e.Name)
}

// UnknownOperationError is returned when the schema has no root type for an
// operation kind.
type UnknownOperationError struct {
	Operation string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("schema: no %s root type", e.Operation)
}

// UnknownFieldError names a field missing from its enclosing type.
type UnknownFieldError struct {
	Type  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("schema: type %q has no field %q", e.Type, e.Field)
}

// UnknownArgumentError names an argument that the field (or directive) does
// not declare.
type UnknownArgumentError struct {
	Type      string
	Field     string
	Directive string
	Argument  string
}

func (e *UnknownArgumentError) Error() string {
	if e.Directive != "" {
		return fmt.Sprintf("schema: directive @%s has no argument %q", e.Directive, e.Argument)
	}
	return fmt.Sprintf("schema: field %s.%s has no argument %q", e.Type, e.Field, e.Argument)
}

// UnknownDirectiveError is returned when a directive is not declared by the
// schema.
type UnknownDirectiveError struct {
	Name string
}

func (e *UnknownDirectiveError) Error() string {
	return fmt.Sprintf("schema: unknown directive @%s", e.Name)
}
