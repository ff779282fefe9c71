package language

import "github.com/vektah/gqlparser/v2/ast"

type (
	QueryDocument  = ast.QueryDocument
	SelectionSet   = ast.SelectionSet
	Selection      = ast.Selection
	Field          = ast.Field
	InlineFragment = ast.InlineFragment
	FragmentSpread = ast.FragmentSpread
	DirectiveList  = ast.DirectiveList
	ArgumentList   = ast.ArgumentList
	Value          = ast.Value
	Schema         = ast.Schema
)

type ValueKind = ast.ValueKind

const (
	Variable     ValueKind = ast.Variable
	IntValue     ValueKind = ast.IntValue
	FloatValue   ValueKind = ast.FloatValue
	StringValue  ValueKind = ast.StringValue
	BlockValue   ValueKind = ast.BlockValue
	BooleanValue ValueKind = ast.BooleanValue
	NullValue    ValueKind = ast.NullValue
	EnumValue    ValueKind = ast.EnumValue
	ListValue    ValueKind = ast.ListValue
	ObjectValue  ValueKind = ast.ObjectValue
)
