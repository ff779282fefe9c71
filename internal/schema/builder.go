package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

func NewSchema(description string) *Schema {
	return &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }
func (s *Schema) AddType(t *Type) *Schema                 { s.Types[t.Name] = t; return s }
func (s *Schema) AddDirective(d *Directive) *Schema       { s.Directives[d.Name] = d; return s }

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type        { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}
func (t *Type) AddEnumValue(v *EnumValue) *Type   { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type         { t.OneOf = oneOf; return t }

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) AddArgument(a *InputValue) *Field { f.Arguments = append(f.Arguments, a); return f }
func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(literal *string) *InputValue { v.DefaultValue = literal; return v }
func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (v *EnumValue) Deprecate(reason string) *EnumValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive { d.IsRepeatable = r; return d }
func (d *Directive) AddArgument(a *InputValue) *Directive {
	d.Arguments = append(d.Arguments, a)
	return d
}

// BuildFromSDL parses and validates an SDL document and returns the
// corresponding Schema. Introspection types and meta fields are left out.
func BuildFromSDL(sdl string) (*Schema, error) {
	as, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return nil, &SchemaError{Reason: err.Error()}
	}
	return BuildFromAST(as)
}

// BuildFromAST converts a gqlparser schema into a Schema.
func BuildFromAST(as *ast.Schema) (*Schema, error) {
	s := NewSchema(as.Description)
	if as.Query == nil {
		return nil, schemaErrorf("missing queryType")
	}
	s.SetQueryType(as.Query.Name)
	if as.Mutation != nil {
		s.SetMutationType(as.Mutation.Name)
	}
	if as.Subscription != nil {
		s.SetSubscriptionType(as.Subscription.Name)
	}
	for name, def := range as.Types {
		if strings.HasPrefix(name, "__") {
			continue
		}
		t := buildASTDefinition(def)
		if def.Kind == ast.Interface {
			var impls []string
			for _, impl := range as.PossibleTypes[name] {
				if impl.Kind == ast.Object {
					impls = append(impls, impl.Name)
				}
			}
			sort.Strings(impls)
			for _, impl := range impls {
				t.AddPossibleType(impl)
			}
		}
		s.AddType(t)
	}
	for name, dir := range as.Directives {
		d := NewDirective(name, dir.Description).SetRepeatable(dir.IsRepeatable)
		for _, loc := range dir.Locations {
			d.Locations = append(d.Locations, string(loc))
		}
		for _, arg := range dir.Arguments {
			d.AddArgument(buildASTArgument(arg))
		}
		s.AddDirective(d)
	}
	if err := s.checkReferences(); err != nil {
		return nil, err
	}
	s.index()
	return s, nil
}

func buildASTDefinition(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKind(def.Kind), def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, name := range def.Types {
		t.AddPossibleType(name)
	}
	switch def.Kind {
	case ast.Object, ast.Interface:
		for _, fd := range def.Fields {
			if strings.HasPrefix(fd.Name, "__") {
				continue
			}
			f := NewField(fd.Name, fd.Description, buildASTType(fd.Type))
			if reason, ok := deprecation(fd.Directives); ok {
				f.Deprecate(reason)
			}
			for _, arg := range fd.Arguments {
				f.AddArgument(buildASTArgument(arg))
			}
			t.AddField(f)
		}
	case ast.InputObject:
		t.SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, fd := range def.Fields {
			in := NewInputValue(fd.Name, fd.Description, buildASTType(fd.Type)).SetDefault(literal(fd.DefaultValue))
			if reason, ok := deprecation(fd.Directives); ok {
				in.Deprecate(reason)
			}
			t.AddInputField(in)
		}
	case ast.Enum:
		for _, ev := range def.EnumValues {
			v := NewEnumValue(ev.Name, ev.Description)
			if reason, ok := deprecation(ev.Directives); ok {
				v.Deprecate(reason)
			}
			t.AddEnumValue(v)
		}
	}
	return t
}

func buildASTArgument(arg *ast.ArgumentDefinition) *InputValue {
	in := NewInputValue(arg.Name, arg.Description, buildASTType(arg.Type)).SetDefault(literal(arg.DefaultValue))
	if reason, ok := deprecation(arg.Directives); ok {
		in.Deprecate(reason)
	}
	return in
}

func buildASTType(t *ast.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildASTType(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

func literal(v *ast.Value) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

// AST loads the schema into gqlparser so documents can be validated against
// it. The schema is rendered to SDL first.
func (s *Schema) AST() (*ast.Schema, error) {
	as, err := gqlparser.LoadSchema(&ast.Source{Name: "introspected.graphql", Input: Render(s)})
	if err != nil {
		return nil, fmt.Errorf("load rendered schema: %w", err)
	}
	return as, nil
}
