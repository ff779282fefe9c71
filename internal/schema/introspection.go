package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// IntrospectionSchema mirrors the `__schema` object of a standard
// introspection result.
type IntrospectionSchema struct {
	Description      *string                   `json:"description"`
	QueryType        *IntrospectionNamedRef    `json:"queryType"`
	MutationType     *IntrospectionNamedRef    `json:"mutationType"`
	SubscriptionType *IntrospectionNamedRef    `json:"subscriptionType"`
	Types            []*IntrospectionType      `json:"types"`
	Directives       []*IntrospectionDirective `json:"directives"`
}

type IntrospectionNamedRef struct {
	Name string `json:"name"`
}

type IntrospectionType struct {
	Kind           string                     `json:"kind"`
	Name           string                     `json:"name"`
	Description    *string                    `json:"description"`
	SpecifiedByURL *string                    `json:"specifiedByURL"`
	IsOneOf        bool                       `json:"isOneOf"`
	Fields         []*IntrospectionField      `json:"fields"`
	InputFields    []*IntrospectionInputValue `json:"inputFields"`
	Interfaces     []*IntrospectionTypeRef    `json:"interfaces"`
	EnumValues     []*IntrospectionEnumValue  `json:"enumValues"`
	PossibleTypes  []*IntrospectionTypeRef    `json:"possibleTypes"`
}

type IntrospectionField struct {
	Name              string                     `json:"name"`
	Description       *string                    `json:"description"`
	Args              []*IntrospectionInputValue `json:"args"`
	Type              *IntrospectionTypeRef      `json:"type"`
	IsDeprecated      bool                       `json:"isDeprecated"`
	DeprecationReason *string                    `json:"deprecationReason"`
}

type IntrospectionInputValue struct {
	Name              string                `json:"name"`
	Description       *string               `json:"description"`
	Type              *IntrospectionTypeRef `json:"type"`
	DefaultValue      *string               `json:"defaultValue"`
	IsDeprecated      bool                  `json:"isDeprecated"`
	DeprecationReason *string               `json:"deprecationReason"`
}

type IntrospectionEnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type IntrospectionTypeRef struct {
	Kind   string                `json:"kind"`
	Name   *string               `json:"name"`
	OfType *IntrospectionTypeRef `json:"ofType"`
}

type IntrospectionDirective struct {
	Name         string                     `json:"name"`
	Description  *string                    `json:"description"`
	Locations    []string                   `json:"locations"`
	Args         []*IntrospectionInputValue `json:"args"`
	IsRepeatable bool                       `json:"isRepeatable"`
}

// FromIntrospection decodes an introspection payload and builds the schema.
// The payload may be a full response ({"data":{"__schema":...}}), the data
// object ({"__schema":...}) or the bare schema object.
func FromIntrospection(payload []byte) (*Schema, error) {
	raw, err := unwrapIntrospection(payload)
	if err != nil {
		return nil, err
	}
	var is IntrospectionSchema
	if err := json.Unmarshal(raw, &is); err != nil {
		return nil, schemaErrorf("decode __schema: %v", err)
	}
	return BuildFromIntrospection(&is)
}

func unwrapIntrospection(payload []byte) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, schemaErrorf("decode introspection payload: %v", err)
	}
	if obj == nil {
		return nil, schemaErrorf("introspection payload is null")
	}
	if data, ok := obj["data"]; ok {
		return unwrapIntrospection(data)
	}
	if s, ok := obj["__schema"]; ok {
		return s, nil
	}
	if _, ok := obj["types"]; ok {
		return payload, nil
	}
	return nil, schemaErrorf("missing __schema")
}

// BuildFromIntrospection converts a decoded introspection result into a
// Schema. Every type reference must name a declared type.
func BuildFromIntrospection(is *IntrospectionSchema) (*Schema, error) {
	if is == nil {
		return nil, schemaErrorf("missing __schema")
	}
	if len(is.Types) == 0 {
		return nil, schemaErrorf("no types found")
	}
	if is.QueryType == nil || is.QueryType.Name == "" {
		return nil, schemaErrorf("missing queryType")
	}

	s := NewSchema(deref(is.Description))
	s.SetQueryType(is.QueryType.Name)
	if is.MutationType != nil {
		s.SetMutationType(is.MutationType.Name)
	}
	if is.SubscriptionType != nil {
		s.SetSubscriptionType(is.SubscriptionType.Name)
	}

	for _, it := range is.Types {
		if it == nil {
			continue
		}
		if it.Name == "" {
			return nil, schemaErrorf("type of kind %s has no name", it.Kind)
		}
		if _, dup := s.Types[it.Name]; dup {
			return nil, schemaErrorf("duplicate type %q", it.Name)
		}
		t, err := buildIntrospectionType(it)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for _, id := range is.Directives {
		if id == nil {
			continue
		}
		d := NewDirective(id.Name, deref(id.Description)).SetRepeatable(id.IsRepeatable)
		d.Locations = append(d.Locations, id.Locations...)
		for _, arg := range id.Args {
			in, err := buildIntrospectionInputValue(arg)
			if err != nil {
				return nil, fmt.Errorf("directive @%s: %w", id.Name, err)
			}
			d.AddArgument(in)
		}
		s.AddDirective(d)
	}

	if err := s.checkReferences(); err != nil {
		return nil, err
	}
	s.index()
	return s, nil
}

func buildIntrospectionType(it *IntrospectionType) (*Type, error) {
	kind := TypeKind(it.Kind)
	switch kind {
	case TypeKindScalar, TypeKindObject, TypeKindInterface, TypeKindUnion, TypeKindEnum, TypeKindInputObject:
	default:
		return nil, schemaErrorf("type %q has invalid kind %q", it.Name, it.Kind)
	}
	t := NewType(it.Name, kind, deref(it.Description)).SetOneOf(it.IsOneOf)
	t.SpecifiedByURL = it.SpecifiedByURL
	for _, f := range it.Fields {
		if f == nil {
			return nil, schemaErrorf("type %q lists a null field", it.Name)
		}
		ref, err := buildIntrospectionTypeRef(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", it.Name, f.Name, err)
		}
		field := NewField(f.Name, deref(f.Description), ref)
		if f.IsDeprecated {
			field.Deprecate(deref(f.DeprecationReason))
		}
		for _, a := range f.Args {
			in, err := buildIntrospectionInputValue(a)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", it.Name, f.Name, err)
			}
			field.AddArgument(in)
		}
		t.AddField(field)
	}
	for _, f := range it.InputFields {
		in, err := buildIntrospectionInputValue(f)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", it.Name, err)
		}
		t.AddInputField(in)
	}
	for _, ref := range it.Interfaces {
		if ref == nil || ref.Name == nil {
			return nil, schemaErrorf("type %q lists an unnamed interface", it.Name)
		}
		t.AddInterface(*ref.Name)
	}
	for _, ref := range it.PossibleTypes {
		if ref == nil || ref.Name == nil {
			return nil, schemaErrorf("type %q lists an unnamed possible type", it.Name)
		}
		t.AddPossibleType(*ref.Name)
	}
	for _, ev := range it.EnumValues {
		if ev == nil {
			return nil, schemaErrorf("enum %q lists a null value", it.Name)
		}
		v := NewEnumValue(ev.Name, deref(ev.Description))
		if ev.IsDeprecated {
			v.Deprecate(deref(ev.DeprecationReason))
		}
		t.AddEnumValue(v)
	}
	return t, nil
}

func buildIntrospectionInputValue(v *IntrospectionInputValue) (*InputValue, error) {
	if v == nil {
		return nil, schemaErrorf("null input value")
	}
	ref, err := buildIntrospectionTypeRef(v.Type)
	if err != nil {
		return nil, fmt.Errorf("input value %q: %w", v.Name, err)
	}
	in := NewInputValue(v.Name, deref(v.Description), ref).SetDefault(v.DefaultValue)
	if v.IsDeprecated {
		in.Deprecate(deref(v.DeprecationReason))
	}
	return in, nil
}

func buildIntrospectionTypeRef(r *IntrospectionTypeRef) (*TypeRef, error) {
	if r == nil {
		return nil, schemaErrorf("missing type reference")
	}
	switch r.Kind {
	case string(TypeRefKindNonNull), string(TypeRefKindList):
		if r.OfType == nil {
			return nil, schemaErrorf("%s type reference without ofType", r.Kind)
		}
		inner, err := buildIntrospectionTypeRef(r.OfType)
		if err != nil {
			return nil, err
		}
		if r.Kind == string(TypeRefKindList) {
			return ListType(inner), nil
		}
		return NonNullType(inner), nil
	default:
		if r.Name == nil || *r.Name == "" {
			return nil, schemaErrorf("named type reference of kind %s without name", r.Kind)
		}
		return NamedType(*r.Name), nil
	}
}

// checkReferences rejects dangling type references.
func (s *Schema) checkReferences() error {
	for _, root := range []string{s.QueryType, s.MutationType, s.SubscriptionType} {
		if root == "" {
			continue
		}
		if _, ok := s.Types[root]; !ok {
			return schemaErrorf("root type %q is not declared", root)
		}
	}
	check := func(where string, ref *TypeRef) error {
		name := ref.GetNamedType()
		if _, ok := s.Types[name]; !ok {
			return schemaErrorf("%s references undeclared type %q", where, name)
		}
		return nil
	}
	for _, name := range sortedKeys(s.Types) {
		t := s.Types[name]
		for _, f := range t.Fields {
			if err := check(t.Name+"."+f.Name, f.Type); err != nil {
				return err
			}
			for _, a := range f.Arguments {
				if err := check(t.Name+"."+f.Name+"("+a.Name+")", a.Type); err != nil {
					return err
				}
			}
		}
		for _, f := range t.InputFields {
			if err := check(t.Name+"."+f.Name, f.Type); err != nil {
				return err
			}
		}
		for _, name := range t.Interfaces {
			if err := check(t.Name+" interfaces", NamedType(name)); err != nil {
				return err
			}
		}
		for _, name := range t.PossibleTypes {
			if err := check(t.Name+" possible types", NamedType(name)); err != nil {
				return err
			}
		}
	}
	for _, name := range sortedKeys(s.Directives) {
		d := s.Directives[name]
		for _, a := range d.Arguments {
			if err := check("@"+d.Name+"("+a.Name+")", a.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
