package introspection

import (
	"sort"

	"github.com/hanpama/qlient/internal/schema"
)

// Export converts a schema back into the introspection shape, as a server
// answering Query would. Types and directives are sorted by name; fields,
// arguments and values keep declaration order. Deprecated members are
// included.
func Export(s *schema.Schema) *schema.IntrospectionSchema {
	out := &schema.IntrospectionSchema{
		Description:      optional(s.Description),
		QueryType:        namedRef(s.QueryType),
		MutationType:     namedRef(s.MutationType),
		SubscriptionType: namedRef(s.SubscriptionType),
		Types:            []*schema.IntrospectionType{},
		Directives:       []*schema.IntrospectionDirective{},
	}
	for _, t := range sortedTypes(s) {
		out.Types = append(out.Types, exportType(s, t))
	}
	for _, d := range sortedDirectives(s) {
		out.Directives = append(out.Directives, &schema.IntrospectionDirective{
			Name:         d.Name,
			Description:  optional(d.Description),
			Locations:    append([]string{}, d.Locations...),
			Args:         exportInputValues(s, d.Arguments),
			IsRepeatable: d.IsRepeatable,
		})
	}
	return out
}

func sortedTypes(s *schema.Schema) []*schema.Type {
	out := make([]*schema.Type, 0, len(s.Types))
	for _, t := range s.Types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedDirectives(s *schema.Schema) []*schema.Directive {
	out := make([]*schema.Directive, 0, len(s.Directives))
	for _, d := range s.Directives {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func exportType(s *schema.Schema, t *schema.Type) *schema.IntrospectionType {
	it := &schema.IntrospectionType{
		Kind:           string(t.Kind),
		Name:           t.Name,
		Description:    optional(t.Description),
		SpecifiedByURL: t.SpecifiedByURL,
		IsOneOf:        t.OneOf,
	}
	switch t.Kind {
	case schema.TypeKindObject, schema.TypeKindInterface:
		it.Fields = []*schema.IntrospectionField{}
		for _, f := range t.Fields {
			it.Fields = append(it.Fields, &schema.IntrospectionField{
				Name:              f.Name,
				Description:       optional(f.Description),
				Args:              exportInputValues(s, f.Arguments),
				Type:              exportTypeRef(s, f.Type),
				IsDeprecated:      f.IsDeprecated,
				DeprecationReason: deprecationReason(f.IsDeprecated, f.DeprecationReason),
			})
		}
		it.Interfaces = namedTypeRefs(s, t.Interfaces)
		if t.Kind == schema.TypeKindInterface {
			it.PossibleTypes = namedTypeRefs(s, t.PossibleTypes)
		}
	case schema.TypeKindUnion:
		it.PossibleTypes = namedTypeRefs(s, t.PossibleTypes)
	case schema.TypeKindEnum:
		it.EnumValues = []*schema.IntrospectionEnumValue{}
		for _, v := range t.EnumValues {
			it.EnumValues = append(it.EnumValues, &schema.IntrospectionEnumValue{
				Name:              v.Name,
				Description:       optional(v.Description),
				IsDeprecated:      v.IsDeprecated,
				DeprecationReason: deprecationReason(v.IsDeprecated, v.DeprecationReason),
			})
		}
	case schema.TypeKindInputObject:
		it.InputFields = exportInputValues(s, t.InputFields)
	}
	return it
}

func exportInputValues(s *schema.Schema, in []*schema.InputValue) []*schema.IntrospectionInputValue {
	out := make([]*schema.IntrospectionInputValue, 0, len(in))
	for _, a := range in {
		out = append(out, &schema.IntrospectionInputValue{
			Name:              a.Name,
			Description:       optional(a.Description),
			Type:              exportTypeRef(s, a.Type),
			DefaultValue:      a.DefaultValue,
			IsDeprecated:      a.IsDeprecated,
			DeprecationReason: deprecationReason(a.IsDeprecated, a.DeprecationReason),
		})
	}
	return out
}

func exportTypeRef(s *schema.Schema, t *schema.TypeRef) *schema.IntrospectionTypeRef {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case schema.TypeRefKindNonNull:
		return &schema.IntrospectionTypeRef{Kind: "NON_NULL", OfType: exportTypeRef(s, t.OfType)}
	case schema.TypeRefKindList:
		return &schema.IntrospectionTypeRef{Kind: "LIST", OfType: exportTypeRef(s, t.OfType)}
	}
	return namedTypeRef(s, t.Named)
}

func namedTypeRefs(s *schema.Schema, names []string) []*schema.IntrospectionTypeRef {
	out := make([]*schema.IntrospectionTypeRef, 0, len(names))
	for _, name := range names {
		out = append(out, namedTypeRef(s, name))
	}
	return out
}

// namedTypeRef reports the kind of the referenced type, as introspection
// does for named references.
func namedTypeRef(s *schema.Schema, name string) *schema.IntrospectionTypeRef {
	ref := &schema.IntrospectionTypeRef{Name: &name}
	if t, ok := s.Types[name]; ok {
		ref.Kind = string(t.Kind)
	}
	return ref
}

func namedRef(name string) *schema.IntrospectionNamedRef {
	if name == "" {
		return nil
	}
	return &schema.IntrospectionNamedRef{Name: name}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deprecationReason(deprecated bool, reason string) *string {
	if !deprecated {
		return nil
	}
	return &reason
}
