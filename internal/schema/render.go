package schema

import (
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema.
// Deterministic ordering: type/directive names sorted lexicographically.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	renderSchemaDefinition(&b, s)

	// Collect and sort type names, excluding built-in scalars and
	// introspection types
	typeNames := make([]string, 0, len(s.Types))
	for name := range s.Types {
		if builtinScalars[name] || strings.HasPrefix(name, "__") {
			continue
		}
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		typ := s.Types[name]
		switch typ.Kind {
		case TypeKindScalar:
			renderScalar(&b, typ)
		case TypeKindEnum:
			renderEnum(&b, typ)
		case TypeKindInputObject:
			renderInputObject(&b, typ)
		case TypeKindObject:
			renderComposite(&b, "type", typ)
		case TypeKindInterface:
			renderComposite(&b, "interface", typ)
		case TypeKindUnion:
			renderUnion(&b, typ)
		}
	}

	// Render directives
	directiveNames := make([]string, 0, len(s.Directives))
	for name := range s.Directives {
		if builtinDirectives[name] {
			continue
		}
		directiveNames = append(directiveNames, name)
	}
	sort.Strings(directiveNames)
	for _, name := range directiveNames {
		renderDirective(&b, s.Directives[name])
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderSchemaDefinition writes a schema block only when the root types do
// not follow the default naming.
func renderSchemaDefinition(b *strings.Builder, s *Schema) {
	if s.QueryType == "Query" &&
		(s.MutationType == "" || s.MutationType == "Mutation") &&
		(s.SubscriptionType == "" || s.SubscriptionType == "Subscription") {
		return
	}
	b.WriteString("schema {\n")
	b.WriteString("  query: " + s.QueryType + "\n")
	if s.MutationType != "" {
		b.WriteString("  mutation: " + s.MutationType + "\n")
	}
	if s.SubscriptionType != "" {
		b.WriteString("  subscription: " + s.SubscriptionType + "\n")
	}
	b.WriteString("}\n\n")
}

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	escaped := strings.ReplaceAll(desc, `"""`, `\"""`)
	b.WriteString(indent + "\"\"\"\n")
	for _, line := range strings.Split(escaped, "\n") {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + "\"\"\"\n")
}

func renderDeprecated(b *strings.Builder, reason string) {
	b.WriteString(" @deprecated")
	if reason != "" && reason != "No longer supported" {
		b.WriteString("(reason: " + strconv.Quote(reason) + ")")
	}
}

func renderScalar(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("scalar " + typ.Name)
	if typ.SpecifiedByURL != nil {
		b.WriteString(" @specifiedBy(url: " + strconv.Quote(*typ.SpecifiedByURL) + ")")
	}
	b.WriteString("\n\n")
}

func renderEnum(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("enum " + typ.Name + " {\n")
	for _, val := range typ.EnumValues {
		renderDescription(b, val.Description, "  ")
		b.WriteString("  " + val.Name)
		if val.IsDeprecated {
			renderDeprecated(b, val.DeprecationReason)
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("input " + typ.Name)
	if typ.OneOf {
		b.WriteString(" @oneOf")
	}
	b.WriteString(" {\n")
	for _, field := range typ.InputFields {
		renderDescription(b, field.Description, "  ")
		b.WriteString("  " + field.Name + ": " + field.Type.String())
		if field.DefaultValue != nil {
			b.WriteString(" = " + *field.DefaultValue)
		}
		if field.IsDeprecated {
			renderDeprecated(b, field.DeprecationReason)
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderComposite(b *strings.Builder, keyword string, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString(keyword + " " + typ.Name)
	if len(typ.Interfaces) > 0 {
		b.WriteString(" implements " + strings.Join(typ.Interfaces, " & "))
	}
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		renderField(b, field)
	}
	b.WriteString("}\n\n")
}

func renderUnion(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("union " + typ.Name + " = " + strings.Join(typ.PossibleTypes, " | ") + "\n\n")
}

func renderField(b *strings.Builder, field *Field) {
	renderDescription(b, field.Description, "  ")
	b.WriteString("  " + field.Name)
	renderArguments(b, field.Arguments)
	b.WriteString(": " + field.Type.String())
	if field.IsDeprecated {
		renderDeprecated(b, field.DeprecationReason)
	}
	b.WriteString("\n")
}

func renderArguments(b *strings.Builder, args []*InputValue) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.Name + ": " + arg.Type.String())
		if arg.DefaultValue != nil {
			b.WriteString(" = " + *arg.DefaultValue)
		}
	}
	b.WriteString(")")
}

func renderDirective(b *strings.Builder, d *Directive) {
	renderDescription(b, d.Description, "")
	b.WriteString("directive @" + d.Name)
	renderArguments(b, d.Arguments)
	if d.IsRepeatable {
		b.WriteString(" repeatable")
	}
	b.WriteString(" on " + strings.Join(d.Locations, " | ") + "\n\n")
}

func renderTypeRef(ref *TypeRef) string {
	if ref == nil {
		return ""
	}
	switch ref.Kind {
	case TypeRefKindNamed:
		return ref.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(ref.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(ref.OfType) + "!"
	}
	return ""
}
