package schema

// Schema represents a GraphQL schema as seen by a client.
// It is built once and treated as read-only afterwards, so a single value can
// be shared by any number of goroutines.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.lookupRoot(s.QueryType) }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.lookupRoot(s.MutationType) }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.lookupRoot(s.SubscriptionType) }

func (s *Schema) lookupRoot(name string) *Type {
	if name == "" {
		return nil
	}
	return s.Types[name]
}

// TypeByName returns the named type or an *UnknownTypeError.
func (s *Schema) TypeByName(name string) (*Type, error) {
	if t, ok := s.Types[name]; ok {
		return t, nil
	}
	return nil, &UnknownTypeError{Name: name}
}

// RootType returns the root type for the operation kind ("query",
// "mutation" or "subscription"). It fails with *UnknownOperationError when the
// schema declares no such root.
func (s *Schema) RootType(operation string) (*Type, error) {
	var t *Type
	switch operation {
	case "query":
		t = s.GetQueryType()
	case "mutation":
		t = s.GetMutationType()
	case "subscription":
		t = s.GetSubscriptionType()
	}
	if t == nil {
		return nil, &UnknownOperationError{Operation: operation}
	}
	return t, nil
}

// DirectiveByName returns the named directive or an *UnknownDirectiveError.
func (s *Schema) DirectiveByName(name string) (*Directive, error) {
	if d, ok := s.Directives[name]; ok {
		return d, nil
	}
	return nil, &UnknownDirectiveError{Name: name}
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes  []string      // For INTERFACE and UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	SpecifiedByURL *string
	OneOf          bool

	fieldIndex map[string]*Field
}

// FieldByName looks up a field declared on t.
func (t *Type) FieldByName(name string) (*Field, error) {
	if t.fieldIndex != nil {
		if f, ok := t.fieldIndex[name]; ok {
			return f, nil
		}
		return nil, &UnknownFieldError{Type: t.Name, Field: name}
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, &UnknownFieldError{Type: t.Name, Field: name}
}

// IsLeaf reports whether values of t are serialized without a selection set.
func (t *Type) IsLeaf() bool { return t.Kind == TypeKindScalar || t.Kind == TypeKindEnum }

// IsComposite reports whether t requires a selection set.
func (t *Type) IsComposite() bool {
	return t.Kind == TypeKindObject || t.Kind == TypeKindInterface || t.Kind == TypeKindUnion
}

// Implements reports whether t lists iface among its interfaces.
func (t *Type) Implements(iface string) bool {
	for _, name := range t.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

// HasPossibleType reports whether name is a member of the union or an
// implementation of the interface t.
func (t *Type) HasPossibleType(name string) bool {
	for _, p := range t.PossibleTypes {
		if p == name {
			return true
		}
	}
	return false
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	IsDeprecated      bool
	DeprecationReason string
}

// ArgumentByName looks up an argument declared on f. parent names the
// enclosing type for error reporting.
func (f *Field) ArgumentByName(parent, name string) (*InputValue, error) {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, &UnknownArgumentError{Type: parent, Field: f.Name, Argument: name}
}

// HasRequiredArguments reports whether f declares a non-null argument without
// a default value.
func (f *Field) HasRequiredArguments() bool {
	for _, a := range f.Arguments {
		if a.Type.IsNonNull() && a.DefaultValue == nil {
			return true
		}
	}
	return false
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

// String renders the reference in GraphQL notation, e.g. "[ID!]!".
func (t *TypeRef) String() string { return renderTypeRef(t) }

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// InputValue is an argument or an input object field.
// DefaultValue holds the GraphQL literal exactly as introspection reports it.
type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      *string
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

// ArgumentByName looks up an argument declared on the directive.
func (d *Directive) ArgumentByName(name string) (*InputValue, error) {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, &UnknownArgumentError{Directive: d.Name, Argument: name}
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }

// index builds per-type field lookup tables. Called once by the builders
// before the schema is handed out.
func (s *Schema) index() {
	for _, t := range s.Types {
		if len(t.Fields) == 0 {
			continue
		}
		t.fieldIndex = make(map[string]*Field, len(t.Fields))
		for _, f := range t.Fields {
			t.fieldIndex[f.Name] = f
		}
	}
}
