package selection

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/hanpama/qlient/internal/operation"
	"github.com/hanpama/qlient/internal/schema"
)

const typenameField = "__typename"

var nameRe = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// IsName reports whether s is a valid GraphQL Name.
func IsName(s string) bool { return nameRe.MatchString(s) }

// Builder expands specifications into operation selections. It only reads
// the schema and may be shared between goroutines.
type Builder struct {
	schema *schema.Schema
}

func NewBuilder(s *schema.Schema) *Builder {
	return &Builder{schema: s}
}

func (b *Builder) Schema() *schema.Schema { return b.schema }

// Root builds the root field of an operation. Root arguments keep their
// own names as variables and nested variable names do not include the root
// field's response key.
func (b *Builder) Root(parent *schema.Type, spec Field, vars *Variables) (*operation.Field, error) {
	return b.field(parent, spec, nil, nil, vars)
}

// Expand builds the children of a field whose type is typ. path holds the
// response keys leading to the field and prefixes generated variable names.
func (b *Builder) Expand(typ *schema.TypeRef, set Set, path []string, vars *Variables) ([]operation.Selection, error) {
	t, err := b.schema.TypeByName(typ.GetNamedType())
	if err != nil {
		return nil, err
	}
	switch {
	case t.IsLeaf():
		if len(set) > 0 {
			return nil, &InvalidSelectionError{Type: t.Name, Path: path, Reason: "leaf type takes no selection"}
		}
		return nil, nil
	case !t.IsComposite():
		return nil, &InvalidSelectionError{Type: t.Name, Path: path, Reason: fmt.Sprintf("%s type cannot be selected", t.Kind)}
	case len(set) == 0:
		return b.defaults(t), nil
	}
	return b.expandSet(t, set, path, vars)
}

func (b *Builder) expandSet(t *schema.Type, set Set, path []string, vars *Variables) ([]operation.Selection, error) {
	out := make([]operation.Selection, 0, len(set))
	for _, sel := range set {
		switch s := sel.(type) {
		case Field:
			key := s.Name
			if s.Alias != "" {
				key = s.Alias
			}
			sub := appendPath(path, key)
			f, err := b.field(t, s, sub, sub, vars)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		case Fragment:
			frag, err := b.fragment(t, s, path, vars)
			if err != nil {
				return nil, err
			}
			out = append(out, frag)
		default:
			return nil, &InvalidSelectionError{Type: t.Name, Path: path, Reason: fmt.Sprintf("unsupported selection %T", sel)}
		}
	}
	return out, nil
}

func (b *Builder) field(parent *schema.Type, spec Field, argPath, childPath []string, vars *Variables) (*operation.Field, error) {
	if spec.Name == "" {
		return nil, &InvalidSelectionError{Type: parent.Name, Path: argPath, Reason: "field name is empty"}
	}
	if spec.Alias != "" && !IsName(spec.Alias) {
		return nil, &InvalidSelectionError{Type: parent.Name, Path: argPath, Reason: fmt.Sprintf("invalid alias %q", spec.Alias)}
	}
	if spec.Name == typenameField {
		if len(spec.Args) > 0 || len(spec.Fields) > 0 {
			return nil, &InvalidSelectionError{Type: parent.Name, Path: argPath, Reason: "__typename takes no arguments or selection"}
		}
		dirs, err := b.directives(spec.Directives, argPath, vars)
		if err != nil {
			return nil, err
		}
		return &operation.Field{Alias: spec.Alias, Name: spec.Name, Directives: dirs}, nil
	}

	def, err := parent.FieldByName(spec.Name)
	if err != nil {
		return nil, err
	}
	args, err := b.Arguments(parent.Name, def, spec.Args, argPath, vars)
	if err != nil {
		return nil, err
	}
	dirs, err := b.directives(spec.Directives, argPath, vars)
	if err != nil {
		return nil, err
	}
	children, err := b.Expand(def.Type, spec.Fields, childPath, vars)
	if err != nil {
		return nil, err
	}
	return &operation.Field{
		Alias:      spec.Alias,
		Name:       spec.Name,
		Arguments:  args,
		Directives: dirs,
		Selections: children,
	}, nil
}

// Arguments validates values against the arguments of def and binds each to
// a variable. Bindings follow the declaration order of the arguments.
func (b *Builder) Arguments(parent string, def *schema.Field, values map[string]any, path []string, vars *Variables) ([]operation.Argument, error) {
	if len(values) == 0 {
		return nil, nil
	}
	for _, name := range sortedKeys(values) {
		if _, err := def.ArgumentByName(parent, name); err != nil {
			return nil, err
		}
	}
	args := make([]operation.Argument, 0, len(values))
	for _, in := range def.Arguments {
		v, ok := values[in.Name]
		if !ok {
			continue
		}
		name := vars.Bind(path, in.Name, in.Type.String(), v)
		args = append(args, operation.Argument{Name: in.Name, Variable: name})
	}
	return args, nil
}

func (b *Builder) directives(specs []Directive, path []string, vars *Variables) ([]operation.Directive, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]operation.Directive, 0, len(specs))
	for _, spec := range specs {
		def, err := b.schema.DirectiveByName(spec.Name)
		if err != nil {
			return nil, err
		}
		for _, name := range sortedKeys(spec.Args) {
			if _, err := def.ArgumentByName(name); err != nil {
				return nil, err
			}
		}
		d := operation.Directive{Name: spec.Name}
		dirPath := appendPath(path, spec.Name)
		for _, in := range def.Arguments {
			v, ok := spec.Args[in.Name]
			if !ok {
				continue
			}
			name := vars.Bind(dirPath, in.Name, in.Type.String(), v)
			d.Arguments = append(d.Arguments, operation.Argument{Name: in.Name, Variable: name})
		}
		out = append(out, d)
	}
	return out, nil
}

func (b *Builder) fragment(parent *schema.Type, spec Fragment, path []string, vars *Variables) (*operation.InlineFragment, error) {
	cond, err := b.schema.TypeByName(spec.On)
	if err != nil {
		return nil, err
	}
	if !cond.IsComposite() {
		return nil, &InvalidSelectionError{Type: parent.Name, Path: path, Reason: fmt.Sprintf("fragment type %s is not composite", cond.Name)}
	}
	if !b.overlaps(parent, cond) {
		return nil, &InvalidSelectionError{Type: parent.Name, Path: path, Reason: fmt.Sprintf("fragment on %s can never apply", cond.Name)}
	}
	sub := appendPath(path, cond.Name)
	dirs, err := b.directives(spec.Directives, sub, vars)
	if err != nil {
		return nil, err
	}
	var children []operation.Selection
	if len(spec.Fields) == 0 {
		children = b.defaults(cond)
	} else if children, err = b.expandSet(cond, spec.Fields, sub, vars); err != nil {
		return nil, err
	}
	return &operation.InlineFragment{TypeCondition: cond.Name, Directives: dirs, Selections: children}, nil
}

// defaults is the shallow expansion: leaf fields without required
// arguments, in declaration order, or __typename when there are none.
// Composite fields are never followed.
func (b *Builder) defaults(t *schema.Type) []operation.Selection {
	var out []operation.Selection
	for _, f := range t.Fields {
		if f.HasRequiredArguments() {
			continue
		}
		ft, err := b.schema.TypeByName(f.Type.GetNamedType())
		if err != nil || !ft.IsLeaf() {
			continue
		}
		out = append(out, &operation.Field{Name: f.Name})
	}
	if len(out) == 0 {
		out = append(out, &operation.Field{Name: typenameField})
	}
	return out
}

// overlaps reports whether an object can be both of type a and of type b.
func (b *Builder) overlaps(a, c *schema.Type) bool {
	if a.Name == c.Name {
		return true
	}
	for _, name := range b.possibleTypes(a) {
		for _, other := range b.possibleTypes(c) {
			if name == other {
				return true
			}
		}
	}
	return false
}

func (b *Builder) possibleTypes(t *schema.Type) []string {
	if t.Kind == schema.TypeKindObject {
		return []string{t.Name}
	}
	return t.PossibleTypes
}

func appendPath(path []string, key string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, key)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
