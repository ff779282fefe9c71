// Package selection turns caller-supplied field specifications into
// operation selections checked against a schema.
package selection

import (
	"fmt"
	"sort"
	"strings"
)

// Selection is a Field or a Fragment.
type Selection interface {
	isSelection()
}

// Set is an ordered selection specification. An empty Set requests the
// default expansion of the enclosing type.
type Set []Selection

// Field requests one field. Args values are bound to variables, never
// written into the document.
type Field struct {
	Name       string
	Alias      string
	Args       map[string]any
	Directives []Directive
	Fields     Set
}

// Fragment is an inline fragment on the type named by On.
type Fragment struct {
	On         string
	Directives []Directive
	Fields     Set
}

type Directive struct {
	Name string
	Args map[string]any
}

func (Field) isSelection()    {}
func (Fragment) isSelection() {}

// Names builds a Set of plain fields.
func Names(names ...string) Set {
	set := make(Set, 0, len(names))
	for _, n := range names {
		set = append(set, Field{Name: n})
	}
	return set
}

// On builds an inline fragment selecting plain fields of typ.
func On(typ string, names ...string) Fragment {
	return Fragment{On: typ, Fields: Names(names...)}
}

// Parse normalizes the loosely typed forms callers pass as a field
// specification:
//
//	"id title"                         whitespace separated names
//	[]string{"id", "title"}
//	map[string]any{"characters": "name", "title": nil}
//	[]any{"id", map[string]any{...}, selection.On("Human", "height")}
//
// Map keys are visited in sorted order. A nil nested value requests the
// default expansion.
func Parse(spec any) (Set, error) {
	switch v := spec.(type) {
	case nil:
		return nil, nil
	case Set:
		return v, nil
	case []Selection:
		return Set(v), nil
	case Field:
		return Set{v}, nil
	case *Field:
		return Set{*v}, nil
	case Fragment:
		return Set{v}, nil
	case *Fragment:
		return Set{*v}, nil
	case string:
		return Names(strings.Fields(v)...), nil
	case []string:
		var set Set
		for _, s := range v {
			set = append(set, Names(strings.Fields(s)...)...)
		}
		return set, nil
	case []any:
		var set Set
		for i, item := range v {
			sub, err := Parse(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			set = append(set, sub...)
		}
		return set, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		set := make(Set, 0, len(keys))
		for _, k := range keys {
			sub, err := Parse(v[k])
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			set = append(set, Field{Name: k, Fields: sub})
		}
		return set, nil
	}
	return nil, &InvalidSelectionError{Reason: fmt.Sprintf("unsupported specification of type %T", spec)}
}
