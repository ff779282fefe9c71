package selection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hanpama/qlient/internal/language"
)

// ParseGraphQL reads a selection set written in GraphQL syntax. The
// surrounding braces are optional:
//
//	id title characterConnection(first: 3) { characters { name } }
//
// Literal argument values become variable values when the set is expanded.
// Named fragments and variable references are rejected.
func ParseGraphQL(src string) (Set, error) {
	src = strings.TrimSpace(src)
	if !strings.HasPrefix(src, "{") {
		src = "{ " + src + " }"
	}
	doc, err := language.ParseQuery(src)
	if err != nil {
		return nil, fmt.Errorf("parse selection: %w", err)
	}
	if len(doc.Operations) != 1 || len(doc.Fragments) > 0 {
		return nil, &InvalidSelectionError{Reason: "expected a single selection set"}
	}
	return fromAST(doc.Operations[0].SelectionSet)
}

func fromAST(sels language.SelectionSet) (Set, error) {
	var set Set
	for _, sel := range sels {
		switch s := sel.(type) {
		case *language.Field:
			f := Field{Name: s.Name}
			if s.Alias != "" && s.Alias != s.Name {
				f.Alias = s.Alias
			}
			args, err := argumentValues(s.Arguments)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", s.Name, err)
			}
			f.Args = args
			if f.Directives, err = directives(s.Directives); err != nil {
				return nil, fmt.Errorf("field %s: %w", s.Name, err)
			}
			if f.Fields, err = fromAST(s.SelectionSet); err != nil {
				return nil, err
			}
			set = append(set, f)
		case *language.InlineFragment:
			frag := Fragment{On: s.TypeCondition}
			var err error
			if frag.Directives, err = directives(s.Directives); err != nil {
				return nil, err
			}
			if frag.Fields, err = fromAST(s.SelectionSet); err != nil {
				return nil, err
			}
			set = append(set, frag)
		case *language.FragmentSpread:
			return nil, &InvalidSelectionError{Reason: fmt.Sprintf("named fragment ...%s is not supported", s.Name)}
		}
	}
	return set, nil
}

func directives(list language.DirectiveList) ([]Directive, error) {
	var out []Directive
	for _, d := range list {
		args, err := argumentValues(d.Arguments)
		if err != nil {
			return nil, fmt.Errorf("directive @%s: %w", d.Name, err)
		}
		out = append(out, Directive{Name: d.Name, Args: args})
	}
	return out, nil
}

func argumentValues(list language.ArgumentList) (map[string]any, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(list))
	for _, a := range list {
		v, err := literal(a.Value)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", a.Name, err)
		}
		out[a.Name] = v
	}
	return out, nil
}

func literal(v *language.Value) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Kind {
	case language.Variable:
		return nil, &InvalidSelectionError{Reason: "variable $" + v.Raw + " is not supported, pass a literal"}
	case language.IntValue:
		return strconv.ParseInt(v.Raw, 10, 64)
	case language.FloatValue:
		return strconv.ParseFloat(v.Raw, 64)
	case language.BooleanValue:
		return v.Raw == "true", nil
	case language.NullValue:
		return nil, nil
	case language.ListValue:
		out := make([]any, 0, len(v.Children))
		for _, c := range v.Children {
			item, err := literal(c.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case language.ObjectValue:
		out := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			item, err := literal(c.Value)
			if err != nil {
				return nil, err
			}
			out[c.Name] = item
		}
		return out, nil
	default:
		// strings, block strings and enum values
		return v.Raw, nil
	}
}
