package operation

import "strings"

// render produces the compact single-line form:
//
//	query Name($id: ID) { film(id: $id) { id title } }
func (d *Document) render() string {
	var b strings.Builder
	b.WriteString(string(d.kind))
	if d.name != "" {
		b.WriteString(" ")
		b.WriteString(d.name)
	}
	if len(d.variables) > 0 {
		b.WriteString("(")
		for i, v := range d.variables {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("$")
			b.WriteString(v.Name)
			b.WriteString(": ")
			b.WriteString(v.Type)
		}
		b.WriteString(")")
	}
	b.WriteString(" { ")
	if d.root != nil {
		d.root.write(&b)
	}
	b.WriteString(" }")
	return b.String()
}

func (f *Field) write(b *strings.Builder) {
	if f.Alias != "" && f.Alias != f.Name {
		b.WriteString(f.Alias)
		b.WriteString(": ")
	}
	b.WriteString(f.Name)
	writeArguments(b, f.Arguments)
	writeDirectives(b, f.Directives)
	writeSelections(b, f.Selections)
}

func (f *InlineFragment) write(b *strings.Builder) {
	b.WriteString("... on ")
	b.WriteString(f.TypeCondition)
	writeDirectives(b, f.Directives)
	writeSelections(b, f.Selections)
}

func writeArguments(b *strings.Builder, args []Argument) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Name)
		b.WriteString(": $")
		b.WriteString(a.Variable)
	}
	b.WriteString(")")
}

func writeDirectives(b *strings.Builder, dirs []Directive) {
	for _, d := range dirs {
		b.WriteString(" @")
		b.WriteString(d.Name)
		writeArguments(b, d.Arguments)
	}
}

func writeSelections(b *strings.Builder, sels []Selection) {
	if len(sels) == 0 {
		return
	}
	b.WriteString(" { ")
	for i, s := range sels {
		if i > 0 {
			b.WriteString(" ")
		}
		s.write(b)
	}
	b.WriteString(" }")
}
