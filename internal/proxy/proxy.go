// Package proxy synthesizes operation documents from a root field name and
// keyword arguments.
package proxy

import (
	"fmt"

	"github.com/hanpama/qlient/internal/operation"
	"github.com/hanpama/qlient/internal/registry"
	"github.com/hanpama/qlient/internal/selection"
)

// Reserved keyword arguments. They are never sent as field arguments.
const (
	FieldsKey = "_fields"
	NameKey   = "_name"
)

// Proxy is stateless apart from the registry and builder it reads.
type Proxy struct {
	registry *registry.Registry
	builder  *selection.Builder
}

func New(r *registry.Registry, b *selection.Builder) *Proxy {
	return &Proxy{registry: r, builder: b}
}

func (p *Proxy) Registry() *registry.Registry { return p.registry }

// Invoke builds the document calling the root field of kind. kwargs holds
// the field arguments plus the reserved FieldsKey (any form accepted by
// selection.Parse) and NameKey (operation name).
func (p *Proxy) Invoke(kind operation.Kind, field string, kwargs map[string]any) (*operation.Document, error) {
	args := make(map[string]any, len(kwargs))
	var spec, rawName any
	for k, v := range kwargs {
		switch k {
		case FieldsKey:
			spec = v
		case NameKey:
			rawName = v
		default:
			args[k] = v
		}
	}

	d, err := p.registry.Resolve(kind, field)
	if err != nil {
		return nil, err
	}
	var name string
	if rawName != nil {
		s, ok := rawName.(string)
		if !ok {
			return nil, fmt.Errorf("proxy: %s must be a string, got %T", NameKey, rawName)
		}
		if s != "" && !selection.IsName(s) {
			return nil, fmt.Errorf("proxy: invalid operation name %q", s)
		}
		name = s
	}
	set, err := selection.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", d.RootType.Name, field, err)
	}
	vars := selection.NewVariables()
	root, err := p.builder.Root(d.RootType, selection.Field{Name: field, Args: args, Fields: set}, vars)
	if err != nil {
		return nil, err
	}
	return operation.NewDocument(kind, name, vars.List(), root), nil
}

func (p *Proxy) Query() *Namespace        { return &Namespace{proxy: p, kind: operation.Query} }
func (p *Proxy) Mutation() *Namespace     { return &Namespace{proxy: p, kind: operation.Mutation} }
func (p *Proxy) Subscription() *Namespace { return &Namespace{proxy: p, kind: operation.Subscription} }

// Namespace exposes the root fields of one operation kind.
type Namespace struct {
	proxy *Proxy
	kind  operation.Kind
}

func (n *Namespace) Kind() operation.Kind { return n.kind }

// Names lists the callable root fields in declaration order.
func (n *Namespace) Names() []string { return n.proxy.registry.Names(n.kind) }

func (n *Namespace) Call(field string, kwargs map[string]any) (*operation.Document, error) {
	return n.proxy.Invoke(n.kind, field, kwargs)
}

// Field starts a fluent call:
//
//	doc, err := p.Query().Field("film").Arg("id", id).Select("id title").Build()
func (n *Namespace) Field(name string) *Call {
	return &Call{ns: n, field: name, args: map[string]any{}}
}

// Call accumulates the arguments of a root field call. The first error is
// kept and returned by Build.
type Call struct {
	ns    *Namespace
	field string
	args  map[string]any
	set   selection.Set
	name  string
	err   error
}

func (c *Call) Arg(name string, value any) *Call {
	c.args[name] = value
	return c
}

func (c *Call) Args(args map[string]any) *Call {
	for k, v := range args {
		c.args[k] = v
	}
	return c
}

// Select appends to the selection. Each spec is parsed with selection.Parse.
func (c *Call) Select(specs ...any) *Call {
	for _, spec := range specs {
		set, err := selection.Parse(spec)
		if err != nil && c.err == nil {
			c.err = err
		}
		c.set = append(c.set, set...)
	}
	return c
}

// SelectGraphQL appends a selection written in GraphQL syntax.
func (c *Call) SelectGraphQL(src string) *Call {
	set, err := selection.ParseGraphQL(src)
	if err != nil && c.err == nil {
		c.err = err
	}
	c.set = append(c.set, set...)
	return c
}

func (c *Call) Named(name string) *Call {
	c.name = name
	return c
}

func (c *Call) Build() (*operation.Document, error) {
	if c.err != nil {
		return nil, c.err
	}
	kwargs := make(map[string]any, len(c.args)+2)
	for k, v := range c.args {
		kwargs[k] = v
	}
	if len(c.set) > 0 {
		kwargs[FieldsKey] = c.set
	}
	if c.name != "" {
		kwargs[NameKey] = c.name
	}
	return c.ns.Call(c.field, kwargs)
}
