// Package registry resolves root field names of a schema into operation
// descriptors.
package registry

import (
	"github.com/hanpama/qlient/internal/operation"
	"github.com/hanpama/qlient/internal/schema"
)

// Descriptor describes one callable root field.
type Descriptor struct {
	Kind       operation.Kind
	RootType   *schema.Type
	Field      *schema.Field
	ReturnType *schema.TypeRef
}

type namespace struct {
	root   *schema.Type
	fields map[string]*Descriptor
	order  []string
}

// Registry is derived once from a schema and is safe for concurrent use.
type Registry struct {
	schema     *schema.Schema
	namespaces map[operation.Kind]*namespace
}

func New(s *schema.Schema) *Registry {
	r := &Registry{schema: s, namespaces: make(map[operation.Kind]*namespace, 3)}
	for _, kind := range []operation.Kind{operation.Query, operation.Mutation, operation.Subscription} {
		root, err := s.RootType(string(kind))
		if err != nil {
			continue
		}
		ns := &namespace{root: root, fields: make(map[string]*Descriptor, len(root.Fields))}
		for _, f := range root.Fields {
			ns.fields[f.Name] = &Descriptor{Kind: kind, RootType: root, Field: f, ReturnType: f.Type}
			ns.order = append(ns.order, f.Name)
		}
		r.namespaces[kind] = ns
	}
	return r
}

// Schema returns the schema the registry was derived from.
func (r *Registry) Schema() *schema.Schema { return r.schema }

// Resolve looks up the root field name in the namespace of kind.
func (r *Registry) Resolve(kind operation.Kind, name string) (*Descriptor, error) {
	ns, ok := r.namespaces[kind]
	if !ok {
		return nil, &schema.UnknownOperationError{Operation: string(kind)}
	}
	d, ok := ns.fields[name]
	if !ok {
		return nil, &schema.UnknownFieldError{Type: ns.root.Name, Field: name}
	}
	return d, nil
}

// Has reports whether the schema declares a root type for kind.
func (r *Registry) Has(kind operation.Kind) bool {
	_, ok := r.namespaces[kind]
	return ok
}

// Names lists root field names of kind in declaration order.
func (r *Registry) Names(kind operation.Kind) []string {
	ns, ok := r.namespaces[kind]
	if !ok {
		return nil
	}
	return append([]string(nil), ns.order...)
}
