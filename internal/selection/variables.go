package selection

import (
	"strconv"
	"strings"

	"github.com/hanpama/qlient/internal/operation"
)

// Variables allocates unique variable names for one document. Bindings are
// kept in the order they were first requested.
type Variables struct {
	taken    map[string]bool
	bindings []operation.Variable
}

func NewVariables() *Variables {
	return &Variables{taken: make(map[string]bool)}
}

// Bind records value under a name derived from path and arg and returns the
// name. An empty path yields arg itself. Taken names get a numeric suffix
// starting at 2.
func (v *Variables) Bind(path []string, arg, typ string, value any) string {
	base := arg
	if len(path) > 0 {
		base = strings.Join(path, "_") + "_" + arg
	}
	name := base
	for n := 2; v.taken[name]; n++ {
		name = base + "_" + strconv.Itoa(n)
	}
	v.taken[name] = true
	v.bindings = append(v.bindings, operation.Variable{Name: name, Type: typ, Value: value})
	return name
}

func (v *Variables) Len() int { return len(v.bindings) }

// List returns a copy of the bindings.
func (v *Variables) List() []operation.Variable {
	return append([]operation.Variable(nil), v.bindings...)
}
