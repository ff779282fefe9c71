package selection

import (
	"fmt"
	"strings"
)

// InvalidSelectionError reports a specification that cannot apply to the
// type it was given for.
type InvalidSelectionError struct {
	Type   string
	Path   []string
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	var b strings.Builder
	b.WriteString("selection: ")
	if len(e.Path) > 0 {
		b.WriteString(strings.Join(e.Path, "."))
		b.WriteString(": ")
	}
	if e.Type != "" {
		fmt.Fprintf(&b, "on %s: ", e.Type)
	}
	b.WriteString(e.Reason)
	return b.String()
}
