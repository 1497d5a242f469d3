package socketaddr

import (
	"fmt"
	"strings"
)

// String serializes the address into its canonical form. The node scope is
// always written out.
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(string(a.Scope))
	sb.WriteRune('.')
	sb.WriteString(a.Name)
	if a.HasIndex() {
		fmt.Fprintf(&sb, "[%d]", a.Index)
		return sb.String()
	}
	sb.WriteRune('.')
	sb.WriteString(a.Socket)
	return sb.String()
}

// Equal reports whether two addresses refer to the same socket.
func (a Address) Equal(other Address) bool {
	return a == other
}
