package socketaddr

// Scope tells which namespace an address resolves in.
type Scope string

const (
	// ScopeNode addresses a socket of an operation node.
	ScopeNode Scope = "node"
	// ScopeGroup addresses an exposed socket of a node group.
	ScopeGroup Scope = "group"
)

// Address is the structured representation of a socket reference.
type Address struct {
	Scope  Scope
	Name   string
	Socket string
	Index  int // -1 when the socket is addressed by name.
}

// New returns an address of a named socket.
func New(scope Scope, name, socket string) Address {
	return Address{Scope: scope, Name: name, Socket: socket, Index: -1}
}

// NewIndexed returns an address of a socket by position.
func NewIndexed(scope Scope, name string, index int) Address {
	return Address{Scope: scope, Name: name, Index: index}
}

// HasIndex reports whether the socket is addressed by position.
func (a Address) HasIndex() bool {
	return a.Index >= 0
}

// IsZero reports whether a is the empty address.
func (a Address) IsZero() bool {
	return a.Scope == "" && a.Name == "" && a.Socket == "" && a.Index == 0
}
