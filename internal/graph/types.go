package graph

import (
	"errors"

	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

// OperationID, SocketID and ConnectionID are handles into the graph arena.
type (
	OperationID  int
	SocketID     int
	ConnectionID int
)

const (
	NoOperation  OperationID  = -1
	NoSocket     SocketID     = -1
	NoConnection ConnectionID = -1
)

var (
	ErrCycle              = errors.New("connection would create a cycle")
	ErrInputConnected     = errors.New("input socket already connected")
	ErrSocketKind         = errors.New("wrong socket kind")
	ErrUnknownSocket      = errors.New("unknown socket")
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrDuplicateName      = errors.New("duplicate operation name")
	ErrDanglingConnection = errors.New("dangling connection")
	ErrUnconnectedInput   = errors.New("unconnected input")
	ErrNoOutputs          = errors.New("graph declares no outputs")
	ErrFinalized          = errors.New("graph is finalized")
)

// SocketKind tags the two socket variants.
type SocketKind uint8

const (
	InputSocket SocketKind = iota
	OutputSocket
)

func (k SocketKind) String() string {
	if k == InputSocket {
		return "input"
	}
	return "output"
}

// socket is one arena slot. Fields shared by both variants come first; the
// variant specific block is selected by kind.
type socket struct {
	kind      SocketKind
	operation OperationID
	index     int
	name      string
	declared  datatype.DataType
	actual    datatype.DataType
	removed   bool

	// input variant
	resize      datatype.ResizeMode
	def         operation.Color
	connection  ConnectionID
	groupOutput SocketID
	insideGroup bool

	// output variant
	connections []ConnectionID
}

// Socket is a read-only view of a socket.
type Socket struct {
	ID        SocketID
	Kind      SocketKind
	Operation OperationID
	Index     int
	Name      string
	Declared  datatype.DataType
	Actual    datatype.DataType
	Resize    datatype.ResizeMode
	Default   operation.Color
}

// Connection is a directed edge from an output socket to an input socket.
type Connection struct {
	ID   ConnectionID
	From SocketID
	To   SocketID
}

type entry struct {
	name    string
	op      operation.Operation
	sig     operation.Signature
	inputs  []SocketID
	outputs []SocketID
	removed bool
}

// ConstantFactory builds the operation synthesized for an unconnected input
// during relinking.
type ConstantFactory func(dt datatype.DataType, value operation.Color) operation.Operation

// ConversionFactory builds the implicit operation converting from one
// actual type to another. It returns nil when no conversion is needed.
type ConversionFactory func(from, to datatype.DataType) operation.Operation
