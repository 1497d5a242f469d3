package graph

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

// Graph is the arena holding one evaluation's operations.
type Graph struct {
	mutex sync.RWMutex

	ops     []*entry
	sockets []*socket
	conns   []*Connection // nil once removed
	outputs []SocketID
	byName  map[string]OperationID

	constants ConstantFactory
	logger    *slog.Logger

	finalized bool
	index     *index
}

// Option configures a Graph.
type Option func(*Graph)

// WithConstants sets the factory used when relinking synthesizes a constant
// operation for an unconnected input.
func WithConstants(f ConstantFactory) Option {
	return func(g *Graph) { g.constants = f }
}

// WithLogger sets the logger for diagnostics raised during typing and
// relinking.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) { g.logger = l }
}

// New creates and returns an initialized, empty Graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		byName: make(map[string]OperationID),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddOperation registers op under a unique name and creates its sockets from
// the signature.
func (g *Graph) AddOperation(name string, op operation.Operation) (OperationID, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.addOperation(name, op)
}

func (g *Graph) addOperation(name string, op operation.Operation) (OperationID, error) {
	if g.finalized {
		return NoOperation, ErrFinalized
	}
	if _, ok := g.byName[name]; ok {
		return NoOperation, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	id := OperationID(len(g.ops))
	sig := op.Signature()
	e := &entry{name: name, op: op, sig: sig}
	for i, in := range sig.Inputs {
		e.inputs = append(e.inputs, g.newSocket(&socket{
			kind:        InputSocket,
			operation:   id,
			index:       i,
			name:        in.Name,
			declared:    in.Type,
			resize:      in.Resize,
			def:         in.Default,
			connection:  NoConnection,
			groupOutput: NoSocket,
		}))
	}
	for i, out := range sig.Outputs {
		e.outputs = append(e.outputs, g.newSocket(&socket{
			kind:        OutputSocket,
			operation:   id,
			index:       i,
			name:        out.Name,
			declared:    out.Type,
			connection:  NoConnection,
			groupOutput: NoSocket,
		}))
	}
	g.ops = append(g.ops, e)
	g.byName[name] = id
	return id, nil
}

// uniqueName appends a counter to base until no operation uses it.
func (g *Graph) uniqueName(base string) string {
	if _, ok := g.byName[base]; !ok {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s.%d", base, i)
		if _, ok := g.byName[name]; !ok {
			return name
		}
	}
}

func (g *Graph) newSocket(s *socket) SocketID {
	id := SocketID(len(g.sockets))
	g.sockets = append(g.sockets, s)
	return id
}

// NewGroupOutput creates an output socket that belongs to no operation. It
// is attached to an input with SetGroupOutput.
func (g *Graph) NewGroupOutput(name string, dt datatype.DataType) SocketID {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.newSocket(&socket{
		kind:        OutputSocket,
		operation:   NoOperation,
		name:        name,
		declared:    dt,
		connection:  NoConnection,
		groupOutput: NoSocket,
	})
}

func (g *Graph) entry(id OperationID) (*entry, error) {
	if id < 0 || int(id) >= len(g.ops) || g.ops[id].removed {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, id)
	}
	return g.ops[id], nil
}

func (g *Graph) socket(id SocketID) (*socket, error) {
	if id < 0 || int(id) >= len(g.sockets) || g.sockets[id].removed {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSocket, id)
	}
	return g.sockets[id], nil
}

// mustSocket is used where an invalid handle is a programming error.
func (g *Graph) mustSocket(id SocketID, kind SocketKind) *socket {
	s, err := g.socket(id)
	if err != nil {
		panic(fmt.Sprintf("graph: %v", err))
	}
	if s.kind != kind {
		panic(fmt.Sprintf("graph: socket %d is an %s, want %s", id, s.kind, kind))
	}
	return s
}

// Operation returns the operation behind id.
func (g *Graph) Operation(id OperationID) (operation.Operation, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	e, err := g.entry(id)
	if err != nil {
		return nil, false
	}
	return e.op, true
}

// Name returns the unique name of an operation.
func (g *Graph) Name(id OperationID) string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if e, err := g.entry(id); err == nil {
		return e.name
	}
	return ""
}

// Lookup finds an operation by name.
func (g *Graph) Lookup(name string) (OperationID, bool) {
	if g.Finalized() {
		id, ok := g.index.byName[name]
		return id, ok
	}
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	id, ok := g.byName[name]
	return id, ok
}

// Len returns the number of live operations.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	n := 0
	for _, e := range g.ops {
		if !e.removed {
			n++
		}
	}
	return n
}

// Input returns the handle of input i of op, or NoSocket.
func (g *Graph) Input(op OperationID, i int) SocketID {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	e, err := g.entry(op)
	if err != nil || i < 0 || i >= len(e.inputs) {
		return NoSocket
	}
	return e.inputs[i]
}

// Output returns the handle of output i of op, or NoSocket.
func (g *Graph) Output(op OperationID, i int) SocketID {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	e, err := g.entry(op)
	if err != nil || i < 0 || i >= len(e.outputs) {
		return NoSocket
	}
	return e.outputs[i]
}

// Inputs returns the input handles of op in declaration order.
func (g *Graph) Inputs(op OperationID) []SocketID {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	e, err := g.entry(op)
	if err != nil {
		return nil
	}
	return append([]SocketID(nil), e.inputs...)
}

// Outputs returns the output handles of op in declaration order.
func (g *Graph) Outputs(op OperationID) []SocketID {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	e, err := g.entry(op)
	if err != nil {
		return nil
	}
	return append([]SocketID(nil), e.outputs...)
}

// InputByName finds an input socket of op by name.
func (g *Graph) InputByName(op OperationID, name string) (SocketID, bool) {
	return g.byNameIn(op, name, InputSocket)
}

// OutputByName finds an output socket of op by name.
func (g *Graph) OutputByName(op OperationID, name string) (SocketID, bool) {
	return g.byNameIn(op, name, OutputSocket)
}

func (g *Graph) byNameIn(op OperationID, name string, kind SocketKind) (SocketID, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	e, err := g.entry(op)
	if err != nil {
		return NoSocket, false
	}
	list := e.inputs
	if kind == OutputSocket {
		list = e.outputs
	}
	for _, id := range list {
		if g.sockets[id].name == name {
			return id, true
		}
	}
	return NoSocket, false
}

// Socket returns a read-only view of a socket.
func (g *Graph) Socket(id SocketID) (Socket, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	s, err := g.socket(id)
	if err != nil {
		return Socket{}, false
	}
	return Socket{
		ID:        id,
		Kind:      s.kind,
		Operation: s.operation,
		Index:     s.index,
		Name:      s.name,
		Declared:  s.declared,
		Actual:    s.actual,
		Resize:    s.resize,
		Default:   s.def,
	}, true
}

// SetDefault overrides the editor value of an input socket.
func (g *Graph) SetDefault(in SocketID, value operation.Color) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.mustSocket(in, InputSocket).def = value
}

// SetResizeMode overrides the resize policy of an input socket.
func (g *Graph) SetResizeMode(in SocketID, mode datatype.ResizeMode) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.mustSocket(in, InputSocket).resize = mode
}

// ActualType returns the resolved data type of a socket.
func (g *Graph) ActualType(id SocketID) datatype.DataType {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if s, err := g.socket(id); err == nil {
		return s.actual
	}
	return datatype.Unknown
}

// IsConnected reports whether a socket has at least one connection.
func (g *Graph) IsConnected(id SocketID) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	s, err := g.socket(id)
	if err != nil {
		return false
	}
	if s.kind == InputSocket {
		return s.connection != NoConnection
	}
	return len(s.connections) > 0
}

// ConnectionOf returns the connection feeding an input socket.
func (g *Graph) ConnectionOf(in SocketID) (Connection, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	s, err := g.socket(in)
	if err != nil || s.kind != InputSocket || s.connection == NoConnection {
		return Connection{}, false
	}
	return *g.conns[s.connection], true
}

// ConnectionsOf returns the connections leaving an output socket.
func (g *Graph) ConnectionsOf(out SocketID) []Connection {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	s, err := g.socket(out)
	if err != nil || s.kind != OutputSocket {
		return nil
	}
	conns := make([]Connection, 0, len(s.connections))
	for _, c := range s.connections {
		conns = append(conns, *g.conns[c])
	}
	return conns
}

// GroupOutput returns the group output socket referenced by an input.
func (g *Graph) GroupOutput(in SocketID) (SocketID, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	s, err := g.socket(in)
	if err != nil || s.kind != InputSocket || s.groupOutput == NoSocket {
		return NoSocket, false
	}
	return s.groupOutput, true
}

// MarkOutput declares an output socket as one of the graph's results.
func (g *Graph) MarkOutput(out SocketID) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.finalized {
		return ErrFinalized
	}
	s, err := g.socket(out)
	if err != nil {
		return err
	}
	if s.kind != OutputSocket || s.operation == NoOperation {
		return fmt.Errorf("%w: socket %d cannot be a graph output", ErrSocketKind, out)
	}
	for _, o := range g.outputs {
		if o == out {
			return nil
		}
	}
	g.outputs = append(g.outputs, out)
	return nil
}

// GraphOutputs returns the declared result sockets in declaration order.
func (g *Graph) GraphOutputs() []SocketID {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return append([]SocketID(nil), g.outputs...)
}
