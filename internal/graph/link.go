package graph

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/tilecomp/internal/datatype"
)

// Connect links an output socket to an input socket. An input accepts at
// most one connection and edges that would close a cycle are rejected.
func (g *Graph) Connect(from, to SocketID) (ConnectionID, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.connect(from, to)
}

func (g *Graph) connect(from, to SocketID) (ConnectionID, error) {
	if g.finalized {
		return NoConnection, ErrFinalized
	}
	src, err := g.socket(from)
	if err != nil {
		return NoConnection, err
	}
	dst, err := g.socket(to)
	if err != nil {
		return NoConnection, err
	}
	if src.kind != OutputSocket || dst.kind != InputSocket {
		return NoConnection, fmt.Errorf("%w: connect %s %d to %s %d", ErrSocketKind, src.kind, from, dst.kind, to)
	}
	if dst.connection != NoConnection {
		return NoConnection, fmt.Errorf("%w: %s", ErrInputConnected, g.socketLabel(to))
	}
	if src.operation != NoOperation && dst.operation != NoOperation && g.reaches(dst.operation, src.operation) {
		return NoConnection, fmt.Errorf("%w: %s -> %s", ErrCycle, g.socketLabel(from), g.socketLabel(to))
	}
	return g.link(from, to), nil
}

// link records a connection without any checks.
func (g *Graph) link(from, to SocketID) ConnectionID {
	id := ConnectionID(len(g.conns))
	g.conns = append(g.conns, &Connection{ID: id, From: from, To: to})
	g.sockets[from].connections = append(g.sockets[from].connections, id)
	g.sockets[to].connection = id
	return id
}

// unlink removes a connection from both endpoints.
func (g *Graph) unlink(id ConnectionID) {
	c := g.conns[id]
	if c == nil {
		return
	}
	g.sockets[c.To].connection = NoConnection
	from := g.sockets[c.From]
	from.connections = slices.DeleteFunc(from.connections, func(x ConnectionID) bool { return x == id })
	g.conns[id] = nil
}

// reaches reports whether target is downstream of (or equal to) start.
func (g *Graph) reaches(start, target OperationID) bool {
	seen := make(map[OperationID]bool)
	stack := []OperationID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.downstream(id)...)
	}
	return false
}

// downstream lists the operations fed by id, in connection order.
func (g *Graph) downstream(id OperationID) []OperationID {
	var ids []OperationID
	for _, out := range g.ops[id].outputs {
		for _, c := range g.sockets[out].connections {
			if op := g.sockets[g.conns[c].To].operation; op != NoOperation && !slices.Contains(ids, op) {
				ids = append(ids, op)
			}
		}
	}
	return ids
}

// upstream lists the operations feeding id, in input order.
func (g *Graph) upstream(id OperationID) []OperationID {
	var ids []OperationID
	for _, in := range g.ops[id].inputs {
		c := g.sockets[in].connection
		if c == NoConnection {
			continue
		}
		if op := g.sockets[g.conns[c].From].operation; op != NoOperation && !slices.Contains(ids, op) {
			ids = append(ids, op)
		}
	}
	return ids
}

func (g *Graph) socketLabel(id SocketID) string {
	s := g.sockets[id]
	if s.operation == NoOperation {
		return fmt.Sprintf("group.%s", s.name)
	}
	return fmt.Sprintf("%s.%s", g.ops[s.operation].name, s.name)
}

// Disconnect removes the connection feeding an input socket, if any.
func (g *Graph) Disconnect(to SocketID) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.finalized {
		return ErrFinalized
	}
	s, err := g.socket(to)
	if err != nil {
		return err
	}
	if s.kind != InputSocket {
		return fmt.Errorf("%w: disconnect output %d", ErrSocketKind, to)
	}
	if s.connection != NoConnection {
		g.unlink(s.connection)
	}
	return nil
}

// RemoveOperation drops an operation with all its connections. Group output
// sockets owned by its inputs are freed as well.
func (g *Graph) RemoveOperation(id OperationID) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.finalized {
		return ErrFinalized
	}
	e, err := g.entry(id)
	if err != nil {
		return err
	}

	for _, in := range e.inputs {
		s := g.sockets[in]
		if s.connection != NoConnection {
			g.unlink(s.connection)
		}
		if s.groupOutput != NoSocket && !s.insideGroup {
			g.freeSocket(s.groupOutput)
		}
		s.removed = true
	}
	for _, out := range e.outputs {
		g.freeSocket(out)
	}
	g.outputs = slices.DeleteFunc(g.outputs, func(o SocketID) bool { return g.sockets[o].removed })
	e.removed = true
	delete(g.byName, e.name)
	return nil
}

func (g *Graph) freeSocket(id SocketID) {
	s := g.sockets[id]
	for _, c := range slices.Clone(s.connections) {
		g.unlink(c)
	}
	s.removed = true
}

// SetGroupOutput makes input reference a group output socket. When
// insideGroup is false the input owns that socket and frees it on removal.
func (g *Graph) SetGroupOutput(in, out SocketID, insideGroup bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	s := g.mustSocket(in, InputSocket)
	g.mustSocket(out, OutputSocket)
	s.groupOutput = out
	s.insideGroup = insideGroup
}

// RelinkConnections transfers what feeds source onto target, both input
// sockets.
//
// If source is connected, its connection is moved to target; with duplicate
// set a second connection from the same output is created and source keeps
// its own. If source is unconnected and autoconnect is set, a constant
// operation of source's actual type is synthesized and connected to target.
// Its value is the editor default of the input editorIndex of source's
// operation, or of source itself when editorIndex is negative.
//
// target must be unconnected. Calling this on a nil graph is a programming
// error.
func (g *Graph) RelinkConnections(source, target SocketID, autoconnect bool, editorIndex int, duplicate bool) {
	if g == nil {
		panic("graph: relink on a nil graph")
	}
	g.mutex.Lock()
	defer g.mutex.Unlock()

	src := g.mustSocket(source, InputSocket)
	tgt := g.mustSocket(target, InputSocket)
	if tgt.connection != NoConnection && source != target {
		panic(fmt.Sprintf("graph: relink target %s already connected", g.socketLabel(target)))
	}

	if src.connection == NoConnection {
		if autoconnect {
			g.addConstant(src, target, editorIndex)
		}
		return
	}
	if source == target {
		return
	}

	if duplicate {
		g.link(g.conns[src.connection].From, target)
		return
	}
	c := g.conns[src.connection]
	c.To = target
	tgt.connection = c.ID
	src.connection = NoConnection
}

// addConstant synthesizes the constant operation feeding target.
func (g *Graph) addConstant(src *socket, target SocketID, editorIndex int) {
	if g.constants == nil {
		panic("graph: relink needs a constant factory to autoconnect")
	}

	value := src.def
	if editorIndex >= 0 && src.operation != NoOperation {
		owner := g.ops[src.operation]
		if editorIndex < len(owner.inputs) {
			value = g.sockets[owner.inputs[editorIndex]].def
		}
	}

	dt := src.actual
	switch dt {
	case datatype.Value, datatype.Vector, datatype.Color:
	default:
		g.logger.Warn("relink: unknown data type for implicit constant, using color",
			"socket", g.socketLabel(target), "type", dt.String())
		dt = datatype.Color
	}

	op := g.constants(dt, value)
	name := g.uniqueName(g.socketLabel(target) + ".const")
	id, err := g.addOperation(name, op)
	if err != nil {
		panic(fmt.Sprintf("graph: add implicit constant: %v", err))
	}
	g.link(g.ops[id].outputs[0], target)
}

// RelinkOutputConnections moves every connection leaving source so that it
// leaves target instead.
func (g *Graph) RelinkOutputConnections(source, target SocketID) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	src := g.mustSocket(source, OutputSocket)
	tgt := g.mustSocket(target, OutputSocket)
	for _, c := range src.connections {
		g.conns[c].From = target
		tgt.connections = append(tgt.connections, c)
	}
	src.connections = nil
	for i, o := range g.outputs {
		if o == source {
			g.outputs[i] = target
		}
	}
}
