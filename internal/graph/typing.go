package graph

import (
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

// ConvertToSupportedDataType maps requested onto the types accepted by an
// input socket. When no fallback applies a diagnostic is logged and the
// declared set is returned.
func (g *Graph) ConvertToSupportedDataType(in SocketID, requested datatype.DataType) datatype.DataType {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.convertToSupported(in, requested)
}

func (g *Graph) convertToSupported(id SocketID, requested datatype.DataType) datatype.DataType {
	s := g.sockets[id]
	dt, ok := datatype.ConvertToSupported(s.declared, requested)
	if !ok {
		g.logger.Warn("no conversion to a supported data type",
			"socket", g.socketLabel(id), "supported", s.declared.String(), "requested", requested.String())
	}
	return dt
}

// DetermineActualDataType resolves the type of an unconnected input socket
// by requesting Color from its declared set. The group output socket the
// input owns, if any, is resolved next and its consumers notified.
func (g *Graph) DetermineActualDataType(in SocketID) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.determineInput(in)
}

func (g *Graph) determineInput(in SocketID) {
	s := g.mustSocket(in, InputSocket)
	s.actual = g.convertToSupported(in, datatype.Color)
	if s.groupOutput != NoSocket && !s.insideGroup {
		g.determineGroupOutput(s.groupOutput, s.actual)
	}
}

// NotifyActualInputType sets the actual type of an input from the type
// arriving over its connection and informs the owning operation.
func (g *Graph) NotifyActualInputType(in SocketID, dt datatype.DataType) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.notifyInput(in, dt)
}

func (g *Graph) notifyInput(in SocketID, dt datatype.DataType) {
	s := g.mustSocket(in, InputSocket)
	s.actual = g.convertToSupported(in, dt)
	if s.operation == NoOperation {
		return
	}
	if n, ok := g.ops[s.operation].op.(operation.TypeNotifier); ok {
		n.NotifyActualDataTypeSet(s.index, s.actual)
	}
}

func (g *Graph) determineGroupOutput(out SocketID, requested datatype.DataType) {
	s := g.sockets[out]
	dt, ok := datatype.ConvertToSupported(s.declared, requested)
	if !ok {
		dt = requested
	}
	s.actual = dt
	g.fireOutput(out)
}

// fireOutput notifies every input fed by out of its actual type.
func (g *Graph) fireOutput(out SocketID) {
	s := g.sockets[out]
	for _, c := range s.connections {
		g.notifyInput(g.conns[c].To, s.actual)
	}
}

// determineOutput resolves the actual type of an operation output. A single
// declared type is taken as is; otherwise the operation decides, or the
// first input's type is requested from the declared set.
func (g *Graph) determineOutput(out SocketID) {
	s := g.sockets[out]
	e := g.ops[s.operation]

	if t, ok := e.op.(operation.OutputTyper); ok {
		inputs := make([]datatype.DataType, len(e.inputs))
		for i, in := range e.inputs {
			inputs[i] = g.sockets[in].actual
		}
		s.actual = t.OutputDataType(s.index, inputs)
		return
	}
	if s.declared.IsSingle() {
		s.actual = s.declared
		return
	}
	requested := datatype.Color
	if len(e.inputs) > 0 && g.sockets[e.inputs[0]].actual.IsSingle() {
		requested = g.sockets[e.inputs[0]].actual
	}
	dt, ok := datatype.ConvertToSupported(s.declared, requested)
	if !ok {
		g.logger.Warn("no conversion to a supported data type",
			"socket", g.socketLabel(out), "supported", s.declared.String(), "requested", requested.String())
	}
	s.actual = dt
}

// ResolveDataTypes assigns an actual type to every socket in topological
// order: unconnected inputs request Color, connected inputs take their
// source's type, outputs are resolved once their inputs are. Running it
// again yields the same assignment.
func (g *Graph) ResolveDataTypes() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	order, err := g.topoOrder()
	if err != nil {
		return fmt.Errorf("resolve data types: %w", err)
	}
	for _, id := range order {
		e := g.ops[id]
		for _, in := range e.inputs {
			s := g.sockets[in]
			if s.connection == NoConnection {
				g.determineInput(in)
				continue
			}
			from := g.sockets[g.conns[s.connection].From]
			if !from.actual.IsSingle() {
				g.determineInput(in)
				continue
			}
			g.notifyInput(in, from.actual)
		}
		for _, out := range e.outputs {
			g.determineOutput(out)
		}
	}
	return nil
}

// InsertConversions splices an implicit conversion operation into every
// connection whose endpoints resolved to different actual types. It returns
// the number of operations inserted.
func (g *Graph) InsertConversions(factory ConversionFactory) (int, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.finalized {
		return 0, ErrFinalized
	}

	inserted := 0
	for _, c := range append([]*Connection(nil), g.conns...) {
		if c == nil {
			continue
		}
		from, to := g.sockets[c.From], g.sockets[c.To]
		if from.actual == to.actual || !from.actual.IsSingle() || !to.actual.IsSingle() {
			continue
		}
		op := factory(from.actual, to.actual)
		if op == nil {
			continue
		}

		name := g.uniqueName(fmt.Sprintf("%s->%s", g.socketLabel(c.From), g.socketLabel(c.To)))
		id, err := g.addOperation(name, op)
		if err != nil {
			return inserted, fmt.Errorf("insert conversion %s: %w", name, err)
		}
		conv := g.ops[id]
		if len(conv.inputs) != 1 || len(conv.outputs) != 1 {
			return inserted, fmt.Errorf("conversion %s must have one input and one output", op.Kind())
		}

		target := c.To
		g.unlink(c.ID)
		g.link(c.From, conv.inputs[0])
		g.link(conv.outputs[0], target)
		g.notifyInput(conv.inputs[0], from.actual)
		g.determineOutput(conv.outputs[0])
		inserted++
	}
	return inserted, nil
}
