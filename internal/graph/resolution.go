package graph

import (
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/operation"
)

// Resolutions is the outcome of resolution propagation.
type Resolutions struct {
	ops    map[OperationID]operation.Resolution
	inputs map[SocketID]operation.Resolution
	visits map[SocketID]int
}

// Of returns the resolution of an operation.
func (r *Resolutions) Of(id OperationID) operation.Resolution {
	return r.ops[id]
}

// Input returns the resolution delivered to a connected input socket.
func (r *Resolutions) Input(in SocketID) (operation.Resolution, bool) {
	res, ok := r.inputs[in]
	return res, ok
}

// Visits returns how many times the upstream resolution of an input socket
// was determined.
func (r *Resolutions) Visits(in SocketID) int {
	return r.visits[in]
}

type resolver struct {
	g      *Graph
	res    *Resolutions
	active map[OperationID]bool
}

// DetermineResolutions propagates resolutions from the graph outputs
// upstream. Each operation decides its resolution from a preferred one,
// pulling the resolutions of its inputs on demand; an unconnected input
// leaves the preferred resolution untouched. Results are memoized per input
// socket so shared upstream operations are resolved once. Operations not
// reached from an output are resolved with the top level preferred
// resolution.
func (g *Graph) DetermineResolutions(preferred operation.Resolution) *Resolutions {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	rv := &resolver{
		g: g,
		res: &Resolutions{
			ops:    make(map[OperationID]operation.Resolution),
			inputs: make(map[SocketID]operation.Resolution),
			visits: make(map[SocketID]int),
		},
		active: make(map[OperationID]bool),
	}
	for _, out := range g.outputs {
		rv.operation(g.sockets[out].operation, preferred)
	}
	order, _ := g.topoOrder()
	for i := len(order) - 1; i >= 0; i-- {
		rv.operation(order[i], preferred)
	}
	return rv.res
}

func (rv *resolver) operation(id OperationID, preferred operation.Resolution) operation.Resolution {
	if res, ok := rv.res.ops[id]; ok {
		return res
	}
	if rv.active[id] {
		panic(fmt.Sprintf("graph: resolution cycle through %s", rv.g.ops[id].name))
	}
	rv.active[id] = true
	defer delete(rv.active, id)

	e := rv.g.ops[id]
	inputs := func(i int, pref operation.Resolution) (operation.Resolution, bool) {
		return rv.input(e.inputs[i], pref)
	}

	var res operation.Resolution
	if d, ok := e.op.(operation.ResolutionDeterminer); ok {
		res = d.DetermineResolution(inputs, preferred)
	} else {
		res = preferred
		if len(e.inputs) > 0 {
			res, _ = inputs(0, preferred)
		}
	}
	rv.res.ops[id] = res

	// Inputs the operation did not consult are resolved against its own
	// resolution.
	for _, in := range e.inputs {
		rv.input(in, res)
	}
	return res
}

func (rv *resolver) input(in SocketID, preferred operation.Resolution) (operation.Resolution, bool) {
	if res, ok := rv.res.inputs[in]; ok {
		return res, true
	}
	s := rv.g.sockets[in]
	if s.connection == NoConnection {
		return preferred, false
	}
	from := rv.g.sockets[rv.g.conns[s.connection].From]
	if from.operation == NoOperation {
		return preferred, false
	}
	rv.res.visits[in]++
	res := rv.res.ops[from.operation]
	if _, done := rv.res.ops[from.operation]; !done {
		res = rv.operation(from.operation, preferred)
	}
	rv.res.inputs[in] = res
	return res, true
}
