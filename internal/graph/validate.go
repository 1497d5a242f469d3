package graph

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/specialistvlad/tilecomp/internal/operation"
)

// topoOrder returns live operations so that every operation follows all of
// its upstream operations. Ties are broken by handle, which keeps the order
// deterministic.
func (g *Graph) topoOrder() ([]OperationID, error) {
	pending := make(map[OperationID]int)
	var ready []OperationID
	for i, e := range g.ops {
		if e.removed {
			continue
		}
		id := OperationID(i)
		pending[id] = len(g.upstream(id))
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]OperationID, 0, len(pending))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, d := range g.downstream(id) {
			pending[d]--
			if pending[d] == 0 {
				i, _ := slices.BinarySearch(ready, d)
				ready = slices.Insert(ready, i, d)
			}
		}
	}
	if len(order) != len(pending) {
		return order, ErrCycle
	}
	return order, nil
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// naming the first operation found on a cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.detectCycles()
}

func (g *Graph) detectCycles() error {
	// Three colours: permanent operations are fully explored, temporary ones
	// are on the current DFS path.
	permanent := make(map[OperationID]bool)
	temporary := make(map[OperationID]bool)

	var visit func(id OperationID) error
	visit = func(id OperationID) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("%w: involving operation '%s'", ErrCycle, g.ops[id].name)
		}
		temporary[id] = true
		for _, d := range g.downstream(id) {
			if err := visit(d); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for i, e := range g.ops {
		if e.removed {
			continue
		}
		if err := visit(OperationID(i)); err != nil {
			return err
		}
	}
	return nil
}

// reachable marks every operation a graph output depends on.
func (g *Graph) reachable() map[OperationID]bool {
	seen := make(map[OperationID]bool)
	var stack []OperationID
	for _, out := range g.outputs {
		stack = append(stack, g.sockets[out].operation)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.upstream(id)...)
	}
	return seen
}

// Validate reports every structural problem that would make the graph
// unexecutable: cycles, connections whose endpoints disagree or were
// removed, and unconnected inputs on operations feeding an output.
func (g *Graph) Validate() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.validate()
}

func (g *Graph) validate() error {
	var errs []error
	if len(g.outputs) == 0 {
		errs = append(errs, ErrNoOutputs)
	}
	if err := g.detectCycles(); err != nil {
		errs = append(errs, err)
	}

	for _, c := range g.conns {
		if c == nil {
			continue
		}
		from, to := g.sockets[c.From], g.sockets[c.To]
		switch {
		case from.removed || to.removed:
			errs = append(errs, fmt.Errorf("%w: %d", ErrDanglingConnection, c.ID))
		case from.operation == NoOperation:
			errs = append(errs, fmt.Errorf("%w: %s is fed by a detached group output", ErrDanglingConnection, g.socketLabel(c.To)))
		case to.connection != c.ID || !slices.Contains(from.connections, c.ID):
			errs = append(errs, fmt.Errorf("%w: %d endpoints disagree", ErrDanglingConnection, c.ID))
		}
	}

	for id := range g.reachable() {
		for _, in := range g.ops[id].inputs {
			if g.sockets[in].connection == NoConnection {
				errs = append(errs, fmt.Errorf("%w: %s", ErrUnconnectedInput, g.socketLabel(in)))
			}
		}
	}
	return errors.Join(errs...)
}

// index is the scheduling view built by Finalize. It is never mutated.
type index struct {
	order      []OperationID
	reachable  map[OperationID]bool
	upstream   map[OperationID][]OperationID
	downstream map[OperationID][]OperationID
	byName     map[string]OperationID
}

// Finalize validates the graph, builds the scheduling index and freezes the
// graph. Mutations afterwards fail with ErrFinalized.
func (g *Graph) Finalize() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.finalized {
		return nil
	}
	if err := g.validate(); err != nil {
		return err
	}

	order, err := g.topoOrder()
	if err != nil {
		return err
	}
	reach := g.reachable()
	idx := &index{
		reachable:  reach,
		upstream:   make(map[OperationID][]OperationID),
		downstream: make(map[OperationID][]OperationID),
		byName:     make(map[string]OperationID, len(g.byName)),
	}
	for _, id := range order {
		if !reach[id] {
			continue
		}
		idx.order = append(idx.order, id)
		idx.upstream[id] = g.upstream(id)
		for _, d := range g.downstream(id) {
			if reach[d] {
				idx.downstream[id] = append(idx.downstream[id], d)
			}
		}
	}
	for name, id := range g.byName {
		idx.byName[name] = id
	}
	g.index = idx
	g.finalized = true
	return nil
}

// Finalized reports whether Finalize has frozen the graph.
func (g *Graph) Finalized() bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.finalized
}

func (g *Graph) mustIndex() *index {
	if !g.Finalized() {
		panic("graph: scheduling index requested before Finalize")
	}
	return g.index
}

// Order returns the operations feeding a graph output in topological
// order. It panics before Finalize.
func (g *Graph) Order() []OperationID {
	return slices.Clone(g.mustIndex().order)
}

// Upstream returns the operations feeding id. It panics before Finalize.
func (g *Graph) Upstream(id OperationID) []OperationID {
	return g.mustIndex().upstream[id]
}

// Downstream returns the operations fed by id that contribute to an
// output. It panics before Finalize.
func (g *Graph) Downstream(id OperationID) []OperationID {
	return g.mustIndex().downstream[id]
}

// Operations yields live operations in topological order. The order is
// taken when iteration starts; operations on a cycle are not yielded.
func (g *Graph) Operations() iter.Seq2[OperationID, operation.Operation] {
	return func(yield func(OperationID, operation.Operation) bool) {
		g.mutex.RLock()
		order, _ := g.topoOrder()
		ops := make([]operation.Operation, len(order))
		for i, id := range order {
			ops[i] = g.ops[id].op
		}
		g.mutex.RUnlock()

		for i, id := range order {
			if !yield(id, ops[i]) {
				return
			}
		}
	}
}

// Connections yields live connections in creation order, taken when
// iteration starts.
func (g *Graph) Connections() iter.Seq2[ConnectionID, Connection] {
	return func(yield func(ConnectionID, Connection) bool) {
		g.mutex.RLock()
		conns := make([]Connection, 0, len(g.conns))
		for _, c := range g.conns {
			if c != nil {
				conns = append(conns, *c)
			}
		}
		g.mutex.RUnlock()

		for _, c := range conns {
			if !yield(c.ID, c) {
				return
			}
		}
	}
}
