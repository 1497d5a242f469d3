package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/graph"
)

// expandGroup dissolves a group proxy into the parent graph.
//
// Each exposed input becomes a detached group output socket owned by the
// proxy input, so typing records the resolved type of the exposed value. The
// proxy's connections are then relinked onto the inner sockets; with several
// targets all but the last get a duplicate of the connection.
func (b *builder) expandGroup(ctx context.Context, x *expansion) error {
	logger := ctxlog.FromContext(ctx).With("group", x.group.Name)

	for i, e := range x.group.Exposes {
		in := b.g.Input(x.proxy, i)
		sock, _ := b.g.Socket(in)
		b.g.SetGroupOutput(in, b.g.NewGroupOutput(x.group.Name+"."+e.Name, sock.Declared), false)
		b.g.DetermineActualDataType(in)
		if out, ok := b.g.GroupOutput(in); ok {
			exposed, _ := b.g.Socket(out)
			logger.Debug("Group input typed.", "input", e.Name, "type", exposed.Actual.String())
		}

		targets := make([]graph.SocketID, 0, len(e.To))
		for _, to := range e.To {
			tgt, err := b.resolveInput(to, x)
			if err != nil {
				return fmt.Errorf("group '%s' input '%s': %w", x.group.Name, e.Name, err)
			}
			if b.g.IsConnected(tgt) {
				return fmt.Errorf("group '%s' input '%s': %s is already linked inside the group", x.group.Name, e.Name, to)
			}
			targets = append(targets, tgt)
		}
		for j, tgt := range targets {
			b.g.RelinkConnections(in, tgt, true, i, j < len(targets)-1)
		}
	}

	for i, r := range x.group.Returns {
		inner, err := b.resolveOutput(r.From, x)
		if err != nil {
			return fmt.Errorf("group '%s' output '%s': %w", x.group.Name, r.Name, err)
		}
		b.g.RelinkOutputConnections(b.g.Output(x.proxy, i), inner)
	}

	if err := b.g.RemoveOperation(x.proxy); err != nil {
		return fmt.Errorf("group '%s': %w", x.group.Name, err)
	}
	logger.Debug("Group expanded.", "inputs", len(x.group.Exposes), "outputs", len(x.group.Returns))
	return nil
}

// autoconnect feeds every unlinked input a constant holding its default.
func (b *builder) autoconnect() int {
	before := b.g.Len()
	var pending []graph.SocketID
	for id := range b.g.Operations() {
		for _, in := range b.g.Inputs(id) {
			if !b.g.IsConnected(in) {
				pending = append(pending, in)
			}
		}
	}
	for _, in := range pending {
		b.g.DetermineActualDataType(in)
		b.g.RelinkConnections(in, in, true, -1, false)
	}
	return b.g.Len() - before
}
