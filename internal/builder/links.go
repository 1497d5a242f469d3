package builder

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/tilecomp/internal/config"
	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/graph"
	"github.com/specialistvlad/tilecomp/internal/socketaddr"
)

// linkNodes connects every declared input and applies defaults and resize
// modes. Inputs are handled in name order so handles are stable across runs.
func (b *builder) linkNodes(ctx context.Context) error {
	for _, n := range b.model.Nodes {
		if err := b.linkNode(ctx, n, b.nodes[n.Name], nil); err != nil {
			return err
		}
	}

	for _, grp := range b.model.Groups {
		x := b.groups[grp.Name]
		for _, n := range grp.Nodes {
			if err := b.linkNode(ctx, n, x.inner[n.Name], x); err != nil {
				return fmt.Errorf("group '%s': %w", grp.Name, err)
			}
		}
		for _, name := range slices.Sorted(maps.Keys(grp.Inputs)) {
			in, ok := b.g.InputByName(x.proxy, name)
			if !ok {
				return fmt.Errorf("group '%s' exposes no input '%s'", grp.Name, name)
			}
			if err := b.connect(grp.Inputs[name], in, nil); err != nil {
				return fmt.Errorf("group '%s' input '%s': %w", grp.Name, name, err)
			}
		}
	}
	return nil
}

// linkNode links one node. Inside a group, scope holds the group's nodes.
func (b *builder) linkNode(ctx context.Context, n *config.Node, id graph.OperationID, scope *expansion) error {
	logger := ctxlog.FromContext(ctx)

	for _, name := range slices.Sorted(maps.Keys(n.Inputs)) {
		in, err := b.input(id, name)
		if err != nil {
			return fmt.Errorf("node '%s': %w", n.Name, err)
		}
		if err := b.connect(n.Inputs[name], in, scope); err != nil {
			return fmt.Errorf("node '%s' input '%s': %w", n.Name, name, err)
		}
		logger.Debug("Linked input.", "node", n.Name, "input", name, "from", n.Inputs[name].String())
	}

	for _, name := range slices.Sorted(maps.Keys(n.Defaults)) {
		in, err := b.input(id, name)
		if err != nil {
			return fmt.Errorf("node '%s': %w", n.Name, err)
		}
		sock, _ := b.g.Socket(in)
		c, err := toColor(n.Defaults[name], sock.Declared)
		if err != nil {
			return fmt.Errorf("node '%s' default '%s': %w", n.Name, name, err)
		}
		b.g.SetDefault(in, c)
	}

	for _, name := range slices.Sorted(maps.Keys(n.Resize)) {
		in, err := b.input(id, name)
		if err != nil {
			return fmt.Errorf("node '%s': %w", n.Name, err)
		}
		mode, ok := datatype.ParseResizeMode(n.Resize[name])
		if !ok {
			return fmt.Errorf("node '%s' input '%s': unknown resize mode '%s'", n.Name, name, n.Resize[name])
		}
		b.g.SetResizeMode(in, mode)
	}
	return nil
}

func (b *builder) connect(from socketaddr.Address, to graph.SocketID, scope *expansion) error {
	out, err := b.resolveOutput(from, scope)
	if err != nil {
		return err
	}
	_, err = b.g.Connect(out, to)
	return err
}

// input finds an input of op by name.
func (b *builder) input(op graph.OperationID, name string) (graph.SocketID, error) {
	if in, ok := b.g.InputByName(op, name); ok {
		return in, nil
	}
	return graph.NoSocket, fmt.Errorf("operation '%s' has no input '%s'", b.g.Name(op), name)
}

// resolveOutput finds the output socket an address names. With a scope the
// address is resolved among the group's nodes.
func (b *builder) resolveOutput(a socketaddr.Address, scope *expansion) (graph.SocketID, error) {
	op, err := b.operation(a, scope)
	if err != nil {
		return graph.NoSocket, err
	}
	if a.HasIndex() {
		if out := b.g.Output(op, a.Index); out != graph.NoSocket {
			return out, nil
		}
		return graph.NoSocket, fmt.Errorf("'%s' has no output %d", b.g.Name(op), a.Index)
	}
	out, ok := b.g.OutputByName(op, a.Socket)
	if !ok {
		return graph.NoSocket, fmt.Errorf("'%s' has no output '%s'", b.g.Name(op), a.Socket)
	}
	return out, nil
}

// resolveInput finds the input socket an address names inside a group.
func (b *builder) resolveInput(a socketaddr.Address, scope *expansion) (graph.SocketID, error) {
	op, err := b.operation(a, scope)
	if err != nil {
		return graph.NoSocket, err
	}
	if a.HasIndex() {
		if in := b.g.Input(op, a.Index); in != graph.NoSocket {
			return in, nil
		}
		return graph.NoSocket, fmt.Errorf("'%s' has no input %d", b.g.Name(op), a.Index)
	}
	return b.input(op, a.Socket)
}

func (b *builder) operation(a socketaddr.Address, scope *expansion) (graph.OperationID, error) {
	switch {
	case scope != nil:
		if id, ok := scope.inner[a.Name]; ok && a.Scope == socketaddr.ScopeNode {
			return id, nil
		}
	case a.Scope == socketaddr.ScopeGroup:
		if x, ok := b.groups[a.Name]; ok {
			return x.proxy, nil
		}
	default:
		if id, ok := b.nodes[a.Name]; ok {
			return id, nil
		}
	}
	return graph.NoOperation, fmt.Errorf("'%s' does not resolve to an operation", a)
}
