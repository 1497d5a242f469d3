package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/config"
	"github.com/specialistvlad/tilecomp/internal/graph"
)

// createNodes adds every operation, group proxies included.
func (b *builder) createNodes(ctx context.Context) error {
	for _, n := range b.model.Nodes {
		id, err := b.addNode(ctx, n, n.Name)
		if err != nil {
			return err
		}
		b.nodes[n.Name] = id
	}

	for _, grp := range b.model.Groups {
		proxy, err := newGroupProxy(grp)
		if err != nil {
			return err
		}
		pid, err := b.g.AddOperation(grp.Name, proxy)
		if err != nil {
			return fmt.Errorf("group '%s': %w", grp.Name, err)
		}

		x := &expansion{group: grp, proxy: pid, inner: make(map[string]graph.OperationID)}
		for _, n := range grp.Nodes {
			id, err := b.addNode(ctx, n, grp.Name+groupSeparator+n.Name)
			if err != nil {
				return fmt.Errorf("group '%s': %w", grp.Name, err)
			}
			x.inner[n.Name] = id
		}
		b.groups[grp.Name] = x
	}
	return nil
}

func (b *builder) addNode(ctx context.Context, n *config.Node, name string) (graph.OperationID, error) {
	op, err := b.registry.Build(ctx, n.Kind, n.Params, b.env)
	if err != nil {
		return graph.NoOperation, fmt.Errorf("node '%s': %w", n.Name, err)
	}
	id, err := b.g.AddOperation(name, op)
	if err != nil {
		return graph.NoOperation, fmt.Errorf("node '%s': %w", n.Name, err)
	}
	return id, nil
}
