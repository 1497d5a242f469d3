package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/config"
	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/graph"
	"github.com/specialistvlad/tilecomp/internal/operations"
	"github.com/specialistvlad/tilecomp/internal/registry"
)

// groupSeparator joins a group name and an inner node name.
const groupSeparator = "/"

// builder holds the state of one construction.
type builder struct {
	model    *config.Model
	registry *registry.Registry
	env      *registry.Env
	g        *graph.Graph

	nodes  map[string]graph.OperationID
	groups map[string]*expansion
}

// expansion tracks a group until it is expanded.
type expansion struct {
	group *config.Group
	proxy graph.OperationID
	inner map[string]graph.OperationID
}

// Build constructs a graph from a validated model. Operations are created
// through r; env supplies the named input images.
func Build(ctx context.Context, model *config.Model, r *registry.Registry, env *registry.Env) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph description: %w", err)
	}

	b := &builder{
		model:    model,
		registry: r,
		env:      env,
		g:        graph.New(graph.WithConstants(operations.NewConstant), graph.WithLogger(logger)),
		nodes:    make(map[string]graph.OperationID),
		groups:   make(map[string]*expansion),
	}

	if err := b.createNodes(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node creation complete.", "operations", b.g.Len())

	if err := b.linkNodes(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node linking complete.")

	// Outputs naming a group output are remapped when the group expands.
	for _, out := range model.Outputs {
		sock, err := b.resolveOutput(out.From, nil)
		if err != nil {
			return nil, fmt.Errorf("output '%s': %w", out.Name, err)
		}
		if err := b.g.MarkOutput(sock); err != nil {
			return nil, fmt.Errorf("output '%s': %w", out.Name, err)
		}
	}

	for _, grp := range model.Groups {
		if err := b.expandGroup(ctx, b.groups[grp.Name]); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: Group expansion complete.", "groups", len(model.Groups))

	n := b.autoconnect()
	logger.Debug("Build: Unlinked inputs autoconnected.", "constants", n)

	if err := b.g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating graph: %w", err)
	}

	logger.Info("Build: Graph construction successful.", "operations", b.g.Len(), "outputs", len(model.Outputs))
	return b.g, nil
}
