package registry

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/zclconf/go-cty/cty"
)

// Module is the interface that all operation packages implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Env is what factories may read besides their params.
type Env struct {
	// Images holds the named input buffers from the scene layer.
	Images map[string]*memory.Buffer
}

// Image returns a named input buffer.
func (e *Env) Image(name string) (*memory.Buffer, bool) {
	if e == nil {
		return nil, false
	}
	buf, ok := e.Images[name]
	return buf, ok
}

// Kind describes one operation type.
type Kind struct {
	Name        string
	Description string
	// NewParams returns a pointer to a params struct holding the defaults,
	// or nil when the kind takes no params.
	NewParams func() any
	// New builds the operation from the decoded params.
	New func(params any, env *Env) (operation.Operation, error)
}

// Registry holds the registered kinds of a single application instance.
type Registry struct {
	kinds map[string]*Kind
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// Register adds a kind. Registering the same name twice is a programming
// error.
func (r *Registry) Register(k *Kind) {
	if k == nil || k.Name == "" || k.New == nil {
		panic("registry: kind needs a name and a factory")
	}
	if _, exists := r.kinds[k.Name]; exists {
		panic(fmt.Sprintf("operation kind '%s' already registered", k.Name))
	}
	slog.Debug("Registering operation kind.", "kind", k.Name)
	r.kinds[k.Name] = k
}

// Lookup finds a kind by name.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	return slices.Sorted(maps.Keys(r.kinds))
}

// Build decodes params for the named kind and builds the operation.
func (r *Registry) Build(ctx context.Context, kind string, params map[string]cty.Value, env *Env) (operation.Operation, error) {
	logger := ctxlog.FromContext(ctx)
	k, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown operation kind '%s'", kind)
	}

	var p any
	if k.NewParams != nil {
		p = k.NewParams()
		if err := DecodeParams(ctx, p, params); err != nil {
			return nil, fmt.Errorf("operation kind '%s': %w", kind, err)
		}
	} else if len(params) > 0 {
		return nil, fmt.Errorf("operation kind '%s' takes no params", kind)
	}

	op, err := k.New(p, env)
	if err != nil {
		return nil, fmt.Errorf("operation kind '%s': %w", kind, err)
	}
	logger.Debug("Built operation.", "kind", kind)
	return op, nil
}
