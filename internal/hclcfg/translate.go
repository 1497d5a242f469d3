package hclcfg

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/tilecomp/internal/config"
	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translate converts one decoded file into a partial model.
func (l *Loader) translate(ctx context.Context, root *fileRoot, dir string) (*config.Model, error) {
	m := &config.Model{}

	for _, s := range root.Settings {
		m.Merge(&config.Model{Settings: &config.Settings{
			Width:     s.Width,
			Height:    s.Height,
			ChunkSize: s.ChunkSize,
			Workers:   s.Workers,
			Quality:   s.Quality,
		}})
	}
	for _, in := range root.Inputs {
		path := in.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		m.Inputs = append(m.Inputs, &config.Input{Name: in.Name, Path: path})
	}
	for _, nb := range root.Nodes {
		n, err := translateNode(ctx, nb)
		if err != nil {
			return nil, err
		}
		m.Nodes = append(m.Nodes, n)
	}
	for _, gb := range root.Groups {
		g, err := translateGroup(ctx, gb)
		if err != nil {
			return nil, err
		}
		m.Groups = append(m.Groups, g)
	}
	for _, ob := range root.Outputs {
		from, err := exprToAddress(ob.From)
		if err != nil {
			return nil, fmt.Errorf("output '%s': %w", ob.Name, err)
		}
		m.Outputs = append(m.Outputs, &config.Output{Name: ob.Name, From: from})
	}
	return m, nil
}

func translateNode(ctx context.Context, nb *nodeBlock) (*config.Node, error) {
	n := &config.Node{
		Kind:   nb.Kind,
		Name:   nb.Name,
		Params: make(map[string]cty.Value),
		Resize: nb.Resize,
	}

	attrs, diags := nb.Params.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("node '%s': %w", nb.Name, diags)
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("node '%s' param '%s': %w", nb.Name, name, diags)
		}
		n.Params[name] = val
	}

	var err error
	if isExprDefined(ctx, nb.Inputs, "inputs") {
		if n.Inputs, err = exprToLinks(nb.Inputs); err != nil {
			return nil, fmt.Errorf("node '%s' inputs: %w", nb.Name, err)
		}
	}
	if isExprDefined(ctx, nb.Defaults, "defaults") {
		val, diags := nb.Defaults.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("node '%s' defaults: %w", nb.Name, diags)
		}
		if !val.Type().IsObjectType() && !val.Type().IsMapType() {
			return nil, fmt.Errorf("node '%s' defaults: expected an object, got %s", nb.Name, val.Type().FriendlyName())
		}
		n.Defaults = val.AsValueMap()
	}
	return n, nil
}

func translateGroup(ctx context.Context, gb *groupBlock) (*config.Group, error) {
	g := &config.Group{Name: gb.Name}

	for _, nb := range gb.Nodes {
		n, err := translateNode(ctx, nb)
		if err != nil {
			return nil, fmt.Errorf("group '%s': %w", gb.Name, err)
		}
		g.Nodes = append(g.Nodes, n)
	}
	if isExprDefined(ctx, gb.Inputs, "inputs") {
		links, err := exprToLinks(gb.Inputs)
		if err != nil {
			return nil, fmt.Errorf("group '%s' inputs: %w", gb.Name, err)
		}
		g.Inputs = links
	}

	for _, eb := range gb.Exposes {
		e := &config.ExposedInput{Name: eb.Name, Type: eb.Type}
		if isExprDefined(ctx, eb.Default, "default") {
			val, diags := eb.Default.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("group '%s' input '%s' default: %w", gb.Name, eb.Name, diags)
			}
			e.Default = &val
		}
		exprs, diags := hcl.ExprList(eb.To)
		if diags.HasErrors() {
			return nil, fmt.Errorf("group '%s' input '%s': 'to' must be a list of sockets: %w", gb.Name, eb.Name, diags)
		}
		for _, expr := range exprs {
			to, err := exprToAddress(expr)
			if err != nil {
				return nil, fmt.Errorf("group '%s' input '%s': %w", gb.Name, eb.Name, err)
			}
			e.To = append(e.To, to)
		}
		g.Exposes = append(g.Exposes, e)
	}

	for _, rb := range gb.Returns {
		from, err := exprToAddress(rb.From)
		if err != nil {
			return nil, fmt.Errorf("group '%s' output '%s': %w", gb.Name, rb.Name, err)
		}
		g.Returns = append(g.Returns, &config.ExposedOutput{Name: rb.Name, From: from})
	}
	return g, nil
}

// isExprDefined reports whether an optional attribute was present in the
// source. The decoder fills omitted optional expression fields with a
// zero-width placeholder, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}
