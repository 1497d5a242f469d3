package config

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/specialistvlad/tilecomp/internal/socketaddr"
)

// Validate checks the model for problems that do not need the operation
// registry: duplicate names, references to unknown nodes or groups and
// malformed settings. All problems are reported together.
func (m *Model) Validate() error {
	var errs []error

	if s := m.Settings; s != nil {
		if s.Width < 0 || s.Height < 0 || s.ChunkSize < 0 || s.Workers < 0 {
			errs = append(errs, fmt.Errorf("settings: negative values are not allowed"))
		}
		if s.Quality != "" {
			if _, err := operation.ParseQuality(s.Quality); err != nil {
				errs = append(errs, fmt.Errorf("settings: %w", err))
			}
		}
	}

	inputs := make(map[string]bool)
	for _, in := range m.Inputs {
		if inputs[in.Name] {
			errs = append(errs, fmt.Errorf("input '%s' is declared more than once", in.Name))
		}
		inputs[in.Name] = true
		if in.Path == "" {
			errs = append(errs, fmt.Errorf("input '%s' has no path", in.Name))
		}
	}

	nodes := make(map[string]bool)
	for _, n := range m.Nodes {
		if nodes[n.Name] {
			errs = append(errs, fmt.Errorf("node '%s' is declared more than once", n.Name))
		}
		nodes[n.Name] = true
	}
	groups := make(map[string]*Group)
	for _, g := range m.Groups {
		if groups[g.Name] != nil || nodes[g.Name] {
			errs = append(errs, fmt.Errorf("group '%s' clashes with another node or group", g.Name))
		}
		groups[g.Name] = g
	}

	outer := func(where string, a socketaddr.Address) {
		switch a.Scope {
		case socketaddr.ScopeNode:
			if !nodes[a.Name] {
				errs = append(errs, fmt.Errorf("%s: unknown node '%s'", where, a.Name))
			}
		case socketaddr.ScopeGroup:
			g := groups[a.Name]
			if g == nil {
				errs = append(errs, fmt.Errorf("%s: unknown group '%s'", where, a.Name))
			} else if !g.returns(a.Socket) {
				errs = append(errs, fmt.Errorf("%s: group '%s' exposes no output '%s'", where, a.Name, a.Socket))
			}
		}
	}

	for _, n := range m.Nodes {
		for socket, a := range n.Inputs {
			outer(fmt.Sprintf("node '%s' input '%s'", n.Name, socket), a)
		}
		errs = append(errs, validateResize(n)...)
	}
	for _, g := range m.Groups {
		errs = append(errs, g.validate(outer)...)
	}

	if len(m.Outputs) == 0 {
		errs = append(errs, errors.New("no outputs declared"))
	}
	for _, o := range m.Outputs {
		outer(fmt.Sprintf("output '%s'", o.Name), o.From)
	}
	return errors.Join(errs...)
}

func (g *Group) returns(name string) bool {
	for _, r := range g.Returns {
		if r.Name == name {
			return true
		}
	}
	return false
}

func (g *Group) validate(outer func(string, socketaddr.Address)) []error {
	var errs []error
	inner := make(map[string]bool)
	for _, n := range g.Nodes {
		if inner[n.Name] {
			errs = append(errs, fmt.Errorf("group '%s': node '%s' is declared more than once", g.Name, n.Name))
		}
		inner[n.Name] = true
	}
	local := func(where string, a socketaddr.Address) {
		if a.Scope != socketaddr.ScopeNode || !inner[a.Name] {
			errs = append(errs, fmt.Errorf("group '%s' %s: '%s' is not a node of the group", g.Name, where, a))
		}
	}

	exposed := make(map[string]bool)
	for _, e := range g.Exposes {
		exposed[e.Name] = true
		if e.Type != "" {
			if _, ok := datatype.Parse(e.Type); !ok {
				errs = append(errs, fmt.Errorf("group '%s' input '%s': unknown data type '%s'", g.Name, e.Name, e.Type))
			}
		}
		for _, to := range e.To {
			local(fmt.Sprintf("input '%s'", e.Name), to)
		}
	}
	for _, r := range g.Returns {
		local(fmt.Sprintf("output '%s'", r.Name), r.From)
	}
	for _, n := range g.Nodes {
		for socket, a := range n.Inputs {
			local(fmt.Sprintf("node '%s' input '%s'", n.Name, socket), a)
		}
		errs = append(errs, validateResize(n)...)
	}
	for name, a := range g.Inputs {
		if !exposed[name] {
			errs = append(errs, fmt.Errorf("group '%s' exposes no input '%s'", g.Name, name))
			continue
		}
		outer(fmt.Sprintf("group '%s' input '%s'", g.Name, name), a)
	}
	return errs
}

func validateResize(n *Node) []error {
	var errs []error
	for socket, mode := range n.Resize {
		if _, ok := datatype.ParseResizeMode(mode); !ok {
			errs = append(errs, fmt.Errorf("node '%s' input '%s': unknown resize mode '%s'", n.Name, socket, mode))
		}
	}
	return errs
}
