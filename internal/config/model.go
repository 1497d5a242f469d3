package config

import (
	"github.com/specialistvlad/tilecomp/internal/socketaddr"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a compositing
// graph description.
type Model struct {
	Settings *Settings
	Inputs   []*Input
	Nodes    []*Node
	Groups   []*Group
	Outputs  []*Output
}

// Settings carries render settings. Zero fields are left to the command line
// or to the engine defaults.
type Settings struct {
	Width     int
	Height    int
	ChunkSize int
	Workers   int
	Quality   string
}

// Input is a named image file made available to `image` nodes.
type Input struct {
	Name string
	Path string
}

// Node is one operation of the graph.
type Node struct {
	Kind   string
	Name   string
	Params map[string]cty.Value
	// Inputs links input sockets, by name, to an upstream output.
	Inputs map[string]socketaddr.Address
	// Defaults overrides the editor default of unlinked inputs.
	Defaults map[string]cty.Value
	// Resize overrides the resize mode of inputs.
	Resize map[string]string
}

// Group is a node group. Its nodes are expanded into the parent graph.
type Group struct {
	Name  string
	Nodes []*Node
	// Inputs links exposed inputs to sockets outside the group.
	Inputs  map[string]socketaddr.Address
	Exposes []*ExposedInput
	Returns []*ExposedOutput
}

// ExposedInput is a group input forwarded to sockets inside the group.
type ExposedInput struct {
	Name    string
	Type    string
	Default *cty.Value
	To      []socketaddr.Address
}

// ExposedOutput is a group output fed by a socket inside the group.
type ExposedOutput struct {
	Name string
	From socketaddr.Address
}

// Output declares a graph output.
type Output struct {
	Name string
	From socketaddr.Address
}

// Merge appends the content of other to m. Settings of other override
// non-zero fields.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	if other.Settings != nil {
		if m.Settings == nil {
			m.Settings = &Settings{}
		}
		s := other.Settings
		if s.Width != 0 {
			m.Settings.Width = s.Width
		}
		if s.Height != 0 {
			m.Settings.Height = s.Height
		}
		if s.ChunkSize != 0 {
			m.Settings.ChunkSize = s.ChunkSize
		}
		if s.Workers != 0 {
			m.Settings.Workers = s.Workers
		}
		if s.Quality != "" {
			m.Settings.Quality = s.Quality
		}
	}
	m.Inputs = append(m.Inputs, other.Inputs...)
	m.Nodes = append(m.Nodes, other.Nodes...)
	m.Groups = append(m.Groups, other.Groups...)
	m.Outputs = append(m.Outputs, other.Outputs...)
}
