package hclcfg

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all possible top-level blocks from any file. Unknown
// blocks are rejected.
type fileRoot struct {
	Settings []*settingsBlock `hcl:"settings,block"`
	Inputs   []*inputBlock    `hcl:"input,block"`
	Nodes    []*nodeBlock     `hcl:"node,block"`
	Groups   []*groupBlock    `hcl:"group,block"`
	Outputs  []*outputBlock   `hcl:"output,block"`
}

type settingsBlock struct {
	Width     int    `hcl:"width,optional"`
	Height    int    `hcl:"height,optional"`
	ChunkSize int    `hcl:"chunk_size,optional"`
	Workers   int    `hcl:"workers,optional"`
	Quality   string `hcl:"quality,optional"`
}

type inputBlock struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

// nodeBlock leaves everything that is not a reserved attribute in Params.
type nodeBlock struct {
	Kind     string            `hcl:"kind,label"`
	Name     string            `hcl:"name,label"`
	Inputs   hcl.Expression    `hcl:"inputs,optional"`
	Defaults hcl.Expression    `hcl:"defaults,optional"`
	Resize   map[string]string `hcl:"resize,optional"`
	Params   hcl.Body          `hcl:",remain"`
}

type groupBlock struct {
	Name    string               `hcl:"name,label"`
	Inputs  hcl.Expression       `hcl:"inputs,optional"`
	Nodes   []*nodeBlock         `hcl:"node,block"`
	Exposes []*exposeInputBlock  `hcl:"expose_input,block"`
	Returns []*exposeOutputBlock `hcl:"expose_output,block"`
}

type exposeInputBlock struct {
	Name    string         `hcl:"name,label"`
	Type    string         `hcl:"type,optional"`
	Default hcl.Expression `hcl:"default,optional"`
	To      hcl.Expression `hcl:"to"`
}

type exposeOutputBlock struct {
	Name string         `hcl:"name,label"`
	From hcl.Expression `hcl:"from"`
}

type outputBlock struct {
	Name string         `hcl:"name,label"`
	From hcl.Expression `hcl:"from"`
}
