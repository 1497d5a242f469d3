package yamlcfg

import "gopkg.in/yaml.v3"

type fileRoot struct {
	Settings *settingsDoc      `yaml:"settings"`
	Inputs   map[string]string `yaml:"inputs"`
	Nodes    []*nodeDoc        `yaml:"nodes"`
	Groups   []*groupDoc       `yaml:"groups"`
	Outputs  []*outputDoc      `yaml:"outputs"`
}

type settingsDoc struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	ChunkSize int    `yaml:"chunk_size"`
	Workers   int    `yaml:"workers"`
	Quality   string `yaml:"quality"`
}

type nodeDoc struct {
	Kind     string               `yaml:"kind"`
	Name     string               `yaml:"name"`
	Params   map[string]yaml.Node `yaml:"params"`
	Inputs   map[string]string    `yaml:"inputs"`
	Defaults map[string]yaml.Node `yaml:"defaults"`
	Resize   map[string]string    `yaml:"resize"`
}

type groupDoc struct {
	Name    string            `yaml:"name"`
	Inputs  map[string]string `yaml:"inputs"`
	Nodes   []*nodeDoc        `yaml:"nodes"`
	Exposes []*exposeInputDoc `yaml:"expose_inputs"`
	Returns []*outputDoc      `yaml:"expose_outputs"`
}

type exposeInputDoc struct {
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Default yaml.Node `yaml:"default"`
	To      []string  `yaml:"to"`
}

type outputDoc struct {
	Name string `yaml:"name"`
	From string `yaml:"from"`
}
