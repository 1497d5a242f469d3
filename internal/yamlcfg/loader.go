package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/specialistvlad/tilecomp/internal/config"
	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/fsutil"
	"github.com/specialistvlad/tilecomp/internal/socketaddr"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new YAML loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// Load decodes every YAML file found under paths. A file may hold several
// documents; all of them are merged. Unknown keys are rejected.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}

	model := &config.Model{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		for {
			var root fileRoot
			if err := dec.Decode(&root); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("failed to decode YAML file %s: %w", file, err)
			}
			part, err := translate(&root, filepath.Dir(file))
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			model.Merge(part)
		}
	}

	logger.Debug("YAML loading complete.",
		"files", len(files),
		"nodes", len(model.Nodes),
		"groups", len(model.Groups),
		"outputs", len(model.Outputs),
	)
	return model, nil
}

func translate(root *fileRoot, dir string) (*config.Model, error) {
	m := &config.Model{}
	if s := root.Settings; s != nil {
		m.Settings = &config.Settings{
			Width:     s.Width,
			Height:    s.Height,
			ChunkSize: s.ChunkSize,
			Workers:   s.Workers,
			Quality:   s.Quality,
		}
	}

	names := make([]string, 0, len(root.Inputs))
	for name := range root.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := root.Inputs[name]
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		m.Inputs = append(m.Inputs, &config.Input{Name: name, Path: path})
	}

	for _, nd := range root.Nodes {
		n, err := translateNode(nd)
		if err != nil {
			return nil, err
		}
		m.Nodes = append(m.Nodes, n)
	}
	for _, gd := range root.Groups {
		g, err := translateGroup(gd)
		if err != nil {
			return nil, err
		}
		m.Groups = append(m.Groups, g)
	}
	for _, od := range root.Outputs {
		from, err := socketaddr.Parse(od.From)
		if err != nil {
			return nil, fmt.Errorf("output '%s': %w", od.Name, err)
		}
		m.Outputs = append(m.Outputs, &config.Output{Name: od.Name, From: from})
	}
	return m, nil
}

func translateNode(nd *nodeDoc) (*config.Node, error) {
	if nd.Kind == "" || nd.Name == "" {
		return nil, fmt.Errorf("every node needs a kind and a name")
	}
	params, err := nodesToCty(nd.Params)
	if err != nil {
		return nil, fmt.Errorf("node '%s' param %w", nd.Name, err)
	}
	n := &config.Node{Kind: nd.Kind, Name: nd.Name, Params: params, Resize: nd.Resize}
	if n.Inputs, err = parseLinks(nd.Inputs); err != nil {
		return nil, fmt.Errorf("node '%s' inputs: %w", nd.Name, err)
	}
	if len(nd.Defaults) > 0 {
		if n.Defaults, err = nodesToCty(nd.Defaults); err != nil {
			return nil, fmt.Errorf("node '%s' default %w", nd.Name, err)
		}
	}
	return n, nil
}

func translateGroup(gd *groupDoc) (*config.Group, error) {
	g := &config.Group{Name: gd.Name}
	for _, nd := range gd.Nodes {
		n, err := translateNode(nd)
		if err != nil {
			return nil, fmt.Errorf("group '%s': %w", gd.Name, err)
		}
		g.Nodes = append(g.Nodes, n)
	}

	var err error
	if g.Inputs, err = parseLinks(gd.Inputs); err != nil {
		return nil, fmt.Errorf("group '%s' inputs: %w", gd.Name, err)
	}

	for _, ed := range gd.Exposes {
		e := &config.ExposedInput{Name: ed.Name, Type: ed.Type}
		if ed.Default.Kind != 0 {
			v, err := nodeToCty(&ed.Default)
			if err != nil {
				return nil, fmt.Errorf("group '%s' input '%s' default: %w", gd.Name, ed.Name, err)
			}
			e.Default = &v
		}
		for _, raw := range ed.To {
			to, err := socketaddr.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("group '%s' input '%s': %w", gd.Name, ed.Name, err)
			}
			e.To = append(e.To, to)
		}
		g.Exposes = append(g.Exposes, e)
	}

	for _, rd := range gd.Returns {
		from, err := socketaddr.Parse(rd.From)
		if err != nil {
			return nil, fmt.Errorf("group '%s' output '%s': %w", gd.Name, rd.Name, err)
		}
		g.Returns = append(g.Returns, &config.ExposedOutput{Name: rd.Name, From: from})
	}
	return g, nil
}

func parseLinks(raw map[string]string) (map[string]socketaddr.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	links := make(map[string]socketaddr.Address, len(raw))
	for socket, ref := range raw {
		addr, err := socketaddr.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("input '%s': %w", socket, err)
		}
		links[socket] = addr
	}
	return links, nil
}
