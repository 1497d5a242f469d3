package yamlcfg

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// nodeToCty converts a YAML node into the cty value an HCL literal of the
// same shape would produce: sequences become tuples, mappings objects.
func nodeToCty(n *yaml.Node) (cty.Value, error) {
	switch n.Kind {
	case 0:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return nodeToCty(n.Content[0])
	case yaml.AliasNode:
		return nodeToCty(n.Alias)
	case yaml.ScalarNode:
		return scalarToCty(n)
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToCty(c)
			if err != nil {
				return cty.NilVal, err
			}
			vals = append(vals, v)
		}
		return cty.TupleVal(vals), nil
	case yaml.MappingNode:
		if len(n.Content) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeToCty(n.Content[i+1])
			if err != nil {
				return cty.NilVal, err
			}
			attrs[n.Content[i].Value] = v
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func scalarToCty(n *yaml.Node) (cty.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return cty.BoolVal(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return cty.NumberFloatVal(f), nil
	default:
		return cty.StringVal(n.Value), nil
	}
}

func nodesToCty(m map[string]yaml.Node) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value, len(m))
	for k, n := range m {
		v, err := nodeToCty(&n)
		if err != nil {
			return nil, fmt.Errorf("'%s': %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
