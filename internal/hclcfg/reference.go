package hclcfg

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/tilecomp/internal/socketaddr"
	"github.com/zclconf/go-cty/cty"
)

// exprToAddress reads a socket reference such as `node.blur.image` or
// `node.mix[2]`. The expression is never evaluated.
func exprToAddress(expr hcl.Expression) (socketaddr.Address, error) {
	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		return socketaddr.Address{}, fmt.Errorf("expected a socket reference: %w", diags)
	}

	var sb strings.Builder
	for _, step := range trav {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			sb.WriteString(s.Name)
		case hcl.TraverseAttr:
			sb.WriteRune('.')
			sb.WriteString(s.Name)
		case hcl.TraverseIndex:
			if s.Key.Type() != cty.Number {
				return socketaddr.Address{}, fmt.Errorf("socket index must be a number at %s", s.SrcRange)
			}
			idx, _ := s.Key.AsBigFloat().Int64()
			fmt.Fprintf(&sb, "[%d]", idx)
		default:
			return socketaddr.Address{}, fmt.Errorf("unsupported reference step at %s", step.SourceRange())
		}
	}

	addr, err := socketaddr.Parse(sb.String())
	if err != nil {
		return socketaddr.Address{}, fmt.Errorf("at %s: %w", expr.Range(), err)
	}
	return addr, nil
}

// exprToLinks reads an object of socket references keyed by input name.
func exprToLinks(expr hcl.Expression) (map[string]socketaddr.Address, error) {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("expected an object of socket references: %w", diags)
	}

	links := make(map[string]socketaddr.Address, len(pairs))
	for _, pair := range pairs {
		key := hcl.ExprAsKeyword(pair.Key)
		if key == "" {
			val, diags := pair.Key.Value(nil)
			if diags.HasErrors() || val.Type() != cty.String {
				return nil, fmt.Errorf("input names must be identifiers or strings at %s", pair.Key.Range())
			}
			key = val.AsString()
		}
		addr, err := exprToAddress(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("input '%s': %w", key, err)
		}
		links[key] = addr
	}
	return links, nil
}
