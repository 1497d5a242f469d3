package builder

import (
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// toColor converts a default value into a pixel. A number fills every
// channel; a list takes 3 or 4 components, the missing alpha being 0 for
// vectors and 1 otherwise.
func toColor(v cty.Value, dt datatype.DataType) (operation.Color, error) {
	if v.IsNull() || !v.IsKnown() {
		return operation.Color{}, fmt.Errorf("value must be known and not null")
	}

	if num, err := convert.Convert(v, cty.Number); err == nil {
		var f float32
		if err := gocty.FromCtyValue(num, &f); err != nil {
			return operation.Color{}, err
		}
		return operation.Color{f, f, f, f}, nil
	}

	list, err := convert.Convert(v, cty.List(cty.Number))
	if err != nil {
		return operation.Color{}, fmt.Errorf("expected a number or a list of numbers, got %s", v.Type().FriendlyName())
	}
	var comps []float32
	if err := gocty.FromCtyValue(list, &comps); err != nil {
		return operation.Color{}, err
	}

	alpha := float32(1)
	if dt == datatype.Vector {
		alpha = 0
	}
	switch len(comps) {
	case 3:
		return operation.Color{comps[0], comps[1], comps[2], alpha}, nil
	case 4:
		return operation.Color{comps[0], comps[1], comps[2], comps[3]}, nil
	}
	return operation.Color{}, fmt.Errorf("expected 3 or 4 components, got %d", len(comps))
}
