package operations

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

const KindMix = "mix"

// MixParams configures a Mix operation.
type MixParams struct {
	Blend  string  `param:"blend"`
	Factor float32 `param:"factor"`
	Clamp  bool    `param:"clamp"`
	Resize string  `param:"resize"`
}

// DefaultMixParams blends half of each input.
func DefaultMixParams() *MixParams {
	return &MixParams{Blend: "mix", Factor: 0.5}
}

type blendFunc func(a, b float32) float32

var blends = map[string]blendFunc{
	"mix":      func(_, b float32) float32 { return b },
	"add":      func(a, b float32) float32 { return a + b },
	"subtract": func(a, b float32) float32 { return a - b },
	"multiply": func(a, b float32) float32 { return a * b },
	"screen":   func(a, b float32) float32 { return 1 - (1-a)*(1-b) },
}

// Mix blends two colors by a factor: out = a + fac*(blend(a,b) - a). Alpha
// is taken from the first color.
type Mix struct {
	blend  blendFunc
	clamp  bool
	factor float32
	resize datatype.ResizeMode

	fac, a, b operation.Reader
}

// NewMix validates params and builds the operation.
func NewMix(p MixParams) (*Mix, error) {
	fn, ok := blends[p.Blend]
	if !ok {
		return nil, fmt.Errorf("unknown blend mode %q", p.Blend)
	}
	mode, ok := datatype.ParseResizeMode(p.Resize)
	if !ok {
		return nil, fmt.Errorf("unknown resize mode %q", p.Resize)
	}
	return &Mix{blend: fn, clamp: p.Clamp, factor: p.Factor, resize: mode}, nil
}

func (o *Mix) Kind() string { return KindMix }

func (o *Mix) Signature() operation.Signature {
	return operation.Signature{
		Inputs: []operation.InputDecl{
			{Name: "fac", Type: datatype.Value, Default: operation.Color{o.factor, o.factor, o.factor, o.factor}},
			{Name: "a", Type: datatype.Color, Resize: o.resize, Default: operation.Color{0, 0, 0, 1}},
			{Name: "b", Type: datatype.Color, Resize: o.resize, Default: operation.Color{0, 0, 0, 1}},
		},
		Outputs: []operation.OutputDecl{{Name: "image", Type: datatype.Color}},
	}
}

// DetermineResolution follows the first connected color input with a size;
// the factor never decides.
func (o *Mix) DetermineResolution(inputs operation.InputResolutions, preferred operation.Resolution) operation.Resolution {
	for _, i := range []int{1, 2} {
		if res, ok := inputs(i, preferred); ok && !res.IsZero() {
			return res
		}
	}
	return preferred
}

func (o *Mix) InitExecution(ctx *operation.ExecContext) error {
	o.fac, o.a, o.b = ctx.Input(0), ctx.Input(1), ctx.Input(2)
	return nil
}

func (o *Mix) DeinitExecution() {
	o.fac, o.a, o.b = nil, nil, nil
}

func (o *Mix) ExecutePixel(out *operation.Color, x, y int) {
	var f, a, b operation.Color
	fx, fy := float32(x), float32(y)
	o.fac.Read(&f, fx, fy)
	o.a.Read(&a, fx, fy)
	o.b.Read(&b, fx, fy)

	fac := f[0]
	for c := 0; c < 3; c++ {
		v := a[c] + fac*(o.blend(a[c], b[c])-a[c])
		if o.clamp {
			v = math32.Min(math32.Max(v, 0), 1)
		}
		out[c] = v
	}
	out[3] = a[3]
}
