package operations

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

const KindDirectionalBlur = "directional_blur"

// DirectionalBlurParams configures the streak. Angle and Spin are in
// degrees, Distance is a fraction of the image diagonal and the center is
// given as fractions of width and height.
type DirectionalBlurParams struct {
	Iterations int     `param:"iterations"`
	Angle      float32 `param:"angle"`
	Distance   float32 `param:"distance"`
	Spin       float32 `param:"spin"`
	Zoom       float32 `param:"zoom"`
	CenterX    float32 `param:"center_x"`
	CenterY    float32 `param:"center_y"`
}

// DefaultDirectionalBlurParams centers the streak with one doubling step.
func DefaultDirectionalBlurParams() *DirectionalBlurParams {
	return &DirectionalBlurParams{Iterations: 1, CenterX: 0.5, CenterY: 0.5}
}

// DirectionalBlur accumulates iterations² samples along a path that
// translates, scales and rotates around the center, and averages them.
// The per step increments are chosen so that 2^iterations steps reach the
// configured totals.
type DirectionalBlur struct {
	params DirectionalBlurParams

	input    operation.Reader
	res      operation.Resolution
	step     operation.QualityStep
	tx, ty   float32
	sc, rot  float32
	cx, cy   float32
	samples  int
	identity bool
}

// NewDirectionalBlur returns a blur with the given parameters.
func NewDirectionalBlur(p DirectionalBlurParams) *DirectionalBlur {
	return &DirectionalBlur{params: p}
}

func (o *DirectionalBlur) Kind() string { return KindDirectionalBlur }

func (o *DirectionalBlur) Signature() operation.Signature {
	return operation.Signature{
		Inputs:  []operation.InputDecl{{Name: "image", Type: datatype.Color, Resize: datatype.Center}},
		Outputs: []operation.OutputDecl{{Name: "image", Type: datatype.Color}},
		Complex: true,
	}
}

func (o *DirectionalBlur) InitExecution(ctx *operation.ExecContext) error {
	o.input = ctx.Input(0)
	o.res = ctx.Resolution
	o.step = operation.NewQualityStep(ctx.Quality, operation.StepIncrease)

	p := o.params
	o.samples = p.Iterations * p.Iterations
	o.identity = p.Iterations <= 0 || p.Distance == 0

	w, h := float32(o.res.Width), float32(o.res.Height)
	a := p.Angle * math32.Pi / 180
	itsc := 1 / math32.Pow(2, float32(p.Iterations))
	d := p.Distance * math32.Sqrt(w*w+h*h)

	o.cx = p.CenterX * w
	o.cy = p.CenterY * h
	o.tx = itsc * d * math32.Cos(a)
	o.ty = -itsc * d * math32.Sin(a)
	o.sc = itsc * p.Zoom
	o.rot = itsc * p.Spin * math32.Pi / 180
	return nil
}

func (o *DirectionalBlur) DeinitExecution() {
	o.input = nil
}

// InitializeTileData hands out the input buffer when it already lives in
// this operation's coordinate space, so samples skip the resize mapping.
func (o *DirectionalBlur) InitializeTileData(_ image.Rectangle, inputs []*memory.Buffer) any {
	if len(inputs) > 0 && inputs[0] != nil && inputs[0].Rect() == o.res.Rect() {
		return inputs[0]
	}
	return nil
}

func (o *DirectionalBlur) ExecutePixel(out *operation.Color, x, y int) {
	o.ExecuteTilePixel(out, x, y, nil)
}

func (o *DirectionalBlur) sample(out *operation.Color, x, y float32, buf *memory.Buffer) {
	if buf != nil {
		buf.ReadBilinear(out, x, y)
		return
	}
	o.input.ReadSampled(out, x, y)
}

func (o *DirectionalBlur) ExecuteTilePixel(out *operation.Color, x, y int, data any) {
	buf, _ := data.(*memory.Buffer)
	if o.identity {
		o.sample(out, float32(x), float32(y), buf)
		return
	}

	var acc, col operation.Color
	ltx, lty, lsc, lrot := o.tx, o.ty, o.sc, o.rot
	fx, fy := float32(x), float32(y)
	taken := 0
	for i := 0; i < o.samples; i++ {
		if i%o.step.Step == 0 {
			cs, ss := math32.Cos(lrot), math32.Sin(lrot)
			isc := 1 / (1 + lsc)
			v := isc*(fy-o.cy) + lty
			u := isc*(fx-o.cx) + ltx

			o.sample(&col, cs*u+ss*v+o.cx, cs*v-ss*u+o.cy, buf)
			acc[0] += col[0]
			acc[1] += col[1]
			acc[2] += col[2]
			acc[3] += col[3]
			taken++
		}
		ltx += o.tx
		lty += o.ty
		lrot += o.rot
		lsc += o.sc
	}

	n := float32(taken)
	*out = operation.Color{acc[0] / n, acc[1] / n, acc[2] / n, acc[3] / n}
}

// DependingAreaOfInterest widens the requested rectangle by the streak
// length on every side.
func (o *DirectionalBlur) DependingAreaOfInterest(output image.Rectangle, _ int, res operation.Resolution) image.Rectangle {
	dx := int(o.params.Distance * float32(res.Width))
	dy := int(o.params.Distance * float32(res.Height))
	return image.Rect(output.Min.X-dx, output.Min.Y-dy, output.Max.X+dx, output.Max.Y+dy)
}
