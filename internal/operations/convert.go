package operations

import (
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

const (
	KindColorToBW     = "color_to_bw"
	KindColorToValue  = "color_to_value"
	KindColorToVector = "color_to_vector"
	KindValueToColor  = "value_to_color"
	KindValueToVector = "value_to_vector"
	KindVectorToColor = "vector_to_color"
	KindVectorToValue = "vector_to_value"
)

// Rec.709 luma weights. Their float32 sum is exactly 1, so white maps to 1.
const (
	lumR float32 = 0.2126
	lumG float32 = 0.7152
	lumB float32 = 0.0722
)

// Luminance is the luminance of an sRGB encoded color. The explicit
// conversions keep each product rounded to float32 so the result does not
// depend on fused multiply-add support.
func Luminance(c operation.Color) float32 {
	return float32(c[0]*lumR) + float32(c[1]*lumG) + float32(c[2]*lumB)
}

// Convert is a single input, single output per-pixel conversion.
type Convert struct {
	kind  string
	from  datatype.DataType
	to    datatype.DataType
	pixel func(out *operation.Color, in operation.Color)

	input operation.Reader
}

func (c *Convert) Kind() string { return c.kind }

func (c *Convert) Signature() operation.Signature {
	return operation.Signature{
		Inputs:  []operation.InputDecl{{Name: "input", Type: c.from}},
		Outputs: []operation.OutputDecl{{Name: "output", Type: c.to}},
	}
}

func (c *Convert) InitExecution(ctx *operation.ExecContext) error {
	c.input = ctx.Input(0)
	return nil
}

func (c *Convert) DeinitExecution() {
	c.input = nil
}

func (c *Convert) ExecutePixel(out *operation.Color, x, y int) {
	var in operation.Color
	c.input.Read(&in, float32(x), float32(y))
	c.pixel(out, in)
}

func value(v float32) operation.Color { return operation.Color{v, v, v, v} }

// NewColorToBW converts a color to its luminance.
func NewColorToBW() *Convert {
	return &Convert{kind: KindColorToBW, from: datatype.Color, to: datatype.Value,
		pixel: func(out *operation.Color, in operation.Color) { *out = value(Luminance(in)) }}
}

// NewColorToValue converts a color to the mean of its RGB channels.
func NewColorToValue() *Convert {
	return &Convert{kind: KindColorToValue, from: datatype.Color, to: datatype.Value,
		pixel: func(out *operation.Color, in operation.Color) { *out = value((in[0] + in[1] + in[2]) / 3) }}
}

// NewColorToVector drops alpha.
func NewColorToVector() *Convert {
	return &Convert{kind: KindColorToVector, from: datatype.Color, to: datatype.Vector,
		pixel: func(out *operation.Color, in operation.Color) { *out = operation.Color{in[0], in[1], in[2], 0} }}
}

// NewValueToColor replicates a value as an opaque gray.
func NewValueToColor() *Convert {
	return &Convert{kind: KindValueToColor, from: datatype.Value, to: datatype.Color,
		pixel: func(out *operation.Color, in operation.Color) { *out = operation.Color{in[0], in[0], in[0], 1} }}
}

// NewValueToVector replicates a value over the three vector components.
func NewValueToVector() *Convert {
	return &Convert{kind: KindValueToVector, from: datatype.Value, to: datatype.Vector,
		pixel: func(out *operation.Color, in operation.Color) { *out = operation.Color{in[0], in[0], in[0], 0} }}
}

// NewVectorToColor treats a vector as an opaque color.
func NewVectorToColor() *Convert {
	return &Convert{kind: KindVectorToColor, from: datatype.Vector, to: datatype.Color,
		pixel: func(out *operation.Color, in operation.Color) { *out = operation.Color{in[0], in[1], in[2], 1} }}
}

// NewVectorToValue averages the vector components.
func NewVectorToValue() *Convert {
	return &Convert{kind: KindVectorToValue, from: datatype.Vector, to: datatype.Value,
		pixel: func(out *operation.Color, in operation.Color) { *out = value((in[0] + in[1] + in[2]) / 3) }}
}

// NewConversion returns the implicit conversion from one actual type to
// another, or nil when none is needed. Color to value uses luminance.
func NewConversion(from, to datatype.DataType) operation.Operation {
	switch {
	case from == to:
		return nil
	case from == datatype.Color && to == datatype.Value:
		return NewColorToBW()
	case from == datatype.Color && to == datatype.Vector:
		return NewColorToVector()
	case from == datatype.Value && to == datatype.Color:
		return NewValueToColor()
	case from == datatype.Value && to == datatype.Vector:
		return NewValueToVector()
	case from == datatype.Vector && to == datatype.Color:
		return NewVectorToColor()
	case from == datatype.Vector && to == datatype.Value:
		return NewVectorToValue()
	}
	return nil
}
