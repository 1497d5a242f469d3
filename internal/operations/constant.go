package operations

import (
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

const (
	KindSetValue  = "set_value"
	KindSetVector = "set_vector"
	KindSetColor  = "set_color"
)

// SetValue outputs a constant value at every pixel.
type SetValue struct {
	Value float32
}

func (o *SetValue) Kind() string { return KindSetValue }

func (o *SetValue) Signature() operation.Signature {
	return operation.Signature{Outputs: []operation.OutputDecl{{Name: "value", Type: datatype.Value}}}
}

func (o *SetValue) ExecutePixel(out *operation.Color, _, _ int) {
	*out = operation.Color{o.Value, o.Value, o.Value, o.Value}
}

// SetVector outputs a constant vector at every pixel.
type SetVector struct {
	X, Y, Z float32
}

func (o *SetVector) Kind() string { return KindSetVector }

func (o *SetVector) Signature() operation.Signature {
	return operation.Signature{Outputs: []operation.OutputDecl{{Name: "vector", Type: datatype.Vector}}}
}

func (o *SetVector) ExecutePixel(out *operation.Color, _, _ int) {
	*out = operation.Color{o.X, o.Y, o.Z, 0}
}

// SetColor outputs a constant color at every pixel.
type SetColor struct {
	Color operation.Color
}

func (o *SetColor) Kind() string { return KindSetColor }

func (o *SetColor) Signature() operation.Signature {
	return operation.Signature{Outputs: []operation.OutputDecl{{Name: "color", Type: datatype.Color}}}
}

func (o *SetColor) ExecutePixel(out *operation.Color, _, _ int) {
	*out = o.Color
}

// NewConstant builds the constant operation of type dt holding value. It is
// the factory the graph uses to autoconnect unlinked inputs.
func NewConstant(dt datatype.DataType, value operation.Color) operation.Operation {
	switch dt {
	case datatype.Value:
		return &SetValue{Value: value[0]}
	case datatype.Vector:
		return &SetVector{X: value[0], Y: value[1], Z: value[2]}
	default:
		return &SetColor{Color: value}
	}
}
