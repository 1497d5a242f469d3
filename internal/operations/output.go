package operations

import (
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

const (
	KindComposite = "composite"
	KindViewer    = "viewer"
)

const anyType = datatype.Value | datatype.Vector | datatype.Color

// sink copies its input through and keeps whatever type arrives, so no
// conversion is inserted in front of a graph output.
type sink struct {
	actual datatype.DataType
	input  operation.Reader
}

func (s *sink) signature() operation.Signature {
	return operation.Signature{
		Inputs:  []operation.InputDecl{{Name: "image", Type: anyType, Default: operation.Color{0, 0, 0, 1}}},
		Outputs: []operation.OutputDecl{{Name: "result", Type: anyType}},
	}
}

func (s *sink) NotifyActualDataTypeSet(_ int, dt datatype.DataType) {
	s.actual = dt
}

// ActualDataType is the type recorded from the input socket.
func (s *sink) ActualDataType() datatype.DataType {
	return s.actual
}

func (s *sink) OutputDataType(_ int, inputs []datatype.DataType) datatype.DataType {
	if s.actual.IsSingle() {
		return s.actual
	}
	if len(inputs) > 0 && inputs[0].IsSingle() {
		return inputs[0]
	}
	return datatype.Color
}

func (s *sink) InitExecution(ctx *operation.ExecContext) error {
	s.input = ctx.Input(0)
	return nil
}

func (s *sink) DeinitExecution() {
	s.input = nil
}

func (s *sink) ExecutePixel(out *operation.Color, x, y int) {
	s.input.Read(out, float32(x), float32(y))
}

// Composite is the final render output. It always has the render
// resolution and the input is fitted into it by its resize policy.
type Composite struct {
	sink
}

func NewComposite() *Composite { return &Composite{} }

func (o *Composite) Kind() string { return KindComposite }

func (o *Composite) Signature() operation.Signature { return o.signature() }

func (o *Composite) DetermineResolution(inputs operation.InputResolutions, preferred operation.Resolution) operation.Resolution {
	inputs(0, preferred)
	return preferred
}

// Viewer previews its input at the input's own resolution.
type Viewer struct {
	sink
}

func NewViewer() *Viewer { return &Viewer{} }

func (o *Viewer) Kind() string { return KindViewer }

func (o *Viewer) Signature() operation.Signature { return o.signature() }

func (o *Viewer) DetermineResolution(inputs operation.InputResolutions, preferred operation.Resolution) operation.Resolution {
	if res, ok := inputs(0, preferred); ok && !res.IsZero() {
		return res
	}
	return preferred
}
