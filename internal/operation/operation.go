package operation

import (
	"image"
	"log/slog"

	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/memory"
)

// Color is one RGBA pixel. Values are stored in the first channel and
// vectors in the first three.
type Color = [4]float32

// Resolution is the natural size of an operation's output.
type Resolution struct {
	Width  int
	Height int
}

// Rect returns the rectangle anchored at the origin.
func (r Resolution) Rect() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// IsZero reports whether the resolution has not been determined.
func (r Resolution) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}

// InputDecl declares one input socket.
type InputDecl struct {
	Name string
	// Type is the set of data types the input accepts.
	Type   datatype.DataType
	Resize datatype.ResizeMode
	// Default is the editor value used when nothing is linked.
	Default Color
}

// OutputDecl declares one output socket.
type OutputDecl struct {
	Name string
	Type datatype.DataType
}

// Signature lists an operation's sockets in order.
type Signature struct {
	Inputs  []InputDecl
	Outputs []OutputDecl
	// Complex marks operations that need per-tile initialization.
	Complex bool
}

// Operation is the executable unit.
type Operation interface {
	// Kind is the registry name of the operation type.
	Kind() string
	Signature() Signature
	// ExecutePixel writes the output at (x, y). It must not mutate shared
	// state; reads go through readers cached in InitExecution.
	ExecutePixel(out *Color, x, y int)
}

// Initializer is implemented by operations that cache readers or derived
// constants before execution.
type Initializer interface {
	InitExecution(ctx *ExecContext) error
}

// Deinitializer releases what InitExecution acquired.
type Deinitializer interface {
	DeinitExecution()
}

// Complex is implemented by operations whose Signature sets Complex.
type Complex interface {
	Operation
	// InitializeTileData runs once per tile before any pixel of it. inputs
	// holds the published buffer of each input socket in order.
	InitializeTileData(rect image.Rectangle, inputs []*memory.Buffer) any
	ExecuteTilePixel(out *Color, x, y int, data any)
}

// AreaOfInterest is implemented by operations sampling beyond the pixel
// being produced.
type AreaOfInterest interface {
	// DependingAreaOfInterest returns the region of the given input needed
	// to produce output. res is the operation's own resolution.
	DependingAreaOfInterest(output image.Rectangle, input int, res Resolution) image.Rectangle
}

// DependingArea applies op's area of interest rule or the default rule.
func DependingArea(op Operation, output image.Rectangle, input int, res Resolution) image.Rectangle {
	if aoi, ok := op.(AreaOfInterest); ok {
		return aoi.DependingAreaOfInterest(output, input, res)
	}
	return output
}

// InputResolutions resolves the resolution of an input given a preferred
// one. ok is false when the input is unconnected, in which case preferred is
// returned untouched.
type InputResolutions func(input int, preferred Resolution) (res Resolution, ok bool)

// ResolutionDeterminer overrides resolution propagation.
type ResolutionDeterminer interface {
	DetermineResolution(inputs InputResolutions, preferred Resolution) Resolution
}

// TypeNotifier is called whenever the actual data type of an input is set.
type TypeNotifier interface {
	NotifyActualDataTypeSet(input int, dt datatype.DataType)
}

// OutputTyper picks the actual type of an output whose declaration allows
// several types. inputs holds the actual types of the operation's inputs.
type OutputTyper interface {
	OutputDataType(output int, inputs []datatype.DataType) datatype.DataType
}

// ExecContext carries everything an operation may cache in InitExecution.
type ExecContext struct {
	Name       string
	Resolution Resolution
	Quality    Quality
	Inputs     []Reader
	Logger     *slog.Logger
}

// Input returns the reader of input i.
func (c *ExecContext) Input(i int) Reader {
	return c.Inputs[i]
}
