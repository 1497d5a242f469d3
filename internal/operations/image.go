package operations

import (
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

const KindImage = "image"

// ImageParams names the scene input an Image operation reads.
type ImageParams struct {
	Name string `param:"name"`
}

// Image is a source operation over a named input buffer. Its natural
// resolution is the size of that buffer.
type Image struct {
	name string
	buf  *memory.Buffer
	dt   datatype.DataType
}

// NewImage binds the operation to buf.
func NewImage(name string, buf *memory.Buffer) *Image {
	dt := buf.DataType()
	if !dt.IsSingle() {
		dt = datatype.Color
	}
	return &Image{name: name, buf: buf, dt: dt}
}

func (o *Image) Kind() string { return KindImage }

func (o *Image) Signature() operation.Signature {
	return operation.Signature{Outputs: []operation.OutputDecl{{Name: "image", Type: o.dt}}}
}

func (o *Image) DetermineResolution(_ operation.InputResolutions, _ operation.Resolution) operation.Resolution {
	r := o.buf.Rect()
	return operation.Resolution{Width: r.Max.X, Height: r.Max.Y}
}

func (o *Image) ExecutePixel(out *operation.Color, x, y int) {
	o.buf.Read(out, x, y)
}
