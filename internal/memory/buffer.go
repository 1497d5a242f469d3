// Package memory provides the pixel storage operations read from and write
// to. A Buffer covers a rectangle of an operation's output and stores four
// float32 channels per pixel regardless of its data type; value and vector
// data are padded.
package memory

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/specialistvlad/tilecomp/internal/datatype"
)

// Buffer is a rectangle of pixels owned by one operation. Once published
// through a Slot it must not be written again.
type Buffer struct {
	rect     image.Rectangle
	dataType datatype.DataType
	owner    string
	pixels   []float32
}

// New allocates a zeroed buffer covering rect.
func New(rect image.Rectangle, dt datatype.DataType, owner string) *Buffer {
	rect = rect.Canon()
	return &Buffer{
		rect:     rect,
		dataType: dt,
		owner:    owner,
		pixels:   make([]float32, rect.Dx()*rect.Dy()*4),
	}
}

// Rect returns the covered rectangle. Max is exclusive.
func (b *Buffer) Rect() image.Rectangle { return b.rect }

// DataType returns the resolved type of the stored data.
func (b *Buffer) DataType() datatype.DataType { return b.dataType }

// Owner returns the name of the operation that produced the buffer.
func (b *Buffer) Owner() string { return b.owner }

// Width and Height of the covered rectangle.
func (b *Buffer) Width() int  { return b.rect.Dx() }
func (b *Buffer) Height() int { return b.rect.Dy() }

// Pixels exposes the raw RGBA storage in row-major order. Callers must treat
// it as read-only once the buffer is published.
func (b *Buffer) Pixels() []float32 { return b.pixels }

func (b *Buffer) offset(x, y int) int {
	return ((y-b.rect.Min.Y)*b.rect.Dx() + (x - b.rect.Min.X)) * 4
}

// Contains reports whether (x, y) lies inside the buffer.
func (b *Buffer) Contains(x, y int) bool {
	return image.Pt(x, y).In(b.rect)
}

// Read copies the pixel at (x, y) into out. Coordinates outside the buffer
// read as transparent black.
func (b *Buffer) Read(out *[4]float32, x, y int) {
	if !b.Contains(x, y) {
		*out = [4]float32{}
		return
	}
	i := b.offset(x, y)
	copy(out[:], b.pixels[i:i+4])
}

// ReadBilinear samples at a sub-pixel position. Integer coordinates return
// the stored pixel unchanged.
func (b *Buffer) ReadBilinear(out *[4]float32, x, y float32) {
	x0f := math32.Floor(x)
	y0f := math32.Floor(y)
	fx, fy := x-x0f, y-y0f
	x0, y0 := int(x0f), int(y0f)
	if fx == 0 && fy == 0 {
		b.Read(out, x0, y0)
		return
	}

	var c00, c10, c01, c11 [4]float32
	b.Read(&c00, x0, y0)
	b.Read(&c10, x0+1, y0)
	b.Read(&c01, x0, y0+1)
	b.Read(&c11, x0+1, y0+1)
	for i := range out {
		top := c00[i]*(1-fx) + c10[i]*fx
		bottom := c01[i]*(1-fx) + c11[i]*fx
		out[i] = top*(1-fy) + bottom*fy
	}
}

// Write stores c at (x, y). Writing outside the buffer is a programming
// error.
func (b *Buffer) Write(x, y int, c [4]float32) {
	if !b.Contains(x, y) {
		panic(fmt.Sprintf("memory: write at (%d,%d) outside %v of %q", x, y, b.rect, b.owner))
	}
	i := b.offset(x, y)
	copy(b.pixels[i:i+4], c[:])
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c [4]float32) {
	for i := 0; i < len(b.pixels); i += 4 {
		copy(b.pixels[i:i+4], c[:])
	}
}

// Clone returns a deep copy that may be written independently.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{rect: b.rect, dataType: b.dataType, owner: b.owner}
	out.pixels = append([]float32(nil), b.pixels...)
	return out
}

// Equal reports whether both buffers cover the same rectangle and hold
// bit-identical pixels.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.rect != other.rect || len(b.pixels) != len(other.pixels) {
		return false
	}
	for i, v := range b.pixels {
		if math32.Float32bits(v) != math32.Float32bits(other.pixels[i]) {
			return false
		}
	}
	return true
}
