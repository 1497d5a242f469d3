package operation

import (
	"github.com/chewxy/math32"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/memory"
)

// Reader is the socket reader an operation caches for each input. It reads
// the upstream operation's published buffer in the consuming operation's
// coordinate space.
type Reader interface {
	// Read returns the nearest pixel.
	Read(out *Color, x, y float32)
	// ReadSampled interpolates bilinearly.
	ReadSampled(out *Color, x, y float32)
	// Resolution is the size of the upstream output.
	Resolution() Resolution
}

// bufferReader maps consumer coordinates into the upstream buffer according
// to a resize policy. The slot is loaded on every read because readers are
// created before the upstream buffer is published.
type bufferReader struct {
	slot   *memory.Slot
	source Resolution

	scaleX, scaleY   float32
	offsetX, offsetY float32
}

// NewReader returns a reader over slot whose content has resolution source,
// mapped onto target with the given policy.
func NewReader(slot *memory.Slot, source, target Resolution, mode datatype.ResizeMode) Reader {
	r := &bufferReader{slot: slot, source: source, scaleX: 1, scaleY: 1}
	if source == target || source.IsZero() || target.IsZero() {
		return r
	}

	sw, sh := float32(source.Width), float32(source.Height)
	tw, th := float32(target.Width), float32(target.Height)
	switch mode {
	case datatype.None:
	case datatype.Center:
		r.offsetX = (tw - sw) / 2
		r.offsetY = (th - sh) / 2
	case datatype.Stretch:
		r.scaleX = tw / sw
		r.scaleY = th / sh
	case datatype.Fit:
		s := min(tw/sw, th/sh)
		r.scaleX, r.scaleY = s, s
		r.offsetX = (tw - sw*s) / 2
		r.offsetY = (th - sh*s) / 2
	}
	return r
}

// StaticReader reads an already published buffer without any resizing.
func StaticReader(buf *memory.Buffer) Reader {
	slot := memory.NewSlot(buf.Owner())
	slot.Publish(buf)
	rect := buf.Rect()
	return &bufferReader{
		slot:   slot,
		source: Resolution{Width: rect.Max.X, Height: rect.Max.Y},
		scaleX: 1,
		scaleY: 1,
	}
}

func (r *bufferReader) Resolution() Resolution { return r.source }

func (r *bufferReader) mapPoint(x, y float32) (float32, float32) {
	return (x - r.offsetX) / r.scaleX, (y - r.offsetY) / r.scaleY
}

func (r *bufferReader) Read(out *Color, x, y float32) {
	buf := r.slot.Buffer()
	if buf == nil {
		*out = Color{}
		return
	}
	sx, sy := r.mapPoint(x, y)
	buf.Read(out, int(math32.Floor(sx)), int(math32.Floor(sy)))
}

func (r *bufferReader) ReadSampled(out *Color, x, y float32) {
	buf := r.slot.Buffer()
	if buf == nil {
		*out = Color{}
		return
	}
	sx, sy := r.mapPoint(x, y)
	buf.ReadBilinear(out, sx, sy)
}
