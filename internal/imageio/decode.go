package imageio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/memory"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	max8  = 255
	max16 = 65535
)

// Decode reads an image and returns it as a color buffer owned by name. The
// buffer's rectangle starts at the origin whatever the image bounds are.
func Decode(r io.Reader, name string) (*memory.Buffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image '%s': %w", name, err)
	}
	return FromImage(img, name), format, nil
}

// ReadFile decodes the image file at path.
func ReadFile(path, name string) (*memory.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image '%s': %w", name, err)
	}
	defer f.Close()

	buf, _, err := Decode(f, name)
	return buf, err
}

// FromImage converts any image into a color buffer. Images with more than 8
// bits per channel keep their precision.
func FromImage(img image.Image, name string) *memory.Buffer {
	b := img.Bounds()
	buf := memory.New(image.Rect(0, 0, b.Dx(), b.Dy()), datatype.Color, name)

	switch src := img.(type) {
	case *image.NRGBA:
		fromNRGBA(buf, src)
	case *image.NRGBA64, *image.RGBA64, *image.Gray16:
		from16(buf, img)
	default:
		fromRGBA(buf, clone.AsRGBA(img))
	}
	return buf
}

func fromNRGBA(buf *memory.Buffer, src *image.NRGBA) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			p := src.Pix[i : i+4]
			buf.Write(x, y, [4]float32{
				float32(p[0]) / max8,
				float32(p[1]) / max8,
				float32(p[2]) / max8,
				float32(p[3]) / max8,
			})
		}
	}
}

// fromRGBA reads premultiplied 8-bit pixels and divides the alpha out.
func fromRGBA(buf *memory.Buffer, src *image.RGBA) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			p := src.Pix[i : i+4]
			a := float32(p[3]) / max8
			c := [4]float32{0, 0, 0, a}
			if p[3] != 0 {
				for i := range 3 {
					c[i] = float32(p[i]) / max8 / a
				}
			}
			buf.Write(x, y, c)
		}
	}
}

func from16(buf *memory.Buffer, img image.Image) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			buf.Write(x, y, [4]float32{
				float32(c.R) / max16,
				float32(c.G) / max16,
				float32(c.B) / max16,
				float32(c.A) / max16,
			})
		}
	}
}
