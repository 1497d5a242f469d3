package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"golang.org/x/image/tiff"
)

// Format is an output file format.
type Format int

// Supported output formats.
const (
	PNG Format = iota
	TIFF
)

// FormatFor picks the output format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".tif", ".tiff":
		return TIFF, nil
	}
	return 0, fmt.Errorf("unsupported output format %q", filepath.Ext(path))
}

// ToImage converts a buffer to a 16-bit image. Value buffers become gray
// images; vectors are written as opaque colors. Channels are clamped to
// [0, 1].
func ToImage(buf *memory.Buffer) image.Image {
	r := buf.Rect()
	bounds := image.Rect(0, 0, r.Dx(), r.Dy())
	var c [4]float32

	if buf.DataType() == datatype.Value {
		img := image.NewGray16(bounds)
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				buf.Read(&c, r.Min.X+x, r.Min.Y+y)
				img.SetGray16(x, y, color.Gray16{Y: to16(c[0])})
			}
		}
		return img
	}

	img := image.NewNRGBA64(bounds)
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			buf.Read(&c, r.Min.X+x, r.Min.Y+y)
			if buf.DataType() == datatype.Vector {
				c[3] = 1
			}
			img.SetNRGBA64(x, y, color.NRGBA64{R: to16(c[0]), G: to16(c[1]), B: to16(c[2]), A: to16(c[3])})
		}
	}
	return img
}

func to16(v float32) uint16 {
	if math32.IsNaN(v) {
		return 0
	}
	return uint16(math32.Round(math32.Max(0, math32.Min(1, v)) * max16))
}

// Encode writes buf in the given format.
func Encode(w io.Writer, buf *memory.Buffer, f Format) error {
	img := ToImage(buf)
	switch f {
	case PNG:
		return png.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("unknown format %d", f)
}

// WriteFile encodes buf into path, picking the format from the extension.
func WriteFile(path string, buf *memory.Buffer) (err error) {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := Encode(out, buf, f); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
