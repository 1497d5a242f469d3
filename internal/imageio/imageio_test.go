package imageio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient() *memory.Buffer {
	buf := memory.New(image.Rect(0, 0, 5, 3), datatype.Color, "gradient")
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			buf.Write(x, y, [4]float32{float32(x) / 4, float32(y) / 2, 0.5, 1})
		}
	}
	return buf
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, f := range []Format{PNG, TIFF} {
		var out bytes.Buffer
		require.NoError(t, Encode(&out, gradient(), f))

		got, _, err := Decode(&out, "round")
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 5, 3), got.Rect())
		assert.Equal(t, "round", got.Owner())

		var c [4]float32
		got.Read(&c, 4, 2)
		assert.Equal(t, [4]float32{1, 1, roundTo16(0.5), 1}, c, "format %d", f)
	}
}

func roundTo16(v float32) float32 {
	return float32(to16(v)) / max16
}

func TestDecode_EightBit(t *testing.T) {
	nrgba := image.NewNRGBA(image.Rect(2, 2, 4, 3))
	nrgba.SetNRGBA(2, 2, color.NRGBA{R: 255, G: 0, B: 51, A: 128})
	buf := FromImage(nrgba, "n")
	var c [4]float32
	buf.Read(&c, 0, 0)
	assert.Equal(t, [4]float32{1, 0, 0.2, float32(128) / 255}, c, "straight alpha kept")

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 255})
	FromImage(gray, "g").Read(&c, 0, 0)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, c)

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.SetRGBA(0, 0, color.RGBA{R: 100, A: 200})
	FromImage(rgba, "p").Read(&c, 0, 0)
	assert.InDelta(t, 0.5, c[0], 1e-6, "premultiplied input is divided by alpha")
	FromImage(rgba, "p").Read(&c, 1, 0)
	assert.Equal(t, [4]float32{}, c)
}

func TestToImage_DataTypes(t *testing.T) {
	val := memory.New(image.Rect(0, 0, 1, 1), datatype.Value, "v")
	val.Write(0, 0, [4]float32{2, 2, 2, 2})
	gray, ok := ToImage(val).(*image.Gray16)
	require.True(t, ok)
	assert.Equal(t, uint16(max16), gray.Gray16At(0, 0).Y, "clamped")

	vec := memory.New(image.Rect(0, 0, 1, 1), datatype.Vector, "vec")
	vec.Write(0, 0, [4]float32{-1, 0.5, 1, 0})
	n := ToImage(vec).(*image.NRGBA64).NRGBA64At(0, 0)
	assert.Equal(t, color.NRGBA64{R: 0, G: 32768, B: max16, A: max16}, n)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	require.NoError(t, WriteFile(path, gradient()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())

	assert.ErrorContains(t, WriteFile(filepath.Join(dir, "out.exr"), gradient()), "unsupported output format")
	_, err = FormatFor("a.TIFF")
	assert.NoError(t, err)
}

func TestLoadAll(t *testing.T) {
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.tif")
	require.NoError(t, WriteFile(a, gradient()))
	require.NoError(t, WriteFile(b, gradient()))

	images, err := LoadAll(ctx, map[string]string{"a": a, "b": b})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "b", images["b"].Owner())

	_, err = LoadAll(ctx, map[string]string{"a": a, "missing": filepath.Join(dir, "nope.png")})
	assert.ErrorContains(t, err, "open image 'missing'")
}
