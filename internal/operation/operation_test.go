package operation

import (
	"image"
	"testing"

	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthrough struct{}

func (passthrough) Kind() string { return "passthrough" }
func (passthrough) Signature() Signature {
	return Signature{
		Inputs:  []InputDecl{{Name: "image", Type: datatype.Color}},
		Outputs: []OutputDecl{{Name: "image", Type: datatype.Color}},
	}
}
func (passthrough) ExecutePixel(out *Color, x, y int) {}

type widening struct{ passthrough }

func (widening) DependingAreaOfInterest(output image.Rectangle, input int, res Resolution) image.Rectangle {
	return output.Inset(-2)
}

func TestDependingArea(t *testing.T) {
	rect := image.Rect(4, 4, 8, 8)
	res := Resolution{Width: 16, Height: 16}

	assert.Equal(t, rect, DependingArea(passthrough{}, rect, 0, res))
	assert.Equal(t, image.Rect(2, 2, 10, 10), DependingArea(widening{}, rect, 0, res))
}

func TestNewQualityStep(t *testing.T) {
	testCases := []struct {
		quality  Quality
		mode     StepMode
		expected QualityStep
	}{
		{QualityHigh, StepIncrease, QualityStep{Step: 1, Offset: 4}},
		{QualityMedium, StepIncrease, QualityStep{Step: 2, Offset: 8}},
		{QualityLow, StepIncrease, QualityStep{Step: 3, Offset: 12}},
		{QualityLow, StepMultiply, QualityStep{Step: 4, Offset: 16}},
	}
	for _, tc := range testCases {
		t.Run(tc.quality.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, NewQualityStep(tc.quality, tc.mode))
		})
	}
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality("draft")
	require.NoError(t, err)
	assert.Equal(t, QualityLow, q)

	_, err = ParseQuality("ultra")
	assert.Error(t, err)
}

func newGradient(t *testing.T, w, h int) *memory.Buffer {
	t.Helper()
	buf := memory.New(image.Rect(0, 0, w, h), datatype.Color, "gradient")
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.Write(x, y, Color{float32(x), float32(y), 0, 1})
		}
	}
	return buf
}

func TestReader_ResizePolicies(t *testing.T) {
	buf := newGradient(t, 2, 2)
	slot := memory.NewSlot("gradient")
	slot.Publish(buf)
	source := Resolution{Width: 2, Height: 2}
	target := Resolution{Width: 4, Height: 4}

	var out Color
	t.Run("none anchors at the origin", func(t *testing.T) {
		r := NewReader(slot, source, target, datatype.None)
		r.Read(&out, 1, 1)
		assert.Equal(t, Color{1, 1, 0, 1}, out)
		r.Read(&out, 3, 3)
		assert.Equal(t, Color{}, out)
	})

	t.Run("center offsets by half the difference", func(t *testing.T) {
		r := NewReader(slot, source, target, datatype.Center)
		r.Read(&out, 1, 1)
		assert.Equal(t, Color{0, 0, 0, 1}, out)
		r.Read(&out, 2, 2)
		assert.Equal(t, Color{1, 1, 0, 1}, out)
	})

	t.Run("stretch scales each axis", func(t *testing.T) {
		r := NewReader(slot, source, Resolution{Width: 4, Height: 2}, datatype.Stretch)
		r.Read(&out, 3, 1)
		assert.Equal(t, Color{1, 1, 0, 1}, out)
	})

	t.Run("fit scales uniformly", func(t *testing.T) {
		r := NewReader(slot, source, Resolution{Width: 8, Height: 4}, datatype.Fit)
		r.Read(&out, 0, 0)
		assert.Equal(t, Color{}, out)
		r.Read(&out, 5, 3)
		assert.Equal(t, Color{1, 1, 0, 1}, out)
	})

	t.Run("negative fractions round down", func(t *testing.T) {
		r := NewReader(slot, source, source, datatype.None)
		r.Read(&out, -0.5, 0.5)
		assert.Equal(t, Color{}, out)
		r.Read(&out, 0.5, 0.5)
		assert.Equal(t, Color{0, 0, 0, 1}, out)
	})

	t.Run("unpublished slot reads black", func(t *testing.T) {
		r := NewReader(memory.NewSlot("later"), source, source, datatype.Center)
		out := Color{1, 1, 1, 1}
		r.Read(&out, 0, 0)
		assert.Equal(t, Color{}, out)
	})
}

func TestStaticReader(t *testing.T) {
	r := StaticReader(newGradient(t, 3, 2))
	assert.Equal(t, Resolution{Width: 3, Height: 2}, r.Resolution())

	var out Color
	r.ReadSampled(&out, 1.5, 0)
	assert.InDelta(t, 1.5, out[0], 1e-6)
}
