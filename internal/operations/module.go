package operations

import (
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/specialistvlad/tilecomp/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// ValueParams configures set_value.
type ValueParams struct {
	Value float32 `param:"value"`
}

// VectorParams configures set_vector.
type VectorParams struct {
	Vector []float32 `param:"vector"`
}

// ColorParams configures set_color. Alpha defaults to 1 when three
// components are given.
type ColorParams struct {
	Color []float32 `param:"color"`
}

func toColor(v []float32, alpha float32) (operation.Color, error) {
	switch len(v) {
	case 0:
		return operation.Color{0, 0, 0, alpha}, nil
	case 3:
		return operation.Color{v[0], v[1], v[2], alpha}, nil
	case 4:
		return operation.Color{v[0], v[1], v[2], v[3]}, nil
	}
	return operation.Color{}, fmt.Errorf("expected 3 or 4 components, got %d", len(v))
}

func conversion(kind, desc string, fn func() *Convert) *registry.Kind {
	return &registry.Kind{
		Name:        kind,
		Description: desc,
		New:         func(any, *registry.Env) (operation.Operation, error) { return fn(), nil },
	}
}

// Register registers every operation kind of this package.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Kind{
		Name:        KindSetValue,
		Description: "Constant value.",
		NewParams:   func() any { return new(ValueParams) },
		New: func(p any, _ *registry.Env) (operation.Operation, error) {
			return &SetValue{Value: p.(*ValueParams).Value}, nil
		},
	})
	r.Register(&registry.Kind{
		Name:        KindSetVector,
		Description: "Constant vector.",
		NewParams:   func() any { return new(VectorParams) },
		New: func(p any, _ *registry.Env) (operation.Operation, error) {
			c, err := toColor(p.(*VectorParams).Vector, 0)
			if err != nil {
				return nil, err
			}
			return &SetVector{X: c[0], Y: c[1], Z: c[2]}, nil
		},
	})
	r.Register(&registry.Kind{
		Name:        KindSetColor,
		Description: "Constant color.",
		NewParams:   func() any { return new(ColorParams) },
		New: func(p any, _ *registry.Env) (operation.Operation, error) {
			c, err := toColor(p.(*ColorParams).Color, 1)
			if err != nil {
				return nil, err
			}
			return &SetColor{Color: c}, nil
		},
	})

	r.Register(conversion(KindColorToBW, "Luminance of a color.", NewColorToBW))
	r.Register(conversion(KindColorToValue, "Mean of the RGB channels.", NewColorToValue))
	r.Register(conversion(KindColorToVector, "Color without alpha.", NewColorToVector))
	r.Register(conversion(KindValueToColor, "Opaque gray from a value.", NewValueToColor))
	r.Register(conversion(KindValueToVector, "Vector from a value.", NewValueToVector))
	r.Register(conversion(KindVectorToColor, "Opaque color from a vector.", NewVectorToColor))
	r.Register(conversion(KindVectorToValue, "Mean of the vector components.", NewVectorToValue))

	r.Register(&registry.Kind{
		Name:        KindDirectionalBlur,
		Description: "Streak blur along a translated, scaled and rotated path.",
		NewParams:   func() any { return DefaultDirectionalBlurParams() },
		New: func(p any, _ *registry.Env) (operation.Operation, error) {
			params := *p.(*DirectionalBlurParams)
			if params.Iterations < 0 || params.Distance < 0 {
				return nil, fmt.Errorf("iterations and distance must not be negative")
			}
			return NewDirectionalBlur(params), nil
		},
	})
	r.Register(&registry.Kind{
		Name:        KindImage,
		Description: "Named input image.",
		NewParams:   func() any { return new(ImageParams) },
		New: func(p any, env *registry.Env) (operation.Operation, error) {
			name := p.(*ImageParams).Name
			buf, ok := env.Image(name)
			if !ok {
				return nil, fmt.Errorf("no input image named '%s'", name)
			}
			return NewImage(name, buf), nil
		},
	})
	r.Register(&registry.Kind{
		Name:        KindMix,
		Description: "Blend two colors by a factor.",
		NewParams:   func() any { return DefaultMixParams() },
		New: func(p any, _ *registry.Env) (operation.Operation, error) {
			mix, err := NewMix(*p.(*MixParams))
			if err != nil {
				return nil, err
			}
			return mix, nil
		},
	})
	r.Register(&registry.Kind{
		Name:        KindComposite,
		Description: "Final render output at the render resolution.",
		New:         func(any, *registry.Env) (operation.Operation, error) { return NewComposite(), nil },
	})
	r.Register(&registry.Kind{
		Name:        KindViewer,
		Description: "Preview output at the input resolution.",
		New:         func(any, *registry.Env) (operation.Operation, error) { return NewViewer(), nil },
	})
}
