package registry

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// paramFields maps param names to struct fields of the struct behind ptr.
func paramFields(ptr any) (reflect.Value, map[string]reflect.StructField, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("params must be a non-nil pointer to a struct, got %T", ptr)
	}
	v = v.Elem()
	fields := make(map[string]reflect.StructField)
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("param"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		fields[name] = f
	}
	return v, fields, nil
}

// DecodeParams writes each cty value onto the `param` tagged field of the
// same name. Fields without a value keep what the struct already holds.
func DecodeParams(ctx context.Context, target any, params map[string]cty.Value) error {
	v, fields, err := paramFields(target)
	if err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(params)) {
		f, ok := fields[name]
		if !ok {
			return fmt.Errorf("unknown param %q", name)
		}
		if err := decode(ctx, params[name], v.FieldByIndex(f.Index).Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode param '%s': %w", name, err)
		}
	}
	return nil
}

// decode converts val to the type implied by the Go target before decoding.
func decode(ctx context.Context, val cty.Value, goVal any) error {
	logger := ctxlog.FromContext(ctx)
	valPtr := reflect.ValueOf(goVal)

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.", "go_type", valPtr.Elem().Type().String(), "error", err)
		return gocty.FromCtyValue(val, goVal)
	}

	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted param type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}
	return gocty.FromCtyValue(converted, goVal)
}
