package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate checks that every registered params struct can be decoded: it
// must be a pointer to a struct and each `param` field must have a type
// cty can represent.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range r.Kinds() {
		k := r.kinds[name]
		if k.NewParams == nil {
			continue
		}
		_, fields, err := paramFields(k.NewParams())
		if err != nil {
			errs = append(errs, fmt.Sprintf("kind '%s': %v", name, err))
			continue
		}
		for param, f := range fields {
			if _, err := gocty.ImpliedType(reflect.Zero(f.Type).Interface()); err != nil {
				errs = append(errs, fmt.Sprintf("kind '%s', param '%s': could not imply cty type from Go field type %s: %v", name, param, f.Type, err))
			}
		}
		logger.Debug("Validated operation kind.", "kind", name, "params", len(fields))
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
