package execution

import (
	"fmt"
	"image"
)

// TileError reports a kernel failure while computing one tile. The
// evaluation is aborted when one occurs.
type TileError struct {
	Operation string
	Kind      string
	Rect      image.Rectangle
	Cause     any
}

func (e *TileError) Error() string {
	return fmt.Sprintf("operation '%s' (%s) failed on tile %v: %v", e.Operation, e.Kind, e.Rect, e.Cause)
}

// Unwrap exposes the cause when the kernel panicked with an error.
func (e *TileError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
