package operations

import (
	"image"
	"log/slog"
	"testing"

	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/stretchr/testify/require"
)

func filled(w, h int, c operation.Color) *memory.Buffer {
	buf := memory.New(image.Rect(0, 0, w, h), datatype.Color, "test")
	buf.Fill(c)
	return buf
}

func initOp(t *testing.T, op operation.Operation, res operation.Resolution, q operation.Quality, inputs ...*memory.Buffer) {
	t.Helper()
	ctx := &operation.ExecContext{Name: op.Kind(), Resolution: res, Quality: q, Logger: slog.Default()}
	for _, buf := range inputs {
		ctx.Inputs = append(ctx.Inputs, operation.StaticReader(buf))
	}
	init, ok := op.(operation.Initializer)
	require.True(t, ok)
	require.NoError(t, init.InitExecution(ctx))
}
