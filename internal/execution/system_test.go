package execution

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/graph"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/specialistvlad/tilecomp/internal/operations"
	"github.com/specialistvlad/tilecomp/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))
}

func add(t *testing.T, g *graph.Graph, name string, op operation.Operation) graph.OperationID {
	t.Helper()
	id, err := g.AddOperation(name, op)
	require.NoError(t, err)
	return id
}

func link(t *testing.T, g *graph.Graph, from graph.OperationID, to graph.OperationID, input int) {
	t.Helper()
	_, err := g.Connect(g.Output(from, 0), g.Input(to, input))
	require.NoError(t, err)
}

func markOutput(t *testing.T, g *graph.Graph, id graph.OperationID) {
	t.Helper()
	require.NoError(t, g.MarkOutput(g.Output(id, 0)))
}

func settings(w, h, workers int) Settings {
	return Settings{Resolution: operation.Resolution{Width: w, Height: h}, ChunkSize: 3, Workers: workers}
}

func forEachPixel(buf *memory.Buffer, fn func(x, y int, c operation.Color)) {
	r := buf.Rect()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			var c operation.Color
			buf.Read(&c, x, y)
			fn(x, y, c)
		}
	}
}

func TestExecute_ColorToValueRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		color operation.Color
		want  float32
	}{
		{"red", operation.Color{1, 0, 0, 1}, 0.2126},
		{"green", operation.Color{0, 1, 0, 1}, 0.7152},
		{"white", operation.Color{1, 1, 1, 1}, 1},
	}
	seen := make(map[float32]string)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			src := add(t, g, "color", &operations.SetColor{Color: tt.color})
			bw := add(t, g, "bw", operations.NewColorToBW())
			out := add(t, g, "composite", operations.NewComposite())
			link(t, g, src, bw, 0)
			link(t, g, bw, out, 0)
			markOutput(t, g, out)

			outs, err := New(g, settings(8, 5, 4)).Execute(testContext())
			require.NoError(t, err)
			require.Len(t, outs, 1)
			assert.Equal(t, "composite", outs[0].Name)
			assert.Equal(t, datatype.Value, outs[0].DataType)
			assert.Equal(t, image.Rect(0, 0, 8, 5), outs[0].Buffer.Rect())

			forEachPixel(outs[0].Buffer, func(x, y int, c operation.Color) {
				require.Equal(t, tt.want, c[0], "pixel (%d,%d)", x, y)
			})
			seen[tt.want] = tt.name
		})
	}
	assert.Len(t, seen, 3, "distinct outputs per color")
}

func TestExecute_InsertsImplicitConversion(t *testing.T) {
	g := graph.New()
	white := add(t, g, "white", &operations.SetColor{Color: operation.Color{1, 1, 1, 1}})
	red := add(t, g, "red", &operations.SetColor{Color: operation.Color{1, 0, 0, 1}})
	blue := add(t, g, "blue", &operations.SetColor{Color: operation.Color{0, 0, 1, 1}})
	mix, err := operations.NewMix(*operations.DefaultMixParams())
	require.NoError(t, err)
	m := add(t, g, "mix", mix)
	out := add(t, g, "viewer", operations.NewViewer())
	link(t, g, white, m, 0)
	link(t, g, red, m, 1)
	link(t, g, blue, m, 2)
	link(t, g, m, out, 0)
	markOutput(t, g, out)

	outs, err := New(g, settings(4, 4, 2)).Execute(testContext())
	require.NoError(t, err)
	assert.Equal(t, 6, g.Len(), "one conversion spliced in front of the factor")

	conn, ok := g.ConnectionOf(g.Input(m, 0))
	require.True(t, ok)
	sock, _ := g.Socket(conn.From)
	conv, _ := g.Operation(sock.Operation)
	assert.Equal(t, operations.KindColorToBW, conv.Kind())

	var c operation.Color
	outs[0].Buffer.Read(&c, 2, 2)
	assert.Equal(t, operation.Color{0, 0, 1, 1}, c, "factor 1 selects the second color")
}

// blurGraph is an image, blurred and mixed back over itself.
func blurGraph(t *testing.T) *graph.Graph {
	t.Helper()
	plate := memory.New(image.Rect(0, 0, 40, 30), datatype.Color, "plate")
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			plate.Write(x, y, operation.Color{float32(x) / 40, float32(y) / 30, float32((x*7+y*3)%11) / 11, 1})
		}
	}

	g := graph.New(graph.WithConstants(operations.NewConstant))
	img := add(t, g, "plate", operations.NewImage("plate", plate))
	blur := add(t, g, "blur", operations.NewDirectionalBlur(operations.DirectionalBlurParams{
		Iterations: 3, Distance: 0.1, Angle: 30, Zoom: 0.1, Spin: 5, CenterX: 0.4, CenterY: 0.6,
	}))
	mix, err := operations.NewMix(operations.MixParams{Blend: "screen", Factor: 0.3})
	require.NoError(t, err)
	m := add(t, g, "mix", mix)
	out := add(t, g, "viewer", operations.NewViewer())

	link(t, g, img, blur, 0)
	g.DetermineActualDataType(g.Input(m, 0))
	g.RelinkConnections(g.Input(m, 0), g.Input(m, 0), true, -1, false)
	link(t, g, blur, m, 1)
	link(t, g, img, m, 2)
	link(t, g, m, out, 0)
	markOutput(t, g, out)
	return g
}

func TestExecute_DeterministicAcrossWorkerCounts(t *testing.T) {
	run := func(workers int) *memory.Buffer {
		s := settings(40, 30, workers)
		s.ChunkSize = 7
		s.Quality = operation.QualityMedium
		outs, err := New(blurGraph(t), s).Execute(testContext())
		require.NoError(t, err)
		return outs[0].Buffer
	}

	single := run(1)
	for _, workers := range []int{2, 8, 16} {
		assert.True(t, single.Equal(run(workers)), "%d workers", workers)
	}

	var c operation.Color
	single.Read(&c, 20, 15)
	assert.NotZero(t, c[0])
}

// probe is a complex pass-through recording lifecycle violations.
type probe struct {
	inited, deinited atomic.Bool
	violations       atomic.Int32
	deinits          atomic.Int32

	mu        sync.Mutex
	tileInits map[image.Rectangle]int
	input     operation.Reader
}

type probeTile struct{ rect image.Rectangle }

func (p *probe) Kind() string { return "probe" }
func (p *probe) Signature() operation.Signature {
	return operation.Signature{
		Inputs:  []operation.InputDecl{{Name: "image", Type: datatype.Color}},
		Outputs: []operation.OutputDecl{{Name: "image", Type: datatype.Color}},
		Complex: true,
	}
}
func (p *probe) InitExecution(ctx *operation.ExecContext) error {
	p.input = ctx.Input(0)
	p.inited.Store(true)
	return nil
}
func (p *probe) DeinitExecution() {
	p.deinited.Store(true)
	p.deinits.Add(1)
}
func (p *probe) InitializeTileData(rect image.Rectangle, inputs []*memory.Buffer) any {
	if len(inputs) != 1 || inputs[0] == nil {
		p.violations.Add(1)
	}
	p.mu.Lock()
	p.tileInits[rect]++
	p.mu.Unlock()
	return &probeTile{rect: rect}
}
func (p *probe) ExecutePixel(out *operation.Color, x, y int) { p.violations.Add(1) }
func (p *probe) ExecuteTilePixel(out *operation.Color, x, y int, data any) {
	tile, ok := data.(*probeTile)
	if !ok || !image.Pt(x, y).In(tile.rect) || !p.inited.Load() || p.deinited.Load() {
		p.violations.Add(1)
	}
	p.input.Read(out, float32(x), float32(y))
}

func TestExecute_ComplexLifecycle(t *testing.T) {
	p := &probe{tileInits: make(map[image.Rectangle]int)}
	g := graph.New()
	src := add(t, g, "src", &operations.SetColor{Color: operation.Color{0.5, 0.5, 0.5, 1}})
	pr := add(t, g, "probe", p)
	out := add(t, g, "composite", operations.NewComposite())
	link(t, g, src, pr, 0)
	link(t, g, pr, out, 0)
	markOutput(t, g, out)

	outs, err := New(g, settings(10, 7, 4)).Execute(testContext())
	require.NoError(t, err)

	assert.Zero(t, p.violations.Load())
	assert.Equal(t, int32(1), p.deinits.Load())
	assert.Len(t, p.tileInits, len(memory.SplitTiles(image.Rect(0, 0, 10, 7), 3)))
	for rect, n := range p.tileInits {
		assert.Equal(t, 1, n, "tile %v initialized once", rect)
	}
	var c operation.Color
	outs[0].Buffer.Read(&c, 9, 6)
	assert.Equal(t, operation.Color{0.5, 0.5, 0.5, 1}, c)
}

// counter outputs its coordinates and counts computed pixels.
type counter struct{ pixels atomic.Int64 }

func (c *counter) Kind() string { return "counter" }
func (c *counter) Signature() operation.Signature {
	return operation.Signature{Outputs: []operation.OutputDecl{{Name: "out", Type: datatype.Color}}}
}
func (c *counter) ExecutePixel(out *operation.Color, x, y int) {
	c.pixels.Add(1)
	*out = operation.Color{float32(x), float32(y), 0, 1}
}

// corner only reads the top-left 2x2 pixels of its input.
type corner struct{ input operation.Reader }

func (c *corner) Kind() string { return "corner" }
func (c *corner) Signature() operation.Signature {
	return operation.Signature{
		Inputs:  []operation.InputDecl{{Name: "in", Type: datatype.Color}},
		Outputs: []operation.OutputDecl{{Name: "out", Type: datatype.Color}},
	}
}
func (c *corner) InitExecution(ctx *operation.ExecContext) error {
	c.input = ctx.Input(0)
	return nil
}
func (c *corner) ExecutePixel(out *operation.Color, x, y int) {
	c.input.Read(out, float32(x%2), float32(y%2))
}
func (c *corner) DependingAreaOfInterest(image.Rectangle, int, operation.Resolution) image.Rectangle {
	return image.Rect(0, 0, 2, 2)
}

func TestExecute_AreaOfInterestLimitsTiles(t *testing.T) {
	cnt := &counter{}
	g := graph.New()
	src := add(t, g, "src", cnt)
	c := add(t, g, "corner", &corner{})
	out := add(t, g, "composite", operations.NewComposite())
	link(t, g, src, c, 0)
	link(t, g, c, out, 0)
	markOutput(t, g, out)

	s := settings(16, 16, 3)
	s.ChunkSize = 4
	outs, err := New(g, s).Execute(testContext())
	require.NoError(t, err)

	assert.Equal(t, int64(16), cnt.pixels.Load(), "only the first 4x4 tile of the source is computed")
	var px operation.Color
	outs[0].Buffer.Read(&px, 15, 15)
	assert.Equal(t, operation.Color{1, 1, 0, 1}, px)
}

// exploding panics on one pixel.
type exploding struct{}

func (exploding) Kind() string { return "exploding" }
func (exploding) Signature() operation.Signature {
	return operation.Signature{Outputs: []operation.OutputDecl{{Name: "out", Type: datatype.Color}}}
}
func (exploding) ExecutePixel(out *operation.Color, x, y int) {
	if x == 5 && y == 4 {
		panic(errors.New("kernel exploded"))
	}
}

func TestExecute_TileErrorAborts(t *testing.T) {
	g := graph.New()
	src := add(t, g, "boom", exploding{})
	out := add(t, g, "viewer", operations.NewViewer())
	link(t, g, src, out, 0)
	markOutput(t, g, out)

	_, err := New(g, settings(9, 9, 4)).Execute(testContext())
	require.Error(t, err)

	var tileErr *TileError
	require.ErrorAs(t, err, &tileErr)
	assert.Equal(t, "boom", tileErr.Operation)
	assert.Equal(t, image.Rect(3, 3, 6, 6), tileErr.Rect)
	assert.EqualError(t, errors.Unwrap(err), "kernel exploded")
}

type failingInit struct{ exploding }

func (failingInit) InitExecution(*operation.ExecContext) error { return errors.New("no licence") }

func TestExecute_InitFailureDeinitializes(t *testing.T) {
	p := &probe{tileInits: make(map[image.Rectangle]int)}
	g := graph.New()
	src := add(t, g, "src", &operations.SetColor{})
	pr := add(t, g, "probe", p)
	bad := add(t, g, "bad", failingInit{})
	mix, err := operations.NewMix(*operations.DefaultMixParams())
	require.NoError(t, err)
	m := add(t, g, "mix", mix)
	link(t, g, src, pr, 0)
	link(t, g, src, m, 0)
	link(t, g, pr, m, 1)
	link(t, g, bad, m, 2)
	markOutput(t, g, m)

	_, err = New(g, settings(4, 4, 1)).Execute(testContext())
	assert.ErrorContains(t, err, "init operation 'bad': no licence")
	assert.Equal(t, int32(1), p.deinits.Load())
}

func TestExecute_InvalidGraph(t *testing.T) {
	g := graph.New()
	bw := add(t, g, "bw", operations.NewColorToBW())
	markOutput(t, g, bw)

	_, err := New(g, settings(4, 4, 1)).Execute(testContext())
	assert.ErrorIs(t, err, graph.ErrUnconnectedInput)

	_, err = New(graph.New(), Settings{}).Execute(testContext())
	assert.ErrorContains(t, err, "render resolution")
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}
func (r *recorder) OperationStarted(_ context.Context, ev progress.Event) { r.add("start " + ev.Operation) }
func (r *recorder) TileDone(_ context.Context, ev progress.Event)         { r.add("tile " + ev.Operation) }
func (r *recorder) OperationDone(_ context.Context, ev progress.Event)    { r.add("done " + ev.Operation) }
func (r *recorder) Close() error                                         { return nil }

func TestExecute_ReportsProgressInDependencyOrder(t *testing.T) {
	rec := &recorder{}
	g := graph.New()
	src := add(t, g, "src", &operations.SetColor{})
	out := add(t, g, "composite", operations.NewComposite())
	link(t, g, src, out, 0)
	markOutput(t, g, out)

	sys := New(g, settings(6, 3, 2), WithReporter(rec))
	assert.Len(t, sys.RunID(), 12)
	_, err := sys.Execute(testContext())
	require.NoError(t, err)

	idx := func(s string) int {
		for i, e := range rec.events {
			if e == s {
				return i
			}
		}
		return -1
	}
	assert.Less(t, idx("done src"), idx("start composite"))
	tiles := 0
	for _, e := range rec.events {
		if e == "tile composite" {
			tiles++
		}
	}
	assert.Equal(t, 2, tiles, "6x3 frame in 3 pixel chunks")
}

// slow is a source spending a little time on every pixel.
type slow struct{}

func (slow) Kind() string { return "slow" }
func (slow) Signature() operation.Signature {
	return operation.Signature{Outputs: []operation.OutputDecl{{Name: "out", Type: datatype.Color}}}
}
func (slow) ExecutePixel(out *operation.Color, x, y int) {
	time.Sleep(50 * time.Microsecond)
	*out = operation.Color{1, 1, 1, 1}
}

// panickingReporter fails on the first finished tile.
type panickingReporter struct{ progress.Nop }

func (panickingReporter) TileDone(context.Context, progress.Event) { panic("reporter failed") }

func TestExecute_CoordinatorPanicDoesNotHang(t *testing.T) {
	g := graph.New()
	src := add(t, g, "src", slow{})
	out := add(t, g, "composite", operations.NewComposite())
	link(t, g, src, out, 0)
	markOutput(t, g, out)

	sys := New(g, settings(60, 60, 8), WithReporter(panickingReporter{}))

	recovered := make(chan any, 1)
	go func() {
		defer func() { recovered <- recover() }()
		_, _ = sys.Execute(testContext())
	}()

	select {
	case v := <-recovered:
		assert.Equal(t, "reporter failed", v)
	case <-time.After(10 * time.Second):
		t.Fatal("Execute did not return after the coordinator panicked")
	}
}
