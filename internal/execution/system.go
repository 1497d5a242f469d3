package execution

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/graph"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/specialistvlad/tilecomp/internal/operations"
	"github.com/specialistvlad/tilecomp/internal/progress"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Output is the buffer computed for one declared graph output.
type Output struct {
	Name     string
	DataType datatype.DataType
	Buffer   *memory.Buffer
}

// System evaluates one graph with fixed settings.
type System struct {
	graph    *graph.Graph
	settings Settings
	reporter progress.Reporter
	convert  graph.ConversionFactory
	runID    string
}

// Option configures a System.
type Option func(*System)

// WithReporter sets the progress reporter.
func WithReporter(r progress.Reporter) Option {
	return func(s *System) { s.reporter = r }
}

// WithConversions replaces the factory for implicit conversions.
func WithConversions(f graph.ConversionFactory) Option {
	return func(s *System) { s.convert = f }
}

// New creates a System for g.
func New(g *graph.Graph, settings Settings, opts ...Option) *System {
	s := &System{
		graph:    g,
		settings: settings.withDefaults(),
		reporter: progress.Nop{},
		convert:  operations.NewConversion,
		runID:    uuid.NewString()[:12],
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunID identifies the evaluation in logs, traces and progress events.
func (s *System) RunID() string { return s.runID }

// opState is the coordinator's view of one operation.
type opState struct {
	id       graph.OperationID
	name     string
	op       operation.Operation
	complex  operation.Complex
	res      operation.Resolution
	dataType datatype.DataType
	slot     *memory.Slot

	// per input socket, nil when unconnected
	upstream []*opState
	resize   []datatype.ResizeMode

	area        image.Rectangle
	buf         *memory.Buffer
	tiles       []memory.Tile
	remaining   int
	pending     int
	initialized bool

	span    trace.Span
	started time.Time
}

// plan is everything the scheduler needs.
type plan struct {
	order     []*opState
	ops       map[graph.OperationID]*opState
	completed int
}

// Execute evaluates the graph and returns one buffer per declared output, in
// declaration order.
func (s *System) Execute(ctx context.Context) ([]Output, error) {
	ctx = ctxlog.With(ctx, "run_id", s.runID)
	logger := ctxlog.FromContext(ctx)

	ctx, span := tracer.Start(ctx, "execution.Evaluate",
		trace.WithAttributes(
			attribute.String("run_id", s.runID),
			attribute.Int("workers", s.settings.Workers),
			attribute.Int("chunk_size", s.settings.ChunkSize),
			attribute.String("quality", s.settings.Quality.String()),
		),
	)
	defer span.End()
	start := time.Now()

	outputs, err := s.execute(ctx)
	evaluationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		evaluationsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("Evaluation failed.", "error", err)
		return nil, err
	}

	evaluationsTotal.WithLabelValues("ok").Inc()
	span.SetStatus(codes.Ok, "")
	logger.Info("Evaluation completed.", "outputs", len(outputs), "duration", time.Since(start))
	return outputs, nil
}

func (s *System) execute(ctx context.Context) ([]Output, error) {
	if err := s.settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.prepareGraph(ctx); err != nil {
		return nil, err
	}

	p := s.plan()
	s.propagateAreas(p)

	if err := s.initialize(ctx, p); err != nil {
		return nil, err
	}
	if err := s.schedule(ctx, p); err != nil {
		return nil, err
	}
	return s.outputs(p), nil
}

// prepareGraph runs the typing passes and freezes the graph. A graph that is
// already frozen was prepared by an earlier evaluation.
func (s *System) prepareGraph(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	g := s.graph
	if g.Finalized() {
		return nil
	}

	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid graph: %w", err)
	}
	if err := g.ResolveDataTypes(); err != nil {
		return fmt.Errorf("resolve data types: %w", err)
	}
	n, err := g.InsertConversions(s.convert)
	if err != nil {
		return fmt.Errorf("insert conversions: %w", err)
	}
	conversionsInserted.Add(float64(n))
	if err := g.Finalize(); err != nil {
		return fmt.Errorf("finalize graph: %w", err)
	}
	logger.Debug("Graph prepared.", "operations", g.Len(), "conversions", n)
	return nil
}

// plan snapshots the finalized graph. A malformed graph at this point is a
// programming error and panics.
func (s *System) plan() *plan {
	g := s.graph
	res := g.DetermineResolutions(s.settings.Resolution)
	p := &plan{ops: make(map[graph.OperationID]*opState)}

	for _, id := range g.Order() {
		op, _ := g.Operation(id)
		sig := op.Signature()
		if len(sig.Outputs) != 1 {
			panic(fmt.Sprintf("execution: operation '%s' has %d outputs, want 1", g.Name(id), len(sig.Outputs)))
		}
		st := &opState{
			id:       id,
			name:     g.Name(id),
			op:       op,
			res:      res.Of(id),
			dataType: g.ActualType(g.Output(id, 0)),
			slot:     memory.NewSlot(g.Name(id)),
			pending:  len(g.Upstream(id)),
		}
		if sig.Complex {
			c, ok := op.(operation.Complex)
			if !ok {
				panic(fmt.Sprintf("execution: operation '%s' is flagged complex but has no tile entry points", st.name))
			}
			st.complex = c
		}
		for _, in := range g.Inputs(id) {
			sock, _ := g.Socket(in)
			st.resize = append(st.resize, sock.Resize)
			var up *opState
			if conn, ok := g.ConnectionOf(in); ok {
				from, _ := g.Socket(conn.From)
				up = p.ops[from.Operation]
			}
			st.upstream = append(st.upstream, up)
		}
		p.ops[id] = st
		p.order = append(p.order, st)
	}
	return p
}

// propagateAreas computes the region of each operation some consumer reads.
// Outputs need their whole frame. An input in the consumer's coordinate
// space gets the consumer's area of interest; a resized input is needed
// whole.
func (s *System) propagateAreas(p *plan) {
	for _, out := range s.graph.GraphOutputs() {
		sock, _ := s.graph.Socket(out)
		st := p.ops[sock.Operation]
		st.area = st.res.Rect()
	}
	for i := len(p.order) - 1; i >= 0; i-- {
		st := p.order[i]
		if st.area.Empty() {
			continue
		}
		for in, up := range st.upstream {
			if up == nil {
				continue
			}
			need := up.res.Rect()
			if up.res == st.res {
				need = operation.DependingArea(st.op, st.area, in, st.res).Intersect(need)
			}
			up.area = up.area.Union(need)
		}
	}
}

// initialize calls InitExecution on every operation before any tile runs.
// On failure the operations initialized so far are deinitialized.
func (s *System) initialize(ctx context.Context, p *plan) error {
	logger := ctxlog.FromContext(ctx)
	for _, st := range p.order {
		ec := &operation.ExecContext{
			Name:       st.name,
			Resolution: st.res,
			Quality:    s.settings.Quality,
			Logger:     logger.With("operation", st.name),
		}
		for in, up := range st.upstream {
			var r operation.Reader
			if up != nil {
				r = operation.NewReader(up.slot, up.res, st.res, st.resize[in])
			}
			ec.Inputs = append(ec.Inputs, r)
		}
		if init, ok := st.op.(operation.Initializer); ok {
			if err := init.InitExecution(ec); err != nil {
				s.deinitAll(p)
				return fmt.Errorf("init operation '%s': %w", st.name, err)
			}
		}
		st.initialized = true
	}
	return nil
}

func (st *opState) deinit() {
	if !st.initialized {
		return
	}
	st.initialized = false
	if d, ok := st.op.(operation.Deinitializer); ok {
		d.DeinitExecution()
	}
}

func (s *System) deinitAll(p *plan) {
	for _, st := range p.order {
		st.deinit()
	}
}

func (s *System) outputs(p *plan) []Output {
	var outs []Output
	for _, out := range s.graph.GraphOutputs() {
		sock, _ := s.graph.Socket(out)
		st := p.ops[sock.Operation]
		outs = append(outs, Output{Name: st.name, DataType: sock.Actual, Buffer: st.slot.Buffer()})
	}
	return outs
}
