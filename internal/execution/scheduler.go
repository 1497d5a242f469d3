package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/tilecomp/internal/ctxlog"
	"github.com/specialistvlad/tilecomp/internal/memory"
	"github.com/specialistvlad/tilecomp/internal/operation"
	"github.com/specialistvlad/tilecomp/internal/progress"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type task struct {
	st   *opState
	tile memory.Tile
}

type result struct {
	st       *opState
	tile     memory.Tile
	duration time.Duration
	err      *TileError
}

// schedule runs every tile of every operation. It returns the first tile
// failure, after all tiles already handed to workers have come back.
func (s *System) schedule(ctx context.Context, p *plan) error {
	logger := ctxlog.FromContext(ctx)
	tasks := make(chan task)
	// Each worker holds at most one task, so a result slot per worker lets
	// every worker deliver and exit even when the coordinator is gone.
	results := make(chan result, s.settings.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.settings.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results <- runTile(t)
			}
		}()
	}
	defer func() {
		close(tasks)
		wg.Wait()
	}()

	var queue []task
	for _, st := range p.order {
		if st.pending == 0 {
			queue = s.start(ctx, p, st, queue)
		}
	}

	var failure error
	inflight := 0
	done := ctx.Done()
	for (failure == nil && p.completed < len(p.order)) || inflight > 0 {
		if failure == nil && len(queue) == 0 && inflight == 0 {
			panic(fmt.Sprintf("execution: scheduler stalled with %d of %d operations complete", p.completed, len(p.order)))
		}

		// A nil channel never becomes ready, which disables the send case
		// while the queue is empty or the evaluation is aborting.
		var send chan<- task
		var next task
		if failure == nil && len(queue) > 0 {
			send = tasks
			next = queue[0]
		}

		select {
		case send <- next:
			queue = queue[1:]
			inflight++

		case r := <-results:
			inflight--
			kind := r.st.op.Kind()
			tileDuration.WithLabelValues(kind).Observe(r.duration.Seconds())
			if r.err != nil {
				tilesTotal.WithLabelValues(kind, "error").Inc()
				if failure == nil {
					failure = r.err
					queue = nil
					logger.Error("Tile failed, aborting evaluation.", "operation", r.err.Operation, "rect", r.err.Rect.String(), "cause", r.err.Cause)
				}
				continue
			}
			tilesTotal.WithLabelValues(kind, "ok").Inc()
			if failure != nil {
				continue
			}
			queue = s.tileDone(ctx, p, r, queue)

		case <-done:
			done = nil
			if failure == nil {
				failure = ctx.Err()
				queue = nil
			}
		}
	}

	if failure != nil {
		for _, st := range p.order {
			if st.span != nil && st.initialized {
				st.span.SetStatus(codes.Error, "evaluation aborted")
				st.span.End()
			}
		}
		s.deinitAll(p)
		return failure
	}
	return nil
}

// start makes an operation ready: it allocates the output buffer and queues
// the tiles overlapping the operation's area of interest.
func (s *System) start(ctx context.Context, p *plan, st *opState, queue []task) []task {
	_, st.span = tracer.Start(ctx, "execution.Operation",
		trace.WithAttributes(
			attribute.String("operation", st.name),
			attribute.String("kind", st.op.Kind()),
		),
	)
	st.started = time.Now()
	st.buf = memory.New(st.res.Rect(), st.dataType, st.name)
	for _, t := range memory.SplitTiles(st.res.Rect(), s.settings.ChunkSize) {
		if t.Rect.Overlaps(st.area) {
			st.tiles = append(st.tiles, t)
		}
	}
	st.remaining = len(st.tiles)
	st.span.SetAttributes(attribute.Int("tiles", len(st.tiles)))

	s.reporter.OperationStarted(ctx, s.event(st))
	if st.remaining == 0 {
		return s.finish(ctx, p, st, queue)
	}
	for _, t := range st.tiles {
		queue = append(queue, task{st: st, tile: t})
	}
	return queue
}

func (s *System) tileDone(ctx context.Context, p *plan, r result, queue []task) []task {
	st := r.st
	st.remaining--
	ev := s.event(st)
	ev.Tile = r.tile.Index
	ev.Rect = r.tile.Rect
	ev.Duration = r.duration
	s.reporter.TileDone(ctx, ev)
	if st.remaining > 0 {
		return queue
	}
	return s.finish(ctx, p, st, queue)
}

// finish runs after an operation's last tile: deinitialize, publish, and
// start every dependent whose inputs are now all published.
func (s *System) finish(ctx context.Context, p *plan, st *opState, queue []task) []task {
	st.deinit()
	st.slot.Publish(st.buf)
	p.completed++

	ev := s.event(st)
	ev.Duration = time.Since(st.started)
	s.reporter.OperationDone(ctx, ev)
	operationsTotal.WithLabelValues(st.op.Kind()).Inc()
	st.span.SetStatus(codes.Ok, "")
	st.span.End()

	for _, id := range s.graph.Downstream(st.id) {
		d := p.ops[id]
		d.pending--
		if d.pending == 0 {
			queue = s.start(ctx, p, d, queue)
		}
	}
	return queue
}

func (s *System) event(st *opState) progress.Event {
	return progress.Event{
		RunID:     s.runID,
		Operation: st.name,
		Kind:      st.op.Kind(),
		Tiles:     len(st.tiles),
		Done:      len(st.tiles) - st.remaining,
	}
}

// runTile computes one tile on a worker. A panicking kernel is turned into
// a TileError.
func runTile(t task) (r result) {
	st := t.st
	rect := t.tile.Rect
	r = result{st: st, tile: t.tile}
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			r.err = &TileError{Operation: st.name, Kind: st.op.Kind(), Rect: rect, Cause: v}
		}
		r.duration = time.Since(start)
	}()

	var c operation.Color
	if st.complex != nil {
		inputs := make([]*memory.Buffer, len(st.upstream))
		for i, up := range st.upstream {
			if up != nil {
				inputs[i] = up.slot.Buffer()
			}
		}
		data := st.complex.InitializeTileData(rect, inputs)
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				st.complex.ExecuteTilePixel(&c, x, y, data)
				st.buf.Write(x, y, c)
			}
		}
		return r
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			st.op.ExecutePixel(&c, x, y)
			st.buf.Write(x, y, c)
		}
	}
	return r
}
