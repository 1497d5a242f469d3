// Package progress reports the advance of an evaluation to an observer.
package progress

import (
	"context"
	"image"
	"log/slog"
	"time"
)

// Event describes one step of an evaluation.
type Event struct {
	RunID     string
	Operation string
	Kind      string
	// Tile is the index of the finished tile, Done the number of finished
	// tiles of the operation and Tiles their total.
	Tile     int
	Done     int
	Tiles    int
	Rect     image.Rectangle
	Duration time.Duration
}

// Reporter receives progress events. Calls come from a single goroutine.
type Reporter interface {
	OperationStarted(ctx context.Context, ev Event)
	TileDone(ctx context.Context, ev Event)
	OperationDone(ctx context.Context, ev Event)
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) OperationStarted(context.Context, Event) {}
func (Nop) TileDone(context.Context, Event)         {}
func (Nop) OperationDone(context.Context, Event)    {}
func (Nop) Close() error                            { return nil }

// LogReporter writes events to a logger: operations at Info, tiles at Debug.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter returns a reporter writing to logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) OperationStarted(ctx context.Context, ev Event) {
	r.logger.DebugContext(ctx, "Operation started.", "run_id", ev.RunID, "operation", ev.Operation, "kind", ev.Kind, "tiles", ev.Tiles)
}

func (r *LogReporter) TileDone(ctx context.Context, ev Event) {
	r.logger.DebugContext(ctx, "Tile done.", "run_id", ev.RunID, "operation", ev.Operation, "tile", ev.Tile, "rect", ev.Rect.String(), "done", ev.Done, "tiles", ev.Tiles)
}

func (r *LogReporter) OperationDone(ctx context.Context, ev Event) {
	r.logger.InfoContext(ctx, "Operation done.", "run_id", ev.RunID, "operation", ev.Operation, "kind", ev.Kind, "tiles", ev.Tiles, "duration", ev.Duration)
}

func (r *LogReporter) Close() error { return nil }

// Multi fans events out to several reporters.
type Multi []Reporter

func (m Multi) OperationStarted(ctx context.Context, ev Event) {
	for _, r := range m {
		r.OperationStarted(ctx, ev)
	}
}

func (m Multi) TileDone(ctx context.Context, ev Event) {
	for _, r := range m {
		r.TileDone(ctx, ev)
	}
}

func (m Multi) OperationDone(ctx context.Context, ev Event) {
	for _, r := range m {
		r.OperationDone(ctx, ev)
	}
}

// Close closes every reporter and returns the first error.
func (m Multi) Close() error {
	var first error
	for _, r := range m {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
