package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("tilecomp.execution")

var (
	// evaluationsTotal counts evaluations by result.
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tilecomp_evaluations_total",
		Help: "Total graph evaluations by result",
	}, []string{"result"})

	// evaluationDuration tracks the wall time of a whole evaluation.
	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tilecomp_evaluation_duration_seconds",
		Help:    "Graph evaluation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	// operationsTotal counts completed operations by kind.
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tilecomp_operations_total",
		Help: "Total completed operations by kind",
	}, []string{"kind"})

	// tilesTotal counts computed tiles by kind and result.
	tilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tilecomp_tiles_total",
		Help: "Total computed tiles by operation kind and result",
	}, []string{"kind", "result"})

	// tileDuration tracks the time spent computing one tile.
	tileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tilecomp_tile_duration_seconds",
		Help:    "Tile computation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10µs to ~0.3s
	}, []string{"kind"})

	// conversionsInserted counts implicit conversion operations.
	conversionsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilecomp_conversions_inserted_total",
		Help: "Total implicit conversion operations spliced into graphs",
	})
)
