// Package execution evaluates a compositor graph over tiled buffers.
//
// # Pipeline
//
// System.Execute validates the graph, resolves socket data types, splices in
// implicit conversions, freezes the graph and propagates resolutions from
// the outputs upstream. Areas of interest are then pushed upstream in
// reverse topological order so that each operation only computes the tiles
// some consumer reads. Every operation is initialized before the first tile
// is scheduled.
//
// # Scheduling
//
// A single coordinator goroutine owns all bookkeeping and feeds a fixed pool
// of workers through an unbuffered channel. An operation becomes ready once
// the buffers of all its upstream operations are published; its tiles then
// run in parallel. After the last tile the operation is deinitialized and
// its buffer published, which may make downstream operations ready.
//
//	ready op ──tiles──▶ queue ──▶ workers ──results──▶ coordinator
//	                                                     │ last tile
//	                                                     ▼
//	                                        deinit, publish, release dependents
//
// Tiles write disjoint pixel ranges of the operation's buffer and every
// pixel is a pure function of published inputs, so the result does not
// depend on the worker count.
package execution
