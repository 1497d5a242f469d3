// Package operations contains the concrete compositor operations and the
// Module that registers them.
//
// Single channel values are replicated across all four channels of a pixel;
// vectors occupy the first three with alpha left at zero.
package operations
