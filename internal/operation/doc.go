// Package operation defines the executable unit of the compositor and the
// contract between operations and the execution system.
//
// # Capabilities
//
// Every operation implements Operation: it declares its sockets through a
// Signature and evaluates one pixel at a time with ExecutePixel. Everything
// else is optional and discovered with type assertions:
//
//   - Initializer / Deinitializer bracket all pixel reads of one evaluation.
//     Readers and derived constants are cached in InitExecution and are
//     read-only while tiles execute in parallel.
//   - Complex operations (Signature.Complex) get InitializeTileData once per
//     tile and receive the returned value in ExecuteTilePixel.
//   - AreaOfInterest widens the input region an output region depends on.
//     Without it the region is passed through unchanged.
//   - ResolutionDeterminer overrides the natural output size. Without it an
//     operation takes the resolution of its first input, or the preferred
//     resolution when that input is unconnected.
//   - TypeNotifier is told the actual data type chosen for each input.
//   - OutputTyper picks the actual type of outputs declaring several types.
//
// New kinds are added by implementing these interfaces and registering a
// factory with the registry package.
package operation
