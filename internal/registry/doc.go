// Package registry maps the operation kinds named in graph files to the Go
// code that builds them.
//
// Each kind pairs a params constructor, which returns a pointer to a struct
// already holding the defaults, with a factory turning the decoded params
// into an operation. Params arrive as cty values from whichever config
// format described the graph and are decoded onto `param` tagged fields.
//
// The registry is populated at startup by Modules and validated once, so a
// params struct that cannot be decoded fails before any graph is built.
package registry
