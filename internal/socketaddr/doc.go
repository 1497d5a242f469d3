/*
Package socketaddr provides the structured form of a socket reference used in
graph description files.

The canonical format is `scope.name.socket`, e.g. `node.blur.image` or
`group.grade.result`. The scope may be omitted and defaults to `node`. A socket
may be addressed by position instead of by name with an index suffix on the
operation segment: `node.mix[2]` is the third socket of `mix`.
*/
package socketaddr
