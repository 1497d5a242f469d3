// Package graph owns the operations, sockets and connections of one
// compositor evaluation.
//
// # Arena Ownership
//
// Everything lives in slices inside Graph and is referenced by integer
// handles (OperationID, SocketID, ConnectionID). Sockets and connections
// refer to each other by handle only, so relinking or removing an operation
// can never leave a dangling pointer behind: a stale handle is detected and
// reported instead.
//
//	Operation ──owns──▶ input sockets ──at most one──▶ Connection
//	          └─owns──▶ output sockets ──zero or more─▶ Connection
//
// An input socket holds at most one connection; an output socket fans out to
// any number of them. Every mutation (Connect, Disconnect, RelinkConnections,
// RelinkOutputConnections, RemoveOperation) updates both endpoints together.
//
// # Lifecycle
//
//  1. Construction: AddOperation, Connect, RelinkConnections (builder).
//  2. Typing: ResolveDataTypes, then InsertConversions.
//  3. Finalize: validation plus the derived scheduling index, built eagerly
//     so concurrent readers never race on a lazily constructed structure.
//  4. Execution: DetermineResolutions, Order, Upstream, Downstream.
//
// # Thread-Safety
//
// All exported methods are safe for concurrent use. After Finalize the graph
// is frozen and the scheduling index is read without locking.
package graph
