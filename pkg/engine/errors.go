package engine

import "errors"

// errCanceled unwinds the recursive traversal once a read-only iteration
// hits a node that requires recompute (spec.md §4.1, §5 Cancellation). It
// never escapes Run.
var errCanceled = errors.New("engine: iteration canceled")

// ErrNotRegistered is returned by AddEdge when either endpoint has not been
// registered yet.
var ErrNotRegistered = errors.New("engine: node not registered")

// ErrCycle is returned by Run if the registered edges contain a cycle,
// which would make topological traversal impossible (spec.md design notes:
// "no reference counting... cyclic references" are explicitly disallowed).
var ErrCycle = errors.New("engine: dependency cycle detected")

// ErrDuplicateNode is returned by Register for a name already in use.
var ErrDuplicateNode = errors.New("engine: node already registered")
