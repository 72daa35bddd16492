/*
Package engine implements the incremental-computation DAG runtime at the
core of ovncontroller (spec.md §4.1).

Nodes are registered once at startup along with their input edges. Each
iteration of the daemon's main loop calls Engine.Run, which walks the graph
in dependency order and, for every node, chooses between two strategies:

  - recompute: call the node's Run callback from scratch
  - handle: fold each updated input's delta through a registered
    InputHandler, falling back to recompute if any handler declines
    (HandlerUnhandled)

A node that holds row pointers into a table that was just re-snapshotted
marks itself Invalid, which forces recompute regardless of which inputs
changed. A read-only iteration (no writable transaction available) that
reaches a node requiring recompute is Canceled rather than partially
applied: the engine aborts the walk, leaves every node's cached state
untouched, and arms force-recompute for the next iteration.

Nodes never hold references into each other's payloads across iterations.
Borrow is the engine's short-lived, read-only handle for a node to look up
another node's current payload from inside its own Run or handler callback
(design note in spec.md §9); the reference must not outlive that call.
*/
package engine
