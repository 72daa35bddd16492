package engine

// Borrow is the engine's short-lived, read-only handle onto the node
// registry. A node's Run or handler callback uses it to look up another
// node's current payload; per spec.md §9, the reference must not outlive
// that single call — nodes never cache pointers to each other's payloads
// across iterations, they re-borrow at the start of every callback.
type Borrow struct {
	engine *Engine
}

// Node returns the named node, or (nil, false) if it is not registered.
// Callers type-assert the result to the concrete node type to reach its
// read accessors, e.g.:
//
//	if n, ok := b.Node("runtime_data"); ok {
//	    rd := n.(*nodes.RuntimeDataNode)
//	    for _, dp := range rd.LocalDatapaths() { ... }
//	}
func (b *Borrow) Node(name string) (Node, bool) {
	n, ok := b.engine.nodes[name]
	return n, ok
}

// MustNode returns the named node and panics if it is not registered. Meant
// for a node's own Initialize, where a missing input is a wiring bug, not a
// runtime condition to handle gracefully.
func (b *Borrow) MustNode(name string) Node {
	n, ok := b.engine.nodes[name]
	if !ok {
		panic("engine: borrow of unregistered node " + name)
	}
	return n
}

// Epoch returns the engine's current run epoch (spec.md §3 "Engine-run
// epoch").
func (b *Borrow) Epoch() uint64 {
	return b.engine.epoch
}
