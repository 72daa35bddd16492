package engine

import "context"

// State is a node's resulting state for the current epoch.
type State int

const (
	Unchanged State = iota
	Updated
	Stale
)

func (s State) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Updated:
		return "updated"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Validity reflects whether a node's cached payload is still safe to read
// incrementally, or must be thrown away and recomputed (spec.md §4.1
// "Validity").
type Validity int

const (
	Valid Validity = iota
	Invalid
)

// Flags describes the declarative properties of a node (spec.md §3).
type Flags uint8

const (
	// ClearsTrackedData marks a node that holds per-iteration tracked
	// delta data the engine must clear at the start of every iteration.
	ClearsTrackedData Flags = 1 << iota
	// MayWriteSouthbound marks a node whose Run/handlers stage southbound
	// mutations and must therefore observe the sb-ro write-gating node.
	MayWriteSouthbound
	// HasValidityCheck marks a node whose Validity() can return Invalid
	// (most nodes are always Valid and can omit checking the flag).
	HasValidityCheck
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// HandlerOutcome is the result of folding one input delta into a node's
// cached state.
type HandlerOutcome int

const (
	// HandlerUnhandled means the handler could not incorporate the delta
	// and the engine must fall back to a full recompute of the node.
	HandlerUnhandled HandlerOutcome = iota
	// HandlerUpdated means the handler mutated the node's cache and the
	// node's observable state for this epoch is Updated.
	HandlerUpdated
	// HandlerUnchanged means the handler ran but the node's cache did not
	// need to change (e.g. a delta the node does not depend on).
	HandlerUnchanged
)

// InputHandler folds a named input's delta into a node's cache without a
// full recompute (spec.md §4.1, §4.4 "Handler coverage"). Handlers are pure
// reducers: returning HandlerUnhandled is always safe.
type InputHandler func(ctx context.Context, b *Borrow, delta any) (HandlerOutcome, error)

// Node is the capability-set interface every engine-managed computation
// implements (spec.md §9 design note, option (b)).
type Node interface {
	// Name is this node's stable registration name.
	Name() string

	// Flags reports this node's declarative properties.
	Flags() Flags

	// Initialize is called once, before the first iteration.
	Initialize(ctx context.Context) error

	// Run recomputes this node's cached state from scratch, reading its
	// inputs through b. It reports whether the recomputed state differs
	// from what was cached before the call.
	Run(ctx context.Context, b *Borrow) (updated bool, err error)

	// Handlers returns this node's incremental input handlers, keyed by
	// the name of the input node each handler applies to. A node with no
	// entries here is always recomputed (spec.md §4.1).
	Handlers() map[string]InputHandler

	// Delta returns this node's tracked output for the current epoch, in
	// whatever shape downstream handlers expect (a tracked-row-delta
	// slice for a leaf, a tracked-datapath set for runtime-data, nil for
	// a node with no downstream incremental consumers). It reflects only
	// the most recent call to Run/handlers and is invalidated by the next
	// ClearTracked.
	Delta() any

	// ClearTracked discards this iteration's tracked delta. Called by the
	// engine at the start of every iteration for nodes flagged
	// ClearsTrackedData.
	ClearTracked()

	// Cleanup releases any resources held by the node. Called once at
	// shutdown.
	Cleanup()

	// Validity reports whether this node's cache can still be read
	// incrementally. Nodes without HasValidityCheck should always return
	// Valid.
	Validity() Validity
}
