package ovsdb

import (
	"context"

	"github.com/cuemby/ovncontroller/pkg/engine"
)

// Source produces a fresh snapshot and delta for one table on demand. A
// real implementation keeps an open monitor session against either the
// southbound database or the local virtual-switch database; Refresh is
// called once per engine iteration and must not block past ctx.
type Source[R any] interface {
	Refresh(ctx context.Context) (snapshot []R, delta []RowDelta[R], err error)
	// Connected reports whether the underlying session is currently
	// established. A false return marks the leaf Invalid, forcing every
	// downstream node back onto a full recompute (spec.md §4.2 "Contract").
	Connected() bool
}

// LeafNode adapts a Table[R] and its Source into an engine.Node with no
// inputs, suitable for direct registration into the engine graph.
type LeafNode[R any] struct {
	name   string
	table  *Table[R]
	source Source[R]
}

// NewLeafNode wires a table to the source that feeds it.
func NewLeafNode[R any](name string, table *Table[R], source Source[R]) *LeafNode[R] {
	return &LeafNode[R]{name: name, table: table, source: source}
}

func (n *LeafNode[R]) Name() string { return n.name }

func (n *LeafNode[R]) Flags() engine.Flags {
	return engine.ClearsTrackedData | engine.HasValidityCheck
}

func (n *LeafNode[R]) Initialize(ctx context.Context) error {
	snapshot, delta, err := n.source.Refresh(ctx)
	if err != nil {
		return err
	}
	n.table.Replace(snapshot, delta)
	return nil
}

func (n *LeafNode[R]) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	snapshot, delta, err := n.source.Refresh(ctx)
	if err != nil {
		return false, err
	}
	n.table.Replace(snapshot, delta)
	return len(delta) > 0, nil
}

// Handlers is always empty: a leaf's only input is the external database
// connection, which has no delta representation the engine graph models.
func (n *LeafNode[R]) Handlers() map[string]engine.InputHandler { return nil }

func (n *LeafNode[R]) Delta() any { return n.table.Tracked() }

func (n *LeafNode[R]) ClearTracked() { n.table.ClearTracked() }

func (n *LeafNode[R]) Cleanup() {}

func (n *LeafNode[R]) Validity() engine.Validity {
	if n.source.Connected() {
		return engine.Valid
	}
	return engine.Invalid
}

// Table exposes the underlying table for downstream nodes to borrow from.
func (n *LeafNode[R]) Table() *Table[R] { return n.table }
