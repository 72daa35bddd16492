package coordinator

import (
	"context"

	"github.com/cuemby/ovncontroller/pkg/engine"
)

// SBReadOnlyNodeName is the distinguished engine node every southbound
// writer node depends on to learn whether it may stage mutations this
// iteration (spec.md §4.1 "write-gating").
const SBReadOnlyNodeName = "sb-ro"

// SBReadOnlyNode exposes the coordinator's southbound writable flag as an
// ordinary engine node with no inputs of its own, so writer nodes can
// depend on it like any other node instead of reaching into the
// coordinator directly.
type SBReadOnlyNode struct {
	coordinator *Coordinator
	writable    bool
}

// NewSBReadOnlyNode wraps coordinator's southbound writable flag.
func NewSBReadOnlyNode(coordinator *Coordinator) *SBReadOnlyNode {
	return &SBReadOnlyNode{coordinator: coordinator}
}

func (n *SBReadOnlyNode) Name() string { return SBReadOnlyNodeName }

func (n *SBReadOnlyNode) Flags() engine.Flags { return 0 }

func (n *SBReadOnlyNode) Initialize(context.Context) error {
	n.writable = n.coordinator.Writable(SouthboundDB)
	return nil
}

func (n *SBReadOnlyNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	next := n.coordinator.Writable(SouthboundDB)
	changed := next != n.writable
	n.writable = next
	return changed, nil
}

func (n *SBReadOnlyNode) Handlers() map[string]engine.InputHandler { return nil }

func (n *SBReadOnlyNode) Delta() any { return n.writable }

func (n *SBReadOnlyNode) ClearTracked() {}

func (n *SBReadOnlyNode) Cleanup() {}

func (n *SBReadOnlyNode) Validity() engine.Validity { return engine.Valid }

// Writable reports the southbound database's current writable status.
func (n *SBReadOnlyNode) Writable() bool { return n.writable }
