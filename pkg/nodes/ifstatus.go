package nodes

import (
	"context"
	"sync"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/openflow"
)

// IfStatusNodeName is this node's registered engine.Node name.
const IfStatusNodeName = "if_status_mgr"

// IfStatusState is one stage of a local port's activation lifecycle
// (spec.md §4.6).
type IfStatusState int

const (
	StateClaimed IfStatusState = iota
	StateInstalled
	StateReady
	StateReleased
	StateRemoved
)

// IfStatusNode drives each local port through claimed → installed → ready
// (or released → removed) by subscribing to the OpenFlow sequence-number
// subsystem rather than assuming a flow write has taken effect as soon as
// it is issued (spec.md §4.6).
type IfStatusNode struct {
	RuntimeData *RuntimeDataNode
	Writer      openflow.Writer
	Seqno       *openflow.SeqnoTracker

	mu        sync.Mutex
	states    map[model.UUID]IfStatusState
	activated []model.UUID // ActivatedPorts queue consumed by pflow this iteration
}

func (n *IfStatusNode) Name() string { return IfStatusNodeName }

func (n *IfStatusNode) Flags() engine.Flags { return engine.ClearsTrackedData }

func (n *IfStatusNode) Initialize(ctx context.Context) error {
	n.states = make(map[model.UUID]IfStatusState)
	return nil
}

func (n *IfStatusNode) Handlers() map[string]engine.InputHandler {
	return map[string]engine.InputHandler{
		RuntimeDataNodeName: func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			return n.syncPorts(), nil
		},
	}
}

func (n *IfStatusNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	outcome := n.syncPorts()
	return outcome == engine.HandlerUpdated, nil
}

func (n *IfStatusNode) syncPorts() engine.HandlerOutcome {
	n.mu.Lock()
	defer n.mu.Unlock()

	local := make(map[model.UUID]bool)
	for _, p := range n.RuntimeData.LocalPorts() {
		local[p] = true
	}

	updated := false
	for p := range local {
		if _, known := n.states[p]; !known {
			n.states[p] = StateClaimed
			updated = true
			n.installPort(p)
		}
	}
	for p, state := range n.states {
		if !local[p] && state != StateReleased && state != StateRemoved {
			n.states[p] = StateReleased
			updated = true
			delete(n.states, p)
		}
	}
	if updated {
		return engine.HandlerUpdated
	}
	return engine.HandlerUnchanged
}

// installPort requests a barrier and transitions the port to Installed
// immediately, then to Ready asynchronously once the switch confirms the
// barrier seqno, at which point it is queued onto ActivatedPorts.
func (n *IfStatusNode) installPort(p model.UUID) {
	n.states[p] = StateInstalled
	if n.Writer == nil || n.Seqno == nil {
		return
	}
	seqno, err := n.Writer.Barrier()
	if err != nil {
		return
	}
	n.Seqno.NotifyOnAck(seqno, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.states[p] == StateInstalled {
			n.states[p] = StateReady
			n.activated = append(n.activated, p)
		}
	})
}

func (n *IfStatusNode) Delta() any {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.UUID, len(n.activated))
	copy(out, n.activated)
	return out
}

func (n *IfStatusNode) ClearTracked() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.activated = nil
}

func (n *IfStatusNode) Cleanup() {}

func (n *IfStatusNode) Validity() engine.Validity { return engine.Valid }

// ActivatedPorts returns the ports that reached Ready this iteration.
func (n *IfStatusNode) ActivatedPorts() []model.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.UUID, len(n.activated))
	copy(out, n.activated)
	return out
}

// State returns a port's current activation state.
func (n *IfStatusNode) State(p model.UUID) (IfStatusState, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	s, ok := n.states[p]
	return s, ok
}
