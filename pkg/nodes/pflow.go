package nodes

import (
	"context"
	"fmt"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/cuemby/ovncontroller/pkg/translate"
)

// PflowOutputNodeName is this node's registered engine.Node name.
const PflowOutputNodeName = "pflow_output"

// PflowOutputNode compiles the physical pipeline (tunnel encap/decap,
// patch-port wiring, chassis-redirect delivery) for every local port
// binding, gated on the interface-status manager's ActivatedPorts queue so
// a port's physical flows are only installed once the switch has confirmed
// its logical flows are in place (spec.md §4.4, §4.6).
type PflowOutputNode struct {
	RuntimeData  *RuntimeDataNode
	IfStatus     *IfStatusNode
	PortBindings *ovsdb.Table[model.PortBinding]
	Chassis      func() string
	Translator   translate.PhysicalFlowTranslator

	desired map[model.UUID][]translate.FlowEntry
}

func (n *PflowOutputNode) Name() string { return PflowOutputNodeName }

func (n *PflowOutputNode) Flags() engine.Flags { return 0 }

func (n *PflowOutputNode) Initialize(ctx context.Context) error {
	n.desired = make(map[model.UUID][]translate.FlowEntry)
	return nil
}

func (n *PflowOutputNode) Handlers() map[string]engine.InputHandler {
	return map[string]engine.InputHandler{
		IfStatusNodeName: func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			ports, ok := delta.([]model.UUID)
			if !ok || len(ports) == 0 {
				return engine.HandlerUnchanged, nil
			}
			byUUID := n.portBindingsByUUID()
			chassis := model.UUID("")
			if n.Chassis != nil {
				chassis = model.UUID(n.Chassis())
			}
			for _, p := range ports {
				pb, ok := byUUID[p]
				if !ok {
					continue
				}
				entries, err := n.Translator.TranslatePhysicalFlow(pb, chassis)
				if err != nil {
					return engine.HandlerUnhandled, nil
				}
				n.desired[p] = entries
			}
			return engine.HandlerUpdated, nil
		},
	}
}

func (n *PflowOutputNode) portBindingsByUUID() map[model.UUID]model.PortBinding {
	out := make(map[model.UUID]model.PortBinding)
	for _, pb := range n.PortBindings.Snapshot() {
		out[pb.UUID] = pb
	}
	return out
}

// Run performs a full recompute over every currently-ready local port.
func (n *PflowOutputNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	n.desired = make(map[model.UUID][]translate.FlowEntry)
	byUUID := n.portBindingsByUUID()
	chassis := model.UUID("")
	if n.Chassis != nil {
		chassis = model.UUID(n.Chassis())
	}
	for _, p := range n.RuntimeData.LocalPorts() {
		state, ok := n.IfStatus.State(p)
		if !ok || state != StateReady {
			continue
		}
		pb, ok := byUUID[p]
		if !ok {
			continue
		}
		entries, err := n.Translator.TranslatePhysicalFlow(pb, chassis)
		if err != nil {
			return false, fmt.Errorf("nodes: translating physical flow for %s: %w", p, err)
		}
		n.desired[p] = entries
	}
	return true, nil
}

func (n *PflowOutputNode) Delta() any { return nil }

func (n *PflowOutputNode) ClearTracked() {}

func (n *PflowOutputNode) Cleanup() {}

func (n *PflowOutputNode) Validity() engine.Validity { return engine.Valid }

// DesiredFlows returns the current per-port desired physical flow entries.
func (n *PflowOutputNode) DesiredFlows() map[model.UUID][]translate.FlowEntry { return n.desired }
