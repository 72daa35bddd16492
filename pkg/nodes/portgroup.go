package nodes

import (
	"context"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
)

// PortGroupNodeName is this node's registered engine.Node name.
const PortGroupNodeName = "port_group"

// PortGroupNode projects each port group down to the member ports that are
// locally present, since ACL evaluation only needs the local subset
// (spec.md §4.9).
type PortGroupNode struct {
	PortGroups  *ovsdb.Table[model.PortGroup]
	RuntimeData *RuntimeDataNode

	local map[model.UUID][]model.UUID
}

func (n *PortGroupNode) Name() string { return PortGroupNodeName }

func (n *PortGroupNode) Flags() engine.Flags { return 0 }

func (n *PortGroupNode) Initialize(ctx context.Context) error {
	n.local = make(map[model.UUID][]model.UUID)
	return nil
}

func (n *PortGroupNode) Handlers() map[string]engine.InputHandler {
	return map[string]engine.InputHandler{
		"sb/port_group": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.PortGroup])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			localPorts := n.localPortSet()
			for _, d := range deltas {
				if d.Tag == model.RowDeleted {
					delete(n.local, d.Row.UUID)
					continue
				}
				n.local[d.Row.UUID] = filterLocal(d.Row.Ports, localPorts)
			}
			return engine.HandlerUpdated, nil
		},
	}
}

func (n *PortGroupNode) localPortSet() map[model.UUID]bool {
	set := make(map[model.UUID]bool)
	for _, p := range n.RuntimeData.LocalPorts() {
		set[p] = true
	}
	for _, p := range n.RuntimeData.RelatedPorts() {
		set[p] = true
	}
	return set
}

func filterLocal(ports []model.UUID, local map[model.UUID]bool) []model.UUID {
	out := make([]model.UUID, 0, len(ports))
	for _, p := range ports {
		if local[p] {
			out = append(out, p)
		}
	}
	return out
}

func (n *PortGroupNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	localPorts := n.localPortSet()
	n.local = make(map[model.UUID][]model.UUID)
	for _, pg := range n.PortGroups.Snapshot() {
		n.local[pg.UUID] = filterLocal(pg.Ports, localPorts)
	}
	return true, nil
}

func (n *PortGroupNode) Delta() any { return nil }

func (n *PortGroupNode) ClearTracked() {}

func (n *PortGroupNode) Cleanup() {}

func (n *PortGroupNode) Validity() engine.Validity { return engine.Valid }

// LocalMembers returns the locally-present member ports of a port group.
func (n *PortGroupNode) LocalMembers(id model.UUID) []model.UUID { return n.local[id] }
