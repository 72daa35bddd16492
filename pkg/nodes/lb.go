package nodes

import (
	"context"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
)

// LoadBalancerNodeName is this node's registered engine.Node name.
const LoadBalancerNodeName = "load_balancer"

// LoadBalancerNode projects each load balancer down to the datapaths it
// applies to that are locally present, and allocates an extend-tables
// group id per VIP so the lflow translator has a stable group to reference
// (spec.md §4.9).
type LoadBalancerNode struct {
	LoadBalancers *ovsdb.Table[model.LoadBalancer]
	RuntimeData   *RuntimeDataNode
	Extend        *ExtendTables

	localDatapaths map[model.UUID][]model.UUID
	groups         map[model.UUID]map[string]int32 // lb UUID -> vip -> group id
}

func (n *LoadBalancerNode) Name() string { return LoadBalancerNodeName }

func (n *LoadBalancerNode) Flags() engine.Flags { return 0 }

func (n *LoadBalancerNode) Initialize(ctx context.Context) error {
	n.localDatapaths = make(map[model.UUID][]model.UUID)
	n.groups = make(map[model.UUID]map[string]int32)
	if n.Extend == nil {
		n.Extend = NewExtendTables()
	}
	return nil
}

func (n *LoadBalancerNode) Handlers() map[string]engine.InputHandler {
	return map[string]engine.InputHandler{
		"sb/load_balancer": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.LoadBalancer])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			localDP := n.localDatapathSet()
			for _, d := range deltas {
				if d.Tag == model.RowDeleted {
					for vip := range n.groups[d.Row.UUID] {
						n.Extend.ReleaseOwner(vipGroupOwner(d.Row.UUID, vip))
					}
					delete(n.localDatapaths, d.Row.UUID)
					delete(n.groups, d.Row.UUID)
					continue
				}
				n.materialize(d.Row, localDP)
			}
			return engine.HandlerUpdated, nil
		},
	}
}

func (n *LoadBalancerNode) localDatapathSet() map[model.UUID]bool {
	set := make(map[model.UUID]bool)
	for _, dp := range n.RuntimeData.LocalDatapaths() {
		set[dp] = true
	}
	return set
}

func (n *LoadBalancerNode) materialize(lb model.LoadBalancer, localDP map[model.UUID]bool) {
	n.localDatapaths[lb.UUID] = filterLocal(lb.Datapaths, localDP)

	for vip := range n.groups[lb.UUID] {
		if _, ok := lb.VIPs[vip]; !ok {
			n.Extend.ReleaseOwner(vipGroupOwner(lb.UUID, vip))
		}
	}
	vipGroups := make(map[string]int32, len(lb.VIPs))
	for vip := range lb.VIPs {
		vipGroups[vip] = n.Extend.AllocateGroup(vipGroupOwner(lb.UUID, vip))
	}
	n.groups[lb.UUID] = vipGroups
}

// vipGroupOwner is the extend-tables owner key of one VIP's group.
func vipGroupOwner(lb model.UUID, vip string) model.UUID {
	return lb + model.UUID("|"+vip)
}

func (n *LoadBalancerNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	localDP := n.localDatapathSet()
	n.localDatapaths = make(map[model.UUID][]model.UUID)
	n.groups = make(map[model.UUID]map[string]int32)
	for _, lb := range n.LoadBalancers.Snapshot() {
		n.materialize(lb, localDP)
	}
	return true, nil
}

func (n *LoadBalancerNode) Delta() any { return nil }

func (n *LoadBalancerNode) ClearTracked() {}

func (n *LoadBalancerNode) Cleanup() {}

func (n *LoadBalancerNode) Validity() engine.Validity { return engine.Valid }

// LocalDatapaths returns which of lb's datapaths are locally present.
func (n *LoadBalancerNode) LocalDatapaths(lb model.UUID) []model.UUID {
	return n.localDatapaths[lb]
}

// GroupFor returns the allocated OpenFlow group id for a VIP.
func (n *LoadBalancerNode) GroupFor(lb model.UUID, vip string) (int32, bool) {
	g, ok := n.groups[lb][vip]
	return g, ok
}
