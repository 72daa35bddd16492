package nodes

import (
	"context"

	"github.com/cuemby/ovncontroller/pkg/coordinator"
	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
)

// RuntimeDataNodeName is this node's registered engine.Node name; other
// nodes depend on it by this string.
const RuntimeDataNodeName = "runtime_data"

// RuntimeDataNode computes the local-scope sets every other derived node
// filters against: local datapaths, local ports, and related ports reached
// by patch-port peering (spec.md §4.5, §3.2 invariants).
//
// Inputs are the virtual-switch interface table, the southbound port-
// binding and datapath-binding tables, and the chassis name resolved at
// startup. It always recomputes in full (it registers no input handlers);
// §4.5's "tracked datapaths on incrementally handled iterations" is instead
// produced as an output (TrackedDatapaths), not consumed as one, since the
// full recompute here is cheap relative to downstream lflow/pflow work.
type RuntimeDataNode struct {
	Interfaces       *ovsdb.Table[model.Interface]
	PortBindings     *ovsdb.Table[model.PortBinding]
	DatapathBindings *ovsdb.Table[model.DatapathBinding]
	Chassis          func() string // resolved chassis name, empty until known
	Coordinator      *coordinator.Coordinator

	localDatapaths   map[model.UUID]bool
	localPorts       map[model.UUID]bool
	relatedPorts     map[model.UUID]bool
	trackedDatapaths map[model.UUID]bool
}

func (n *RuntimeDataNode) Name() string { return RuntimeDataNodeName }

func (n *RuntimeDataNode) Flags() engine.Flags { return 0 }

func (n *RuntimeDataNode) Initialize(ctx context.Context) error {
	n.localDatapaths = make(map[model.UUID]bool)
	n.localPorts = make(map[model.UUID]bool)
	n.relatedPorts = make(map[model.UUID]bool)
	return nil
}

func (n *RuntimeDataNode) Handlers() map[string]engine.InputHandler { return nil }

func (n *RuntimeDataNode) Delta() any { return n.trackedDatapaths }

func (n *RuntimeDataNode) ClearTracked() { n.trackedDatapaths = nil }

func (n *RuntimeDataNode) Cleanup() {}

func (n *RuntimeDataNode) Validity() engine.Validity { return engine.Valid }

// Run recomputes local scope from scratch every iteration (spec.md §4.5
// "recomputed only from database contents, never from prior cached
// decisions", §3.2).
func (n *RuntimeDataNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	prevDP := n.localDatapaths
	prevPorts := n.localPorts

	localIfaceIDs := make(map[string]bool)
	for _, iface := range n.Interfaces.Snapshot() {
		if id := iface.ExternalIDs["iface-id"]; id != "" {
			localIfaceIDs[id] = true
		}
	}

	pbByPort := make(map[string]model.PortBinding)
	pbByUUID := make(map[model.UUID]model.PortBinding)
	for _, pb := range n.PortBindings.Snapshot() {
		pbByPort[pb.LogicalPort] = pb
		pbByUUID[pb.UUID] = pb
	}

	localDatapaths := make(map[model.UUID]bool)
	localPorts := make(map[model.UUID]bool)

	chassis := ""
	if n.Chassis != nil {
		chassis = n.Chassis()
	}

	for ifaceID := range localIfaceIDs {
		pb, ok := pbByPort[ifaceID]
		if !ok {
			continue
		}
		localPorts[pb.UUID] = true
		localDatapaths[pb.Datapath] = true

		if chassis != "" && pb.Chassis == "" && pb.RequestedChassis == "" {
			claimPort(n.Coordinator, pb, chassis)
		}
	}

	// Close local scope under patch-port peering (spec.md §3.2 invariant
	// "local scope is closed under patch-port peering").
	relatedPorts := make(map[model.UUID]bool)
	frontier := make([]model.UUID, 0, len(localDatapaths))
	for dp := range localDatapaths {
		frontier = append(frontier, dp)
	}
	visited := make(map[model.UUID]bool, len(localDatapaths))
	for _, dp := range frontier {
		visited[dp] = true
	}
	for len(frontier) > 0 {
		dp := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, pb := range n.PortBindings.Snapshot() {
			if pb.Datapath != dp || pb.Type != model.PortKindPatch {
				continue
			}
			peerName := pb.Options["peer"]
			peer, ok := pbByPort[peerName]
			if !ok {
				continue
			}
			relatedPorts[peer.UUID] = true
			if !visited[peer.Datapath] {
				visited[peer.Datapath] = true
				localDatapaths[peer.Datapath] = true
				frontier = append(frontier, peer.Datapath)
			}
		}
	}

	tracked := make(map[model.UUID]bool)
	for dp := range localDatapaths {
		if !prevDP[dp] {
			tracked[dp] = true
		}
	}
	for dp := range prevDP {
		if !localDatapaths[dp] {
			tracked[dp] = true
		}
	}

	updated := !sameSet(prevDP, localDatapaths) || !sameSet(prevPorts, localPorts)

	n.localDatapaths = localDatapaths
	n.localPorts = localPorts
	n.relatedPorts = relatedPorts
	n.trackedDatapaths = tracked

	return updated, nil
}

func sameSet(a, b map[model.UUID]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// LocalDatapaths returns the current set of local datapath UUIDs.
func (n *RuntimeDataNode) LocalDatapaths() []model.UUID { return keys(n.localDatapaths) }

// LocalPorts returns the current set of local port-binding UUIDs.
func (n *RuntimeDataNode) LocalPorts() []model.UUID { return keys(n.localPorts) }

// RelatedPorts returns ports reached only via patch-port peering closure.
func (n *RuntimeDataNode) RelatedPorts() []model.UUID { return keys(n.relatedPorts) }

// TrackedDatapaths returns the datapaths whose local membership changed
// this iteration.
func (n *RuntimeDataNode) TrackedDatapaths() []model.UUID { return keys(n.trackedDatapaths) }

func keys(m map[model.UUID]bool) []model.UUID {
	out := make([]model.UUID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
