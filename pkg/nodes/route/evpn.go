package route

import (
	"context"
	"fmt"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/netlink"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
)

// EvpnSyncNodeName is this node's registered engine.Node name.
const EvpnSyncNodeName = "evpn_sync"

// EvpnSyncNode maintains host neighbor entries for EVPN-advertised MAC/IP
// bindings on local datapaths (spec.md §4.10, Glossary "EVPN bindings").
type EvpnSyncNode struct {
	AdvertisedMACBindings *ovsdb.Table[model.AdvertisedMACBinding]
	LocalDatapaths        func() []model.UUID
	ResolveDatapathDev     func(dp model.UUID) (string, bool)
	Neighbors              *netlink.NeighborTable
}

func (n *EvpnSyncNode) Name() string { return EvpnSyncNodeName }

func (n *EvpnSyncNode) Flags() engine.Flags { return 0 }

func (n *EvpnSyncNode) Initialize(ctx context.Context) error {
	if n.Neighbors == nil {
		n.Neighbors = netlink.NewNeighborTable()
	}
	return nil
}

func (n *EvpnSyncNode) Handlers() map[string]engine.InputHandler { return nil }

func (n *EvpnSyncNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	local := make(map[model.UUID]bool)
	for _, dp := range n.LocalDatapaths() {
		local[dp] = true
	}

	var desired []netlink.Neighbor
	for _, amb := range n.AdvertisedMACBindings.Snapshot() {
		if !local[amb.Datapath] {
			continue
		}
		dev, ok := n.ResolveDatapathDev(amb.Datapath)
		if !ok {
			continue
		}
		desired = append(desired, netlink.Neighbor{IP: amb.IP, MAC: amb.MAC, Dev: dev})
	}

	before := n.Neighbors.Installed()
	if err := n.Neighbors.Apply(desired); err != nil {
		return false, fmt.Errorf("route: applying EVPN neighbors: %w", err)
	}
	after := n.Neighbors.Installed()
	return len(before) != len(after), nil
}

func (n *EvpnSyncNode) Delta() any { return nil }

func (n *EvpnSyncNode) ClearTracked() {}

func (n *EvpnSyncNode) Cleanup() {}

func (n *EvpnSyncNode) Validity() engine.Validity { return engine.Valid }
