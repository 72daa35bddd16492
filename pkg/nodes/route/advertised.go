package route

import (
	"context"
	"fmt"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/netlink"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
)

// AdvertisedRouteSyncNodeName is this node's registered engine.Node name.
const AdvertisedRouteSyncNodeName = "advertised_route_sync"

// PortDevResolver maps a port-binding UUID to the host interface name route
// installation should bind to, via the dynamic-routing-port-mapping
// external-ids key (spec.md §6).
type PortDevResolver func(port model.UUID) (dev string, ok bool)

// AdvertisedRouteSyncNode pushes southbound AdvertisedRoute rows for local
// datapaths into the host routing table (spec.md §4.10 "notify" half of the
// pattern: the southbound table is the notifier, this node applies it).
type AdvertisedRouteSyncNode struct {
	AdvertisedRoutes *ovsdb.Table[model.AdvertisedRoute]
	LocalDatapaths   func() []model.UUID
	ResolveDev       PortDevResolver
	Routes           *netlink.Table
}

func (n *AdvertisedRouteSyncNode) Name() string { return AdvertisedRouteSyncNodeName }

func (n *AdvertisedRouteSyncNode) Flags() engine.Flags { return 0 }

func (n *AdvertisedRouteSyncNode) Initialize(ctx context.Context) error {
	if n.Routes == nil {
		n.Routes = netlink.NewTable()
	}
	return nil
}

func (n *AdvertisedRouteSyncNode) Handlers() map[string]engine.InputHandler { return nil }

// Run diffs the full desired set against the host routing table every
// iteration; route churn is rare enough relative to lflow/pflow traffic
// that this node does not register incremental handlers.
func (n *AdvertisedRouteSyncNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	local := make(map[model.UUID]bool)
	for _, dp := range n.LocalDatapaths() {
		local[dp] = true
	}

	var desired []netlink.Route
	for _, r := range n.AdvertisedRoutes.Snapshot() {
		if !local[r.Datapath] {
			continue
		}
		dev, ok := n.ResolveDev(r.Port)
		if !ok {
			continue
		}
		desired = append(desired, netlink.Route{Prefix: r.IPPrefix, Nexthop: r.Nexthop, Dev: dev})
	}

	added, removed, err := n.Routes.Apply(desired)
	if err != nil {
		return false, fmt.Errorf("route: applying advertised routes: %w", err)
	}
	return len(added)+len(removed) > 0, nil
}

func (n *AdvertisedRouteSyncNode) Delta() any { return nil }

func (n *AdvertisedRouteSyncNode) ClearTracked() {}

func (n *AdvertisedRouteSyncNode) Cleanup() {}

func (n *AdvertisedRouteSyncNode) Validity() engine.Validity { return engine.Valid }
