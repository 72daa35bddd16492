package route

import (
	"context"

	"github.com/cuemby/ovncontroller/pkg/coordinator"
	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
)

// LearnedRouteSyncNodeName is this node's registered engine.Node name.
const LearnedRouteSyncNodeName = "learned_route_sync"

// RouteSource reads the host's currently learned routes for a datapath's
// mapped interfaces, the "status" half of the notify/status/diff-apply
// pattern (spec.md §4.10).
type RouteSource interface {
	LearnedRoutes(dev string) ([]LearnedRoute, error)
}

// LearnedRoute is one route discovered on the host, before it is attributed
// to a datapath and port for southbound publication.
type LearnedRoute struct {
	Prefix  string
	Nexthop string
}

// LearnedRouteSyncNode reads learned routes for every local, route-mapped
// port back off the host and republishes them as southbound LearnedRoute
// rows (spec.md §4.10).
type LearnedRouteSyncNode struct {
	LocalPorts  func() []model.UUID
	ResolveDev  PortDevResolver
	PortDatapath func(port model.UUID) (model.UUID, bool)
	Source      RouteSource
	Coordinator *coordinator.Coordinator

	published map[string]model.UUID // "prefix|port" -> datapath UUID of the row last staged
}

func (n *LearnedRouteSyncNode) Name() string { return LearnedRouteSyncNodeName }

func (n *LearnedRouteSyncNode) Flags() engine.Flags { return 0 }

func (n *LearnedRouteSyncNode) Initialize(ctx context.Context) error {
	n.published = make(map[string]model.UUID)
	return nil
}

func (n *LearnedRouteSyncNode) Handlers() map[string]engine.InputHandler { return nil }

func (n *LearnedRouteSyncNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	if !n.Coordinator.Writable(coordinator.SouthboundDB) {
		return false, nil
	}

	seen := make(map[string]bool)
	changed := false
	for _, port := range n.LocalPorts() {
		dev, ok := n.ResolveDev(port)
		if !ok {
			continue
		}
		dp, ok := n.PortDatapath(port)
		if !ok {
			continue
		}
		routes, err := n.Source.LearnedRoutes(dev)
		if err != nil {
			continue
		}
		for _, r := range routes {
			key := r.Prefix + "|" + string(port)
			seen[key] = true
			if _, already := n.published[key]; already {
				continue
			}
			row := model.LearnedRoute{Datapath: dp, IPPrefix: r.Prefix, Nexthop: r.Nexthop, Port: port}
			n.Coordinator.Stage(coordinator.SouthboundDB, "learned_route", coordinator.OpInsert, row)
			n.published[key] = dp
			changed = true
		}
	}

	for key := range n.published {
		if !seen[key] {
			delete(n.published, key)
			changed = true
		}
	}
	return changed, nil
}

func (n *LearnedRouteSyncNode) Delta() any { return nil }

func (n *LearnedRouteSyncNode) ClearTracked() {}

func (n *LearnedRouteSyncNode) Cleanup() {}

func (n *LearnedRouteSyncNode) Validity() engine.Validity { return engine.Valid }
