package route

import (
	"context"
	"testing"

	"github.com/cuemby/ovncontroller/pkg/coordinator"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/stretchr/testify/require"
)

type fakeRouteSource struct {
	routes map[string][]LearnedRoute
}

func (f *fakeRouteSource) LearnedRoutes(dev string) ([]LearnedRoute, error) {
	return f.routes[dev], nil
}

func TestLearnedRouteSyncPublishesNewRoutes(t *testing.T) {
	coord := coordinator.New()
	coord.SetWritable(coordinator.SouthboundDB, true)
	coord.BeginIteration()

	src := &fakeRouteSource{routes: map[string][]LearnedRoute{
		"eth0": {{Prefix: "192.168.1.0/24", Nexthop: "192.168.1.1"}},
	}}

	n := &LearnedRouteSyncNode{
		LocalPorts:   func() []model.UUID { return []model.UUID{"p1"} },
		ResolveDev:   func(port model.UUID) (string, bool) { return "eth0", true },
		PortDatapath: func(port model.UUID) (model.UUID, bool) { return "dp1", true },
		Source:       src,
		Coordinator:  coord,
	}
	require.NoError(t, n.Initialize(context.Background()))

	changed, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, coord.PendingFor(coordinator.SouthboundDB), 1)
}

func TestLearnedRouteSyncSkipsWhenNotWritable(t *testing.T) {
	coord := coordinator.New() // not writable
	src := &fakeRouteSource{routes: map[string][]LearnedRoute{
		"eth0": {{Prefix: "192.168.1.0/24", Nexthop: "192.168.1.1"}},
	}}

	n := &LearnedRouteSyncNode{
		LocalPorts:   func() []model.UUID { return []model.UUID{"p1"} },
		ResolveDev:   func(port model.UUID) (string, bool) { return "eth0", true },
		PortDatapath: func(port model.UUID) (model.UUID, bool) { return "dp1", true },
		Source:       src,
		Coordinator:  coord,
	}
	require.NoError(t, n.Initialize(context.Background()))

	changed, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, changed)
	require.Empty(t, coord.Pending())
}
