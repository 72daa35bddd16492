package route

import (
	"context"
	"testing"

	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/netlink"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/stretchr/testify/require"
)

func TestAdvertisedRouteSyncInstallsLocalRoutesOnly(t *testing.T) {
	var applied []string
	runner := func(args ...string) error {
		applied = append(applied, args[0])
		return nil
	}

	routes := ovsdb.NewTable[model.AdvertisedRoute]("advertised_route")
	routes.Replace([]model.AdvertisedRoute{
		{UUID: "r1", Datapath: "dp1", IPPrefix: "10.0.0.0/24", Nexthop: "10.0.0.1", Port: "p1"},
		{UUID: "r2", Datapath: "dp-remote", IPPrefix: "10.1.0.0/24", Nexthop: "10.1.0.1", Port: "p2"},
	}, nil)

	n := &AdvertisedRouteSyncNode{
		AdvertisedRoutes: routes,
		LocalDatapaths:   func() []model.UUID { return []model.UUID{"dp1"} },
		ResolveDev:       func(port model.UUID) (string, bool) { return "eth0", true },
		Routes:           netlink.NewTableWithRunner(runner),
	}
	require.NoError(t, n.Initialize(context.Background()))

	changed, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, changed)

	installed := n.Routes.Installed()
	require.Len(t, installed, 1)
	require.Equal(t, "10.0.0.0/24", installed[0].Prefix)
}

func TestAdvertisedRouteSyncIsIdempotent(t *testing.T) {
	calls := 0
	runner := func(args ...string) error {
		calls++
		return nil
	}

	routes := ovsdb.NewTable[model.AdvertisedRoute]("advertised_route")
	routes.Replace([]model.AdvertisedRoute{
		{UUID: "r1", Datapath: "dp1", IPPrefix: "10.0.0.0/24", Nexthop: "10.0.0.1", Port: "p1"},
	}, nil)

	n := &AdvertisedRouteSyncNode{
		AdvertisedRoutes: routes,
		LocalDatapaths:   func() []model.UUID { return []model.UUID{"dp1"} },
		ResolveDev:       func(port model.UUID) (string, bool) { return "eth0", true },
		Routes:           netlink.NewTableWithRunner(runner),
	}
	require.NoError(t, n.Initialize(context.Background()))

	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	firstCalls := calls

	changed, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, firstCalls, calls, "unchanged desired set issues no further ip invocations")
}
