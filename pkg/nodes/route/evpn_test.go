package route

import (
	"context"
	"testing"

	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/netlink"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/stretchr/testify/require"
)

func TestEvpnSyncMaintainsNeighborsForLocalDatapaths(t *testing.T) {
	runner := func(args ...string) error { return nil }

	bindings := ovsdb.NewTable[model.AdvertisedMACBinding]("advertised_mac_binding")
	bindings.Replace([]model.AdvertisedMACBinding{
		{UUID: "b1", Datapath: "dp1", IP: "10.0.0.5", MAC: "aa:bb:cc:dd:ee:01"},
		{UUID: "b2", Datapath: "dp-remote", IP: "10.1.0.5", MAC: "aa:bb:cc:dd:ee:02"},
	}, nil)

	n := &EvpnSyncNode{
		AdvertisedMACBindings: bindings,
		LocalDatapaths:        func() []model.UUID { return []model.UUID{"dp1"} },
		ResolveDatapathDev:    func(dp model.UUID) (string, bool) { return "eth0", true },
		Neighbors:             netlink.NewNeighborTableWithRunner(runner),
	}
	require.NoError(t, n.Initialize(context.Background()))

	changed, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, changed)

	installed := n.Neighbors.Installed()
	require.Len(t, installed, 1)
	require.Equal(t, "10.0.0.5", installed[0].IP)
}
