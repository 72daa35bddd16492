package nodes

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/stretchr/testify/require"
)

func newRuntimeDataWithPorts(t *testing.T, ports []model.UUID, datapaths []model.UUID) *RuntimeDataNode {
	t.Helper()
	n := &RuntimeDataNode{
		Interfaces:       ovsdb.NewTable[model.Interface]("interface"),
		PortBindings:     ovsdb.NewTable[model.PortBinding]("port_binding"),
		DatapathBindings: ovsdb.NewTable[model.DatapathBinding]("datapath_binding"),
		Chassis:          func() string { return "" },
	}
	require.NoError(t, n.Initialize(context.Background()))
	n.localPorts = make(map[model.UUID]bool)
	for _, p := range ports {
		n.localPorts[p] = true
	}
	n.localDatapaths = make(map[model.UUID]bool)
	for _, dp := range datapaths {
		n.localDatapaths[dp] = true
	}
	return n
}

func TestCtZoneAllocatesPerPortAndDatapath(t *testing.T) {
	rd := newRuntimeDataWithPorts(t, []model.UUID{"p1"}, []model.UUID{"dp1"})
	n := &CtZoneNode{RuntimeData: rd}
	require.NoError(t, n.Initialize(context.Background()))

	changed, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, changed)

	_, ok := n.Zone("port-p1")
	require.True(t, ok)
	_, ok = n.Zone("snat-dp1")
	require.True(t, ok)
}

func TestCtZoneReleasesOnPortRemoval(t *testing.T) {
	rd := newRuntimeDataWithPorts(t, []model.UUID{"p1"}, []model.UUID{"dp1"})
	n := &CtZoneNode{RuntimeData: rd}
	require.NoError(t, n.Initialize(context.Background()))
	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)

	rd.localPorts = map[model.UUID]bool{}
	changed, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, changed)

	_, ok := n.Zone("port-p1")
	require.False(t, ok)
}

func TestCtZonePersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ct-zones.db")

	store, err := OpenCtZoneStore(path)
	require.NoError(t, err)

	rd := newRuntimeDataWithPorts(t, []model.UUID{"p1"}, nil)
	n := &CtZoneNode{RuntimeData: rd, Store: store}
	require.NoError(t, n.Initialize(context.Background()))
	_, err = n.Run(context.Background(), nil)
	require.NoError(t, err)

	zone, ok := n.Zone("port-p1")
	require.True(t, ok)
	require.NoError(t, store.Close())

	// Simulate a restart: reopen the store and a fresh node, expect the
	// same zone to be recovered without reallocation.
	store2, err := OpenCtZoneStore(path)
	require.NoError(t, err)
	defer store2.Close()

	n2 := &CtZoneNode{RuntimeData: rd, Store: store2}
	require.NoError(t, n2.Initialize(context.Background()))

	recovered, ok := n2.Zone("port-p1")
	require.True(t, ok)
	require.Equal(t, zone, recovered)
}
