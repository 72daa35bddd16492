package nodes

import (
	"context"
	"testing"

	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/stretchr/testify/require"
)

func TestAddrSetMaterializesAddresses(t *testing.T) {
	sets := ovsdb.NewTable[model.AddressSet]("address_set")
	n := &AddrSetNode{AddressSets: sets, TemplateVars: ovsdb.NewTable[model.ChassisTemplateVar]("chassis_template_var")}
	require.NoError(t, n.Initialize(context.Background()))

	sets.Replace([]model.AddressSet{{UUID: "as1", Name: "set1", Addresses: []string{"10.0.0.1", "10.0.0.2"}}}, nil)
	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, n.Addresses("as1"))
}

func TestAddrSetRemovesDeletedSet(t *testing.T) {
	sets := ovsdb.NewTable[model.AddressSet]("address_set")
	n := &AddrSetNode{AddressSets: sets, TemplateVars: ovsdb.NewTable[model.ChassisTemplateVar]("chassis_template_var")}
	require.NoError(t, n.Initialize(context.Background()))

	sets.Replace([]model.AddressSet{{UUID: "as1", Name: "set1", Addresses: []string{"10.0.0.1"}}}, nil)
	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, n.Addresses("as1"))

	handlers := n.Handlers()
	h := handlers["sb/address_set"]
	_, err = h(context.Background(), nil, []ovsdb.RowDelta[model.AddressSet]{
		{Tag: model.RowDeleted, Row: model.AddressSet{UUID: "as1"}},
	})
	require.NoError(t, err)
	require.Empty(t, n.Addresses("as1"))
}

func TestPortGroupProjectsLocalMembersOnly(t *testing.T) {
	groups := ovsdb.NewTable[model.PortGroup]("port_group")
	rd := newRuntimeDataWithPorts(t, []model.UUID{"p1"}, nil)
	n := &PortGroupNode{PortGroups: groups, RuntimeData: rd}
	require.NoError(t, n.Initialize(context.Background()))

	groups.Replace([]model.PortGroup{{UUID: "pg1", Name: "pg", Ports: []model.UUID{"p1", "p-remote"}}}, nil)
	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, []model.UUID{"p1"}, n.LocalMembers("pg1"))
}

func TestLoadBalancerAllocatesGroupPerVIP(t *testing.T) {
	lbs := ovsdb.NewTable[model.LoadBalancer]("load_balancer")
	rd := newRuntimeDataWithPorts(t, nil, []model.UUID{"dp1"})
	n := &LoadBalancerNode{LoadBalancers: lbs, RuntimeData: rd}
	require.NoError(t, n.Initialize(context.Background()))

	lbs.Replace([]model.LoadBalancer{{
		UUID:      "lb1",
		Name:      "lb",
		Datapaths: []model.UUID{"dp1", "dp-remote"},
		VIPs:      map[string][]string{"10.0.0.1:80": {"10.1.0.1:8080"}},
	}}, nil)
	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, []model.UUID{"dp1"}, n.LocalDatapaths("lb1"))
	group, ok := n.GroupFor("lb1", "10.0.0.1:80")
	require.True(t, ok)
	require.NotZero(t, group)
}
