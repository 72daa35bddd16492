package nodes

import (
	"context"
	"testing"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/cuemby/ovncontroller/pkg/translate"
	"github.com/stretchr/testify/require"
)

type fakeLogicalFlowTranslator struct {
	calls int
}

func (f *fakeLogicalFlowTranslator) TranslateLogicalFlow(lf model.LogicalFlow, localDatapaths []model.UUID) ([]translate.FlowEntry, error) {
	f.calls++
	return []translate.FlowEntry{{Table: uint8(lf.TableID), Priority: uint16(lf.Priority), Match: lf.Match, Actions: lf.Actions}}, nil
}

func newLflowOutputFixture(t *testing.T, localDP model.UUID) (*LflowOutputNode, *ovsdb.Table[model.LogicalFlow], *fakeLogicalFlowTranslator) {
	t.Helper()
	lfs := ovsdb.NewTable[model.LogicalFlow]("logical_flow")
	rd := newRuntimeDataWithPorts(t, nil, []model.UUID{localDP})
	tr := &fakeLogicalFlowTranslator{}
	n := &LflowOutputNode{RuntimeData: rd, LogicalFlows: lfs, Translator: tr}
	require.NoError(t, n.Initialize(context.Background()))
	return n, lfs, tr
}

func TestLflowOutputTranslatesLocalFlowsOnly(t *testing.T) {
	n, lfs, _ := newLflowOutputFixture(t, "dp1")
	lfs.Replace([]model.LogicalFlow{
		{UUID: "lf1", LogicalDP: "dp1", Pipeline: "ingress", TableID: 0, Priority: 100, Match: "1", Actions: "next;"},
		{UUID: "lf2", LogicalDP: "dp-remote", Pipeline: "ingress", TableID: 0, Priority: 100, Match: "1", Actions: "next;"},
	}, nil)

	updated, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, updated)
	require.Len(t, n.DesiredFlows(), 1)
}

func TestLflowOutputCachesByFingerprint(t *testing.T) {
	n, lfs, tr := newLflowOutputFixture(t, "dp1")
	lfs.Replace([]model.LogicalFlow{
		{UUID: "lf1", LogicalDP: "dp1", Pipeline: "ingress", TableID: 0, Priority: 100, Match: "m", Actions: "a"},
		{UUID: "lf2", LogicalDP: "dp1", Pipeline: "ingress", TableID: 0, Priority: 100, Match: "m", Actions: "a"},
	}, nil)

	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, tr.calls, "identical logical flows share one cached translation")
}

func TestLflowOutputRemovesFlowOnDeletedDelta(t *testing.T) {
	n, lfs, _ := newLflowOutputFixture(t, "dp1")
	lfs.Replace([]model.LogicalFlow{
		{UUID: "lf1", LogicalDP: "dp1", Pipeline: "ingress", TableID: 0, Priority: 100, Match: "m", Actions: "a"},
	}, nil)
	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, n.DesiredFlows(), 1)

	handlers := n.Handlers()
	h, ok := handlers["logical_flow"]
	require.True(t, ok)

	outcome, err := h(context.Background(), nil, []ovsdb.RowDelta[model.LogicalFlow]{
		{Tag: model.RowDeleted, Row: model.LogicalFlow{UUID: "lf1", LogicalDP: "dp1"}},
	})
	require.NoError(t, err)
	require.Equal(t, engine.HandlerUpdated, outcome)
	require.Empty(t, n.DesiredFlows())
}

func TestLflowOutputHandlersCoverEveryDependentInput(t *testing.T) {
	n, _, _ := newLflowOutputFixture(t, "dp1")
	handlers := n.Handlers()
	for _, name := range []string{
		"logical_flow", RuntimeDataNodeName, AddrSetNodeName, PortGroupNodeName,
		"sb/address_set", "sb/port_group", "chassis_template_var", "logical_dp_group",
		"sb/load_balancer", "mac_binding", "static_mac_binding", "fdb", "multicast_group",
	} {
		_, ok := handlers[name]
		require.True(t, ok, "missing handler for %s", name)
	}
}

func TestLflowOutputInvalidatesOnReferencedAddressSetChange(t *testing.T) {
	n, lfs, tr := newLflowOutputFixture(t, "dp1")
	sets := ovsdb.NewTable[model.AddressSet]("address_set")
	addrSet := &AddrSetNode{AddressSets: sets, TemplateVars: ovsdb.NewTable[model.ChassisTemplateVar]("chassis_template_var")}
	require.NoError(t, addrSet.Initialize(context.Background()))
	n.AddrSets = addrSet

	sets.Replace([]model.AddressSet{{UUID: "as1", Name: "set1", Addresses: []string{"10.0.0.1"}}}, nil)
	_, err := addrSet.Run(context.Background(), nil)
	require.NoError(t, err)

	lfs.Replace([]model.LogicalFlow{
		{UUID: "lf1", LogicalDP: "dp1", Pipeline: "ingress", TableID: 0, Priority: 100, Match: "ip4.src == $set1", Actions: "next;"},
	}, nil)
	_, err = n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, tr.calls)

	// Address set content changes: the affected flow must be re-translated
	// (a fresh cache entry), not served from the stale fingerprint.
	sets.Replace([]model.AddressSet{{UUID: "as1", Name: "set1", Addresses: []string{"10.0.0.1", "10.0.0.2"}}}, nil)
	addrHandlers := addrSet.Handlers()
	_, err = addrHandlers["sb/address_set"](context.Background(), nil, []ovsdb.RowDelta[model.AddressSet]{
		{Tag: model.RowUpdated, Row: model.AddressSet{UUID: "as1", Name: "set1", Addresses: []string{"10.0.0.1", "10.0.0.2"}}},
	})
	require.NoError(t, err)

	handlers := n.Handlers()
	outcome, err := handlers["sb/address_set"](context.Background(), nil, []ovsdb.RowDelta[model.AddressSet]{
		{Tag: model.RowUpdated, Row: model.AddressSet{UUID: "as1", Name: "set1", Addresses: []string{"10.0.0.1", "10.0.0.2"}}},
	})
	require.NoError(t, err)
	require.Equal(t, engine.HandlerUpdated, outcome)
	require.Equal(t, 2, tr.calls, "referenced address set change must force a fresh translation")
}
