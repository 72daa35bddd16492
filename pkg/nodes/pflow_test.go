package nodes

import (
	"context"
	"testing"

	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/cuemby/ovncontroller/pkg/translate"
	"github.com/stretchr/testify/require"
)

type fakePhysicalFlowTranslator struct{}

func (fakePhysicalFlowTranslator) TranslatePhysicalFlow(pb model.PortBinding, localChassis model.UUID) ([]translate.FlowEntry, error) {
	return []translate.FlowEntry{{Table: 0, Match: string(pb.LogicalPort), Actions: "output"}}, nil
}

func TestPflowOutputOnlyIncludesReadyPorts(t *testing.T) {
	rd := newRuntimeDataWithPorts(t, []model.UUID{"p1", "p2"}, nil)
	pbs := ovsdb.NewTable[model.PortBinding]("port_binding")
	pbs.Replace([]model.PortBinding{
		{UUID: "p1", LogicalPort: "lp1"},
		{UUID: "p2", LogicalPort: "lp2"},
	}, nil)

	ifstatus := &IfStatusNode{RuntimeData: rd}
	require.NoError(t, ifstatus.Initialize(context.Background()))
	ifstatus.states = map[model.UUID]IfStatusState{"p1": StateReady, "p2": StateInstalled}

	n := &PflowOutputNode{RuntimeData: rd, IfStatus: ifstatus, PortBindings: pbs, Translator: fakePhysicalFlowTranslator{}}
	require.NoError(t, n.Initialize(context.Background()))

	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)

	desired := n.DesiredFlows()
	require.Contains(t, desired, model.UUID("p1"))
	require.NotContains(t, desired, model.UUID("p2"))
}
