package nodes

import (
	"context"
	"testing"

	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/openflow"
	"github.com/cuemby/ovncontroller/pkg/translate"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	nextSeqno uint64
}

func (w *fakeWriter) Install(table uint8, entries []translate.FlowEntry) error { return nil }
func (w *fakeWriter) Remove(table uint8, cookies []uint64) error              { return nil }
func (w *fakeWriter) Barrier() (uint64, error) {
	w.nextSeqno++
	return w.nextSeqno, nil
}

func TestIfStatusClaimsNewLocalPorts(t *testing.T) {
	rd := newRuntimeDataWithPorts(t, []model.UUID{"p1"}, nil)
	n := &IfStatusNode{RuntimeData: rd}
	require.NoError(t, n.Initialize(context.Background()))

	updated, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, updated)

	state, ok := n.State("p1")
	require.True(t, ok)
	require.Equal(t, StateInstalled, state)
}

func TestIfStatusReachesReadyOnSeqnoAck(t *testing.T) {
	rd := newRuntimeDataWithPorts(t, []model.UUID{"p1"}, nil)
	w := &fakeWriter{}
	seqno := openflow.NewSeqnoTracker()
	n := &IfStatusNode{RuntimeData: rd, Writer: w, Seqno: seqno}
	require.NoError(t, n.Initialize(context.Background()))

	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)
	state, _ := n.State("p1")
	require.Equal(t, StateInstalled, state)

	seqno.Ack(w.nextSeqno)

	state, _ = n.State("p1")
	require.Equal(t, StateReady, state)
	require.Contains(t, n.ActivatedPorts(), model.UUID("p1"))
}

func TestIfStatusReleasesRemovedPorts(t *testing.T) {
	rd := newRuntimeDataWithPorts(t, []model.UUID{"p1"}, nil)
	n := &IfStatusNode{RuntimeData: rd}
	require.NoError(t, n.Initialize(context.Background()))
	_, err := n.Run(context.Background(), nil)
	require.NoError(t, err)

	rd.localPorts = map[model.UUID]bool{}
	_, err = n.Run(context.Background(), nil)
	require.NoError(t, err)

	_, ok := n.State("p1")
	require.False(t, ok, "released port is dropped from tracked state")
}
