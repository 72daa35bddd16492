package monitor

import (
	"testing"

	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/stretchr/testify/require"
)

func TestRecomputeStartupModeUntilChassisKnown(t *testing.T) {
	m := NewManager()
	conds, changed := m.Recompute(LocalScope{}, "")
	require.True(t, changed)
	require.True(t, conds[TablePortBinding].MonitorAll)
	require.True(t, conds[TableChassisPrivate].MonitorAll)
	require.True(t, conds[TableAdvertisedRoute].MonitorAll)
	require.EqualValues(t, 1, m.ExpectedCondSeqno())
	require.False(t, m.Acked())

	m.Ack(1)
	require.True(t, m.Acked())
}

func TestRecomputeNarrowsOnceChassisKnown(t *testing.T) {
	m := NewManager()
	_, _ = m.Recompute(LocalScope{}, "")

	scope := LocalScope{LocalDatapaths: []model.UUID{"dp1", "dp2"}}
	conds, changed := m.Recompute(scope, "chassis-a")
	require.True(t, changed)
	require.False(t, conds[TablePortBinding].MonitorAll)
	require.NotEmpty(t, conds[TablePortBinding].Clauses)
	require.True(t, conds[TableChassisPrivate].MonitorAll, "chassis-private stays fully monitored even once chassis is known")
}

func TestRecomputeNoOpWhenScopeUnchanged(t *testing.T) {
	m := NewManager()
	scope := LocalScope{LocalDatapaths: []model.UUID{"dp1"}}
	_, _ = m.Recompute(scope, "chassis-a")
	seqBefore := m.ExpectedCondSeqno()

	_, changed := m.Recompute(scope, "chassis-a")
	require.False(t, changed)
	require.Equal(t, seqBefore, m.ExpectedCondSeqno())
}

func TestMonitorAllOverride(t *testing.T) {
	m := NewManager()
	m.SetMonitorAll(true)
	conds, changed := m.Recompute(LocalScope{LocalDatapaths: []model.UUID{"dp1"}}, "chassis-a")
	require.True(t, changed)
	require.True(t, conds[TablePortBinding].MonitorAll)
}
