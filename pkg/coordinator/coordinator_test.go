package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCommitter struct {
	fail map[DBKind]bool
}

func (f *fakeCommitter) Commit(ctx context.Context, db DBKind, mutations []Mutation) error {
	if f.fail[db] {
		return errors.New("boom")
	}
	return nil
}

func TestStageDroppedWhenNotWritable(t *testing.T) {
	c := New()
	c.BeginIteration()
	c.Stage(SouthboundDB, "port_binding", OpUpdate, "row")
	require.Empty(t, c.Pending())

	c.SetWritable(SouthboundDB, true)
	c.Stage(SouthboundDB, "port_binding", OpUpdate, "row")
	require.Len(t, c.Pending(), 1)
}

func TestCommitSplitsByDatabase(t *testing.T) {
	c := New()
	c.SetWritable(SouthboundDB, true)
	c.SetWritable(VswitchDB, true)
	c.BeginIteration()
	c.Stage(SouthboundDB, "port_binding", OpUpdate, "a")
	c.Stage(VswitchDB, "interface", OpInsert, "b")

	result := c.Commit(context.Background(), &fakeCommitter{})
	require.True(t, result.SouthboundOK)
	require.True(t, result.VswitchOK)
	require.False(t, result.AnyFailed())
}

func TestCommitFailurePartial(t *testing.T) {
	c := New()
	c.SetWritable(SouthboundDB, true)
	c.SetWritable(VswitchDB, true)
	c.BeginIteration()

	result := c.Commit(context.Background(), &fakeCommitter{fail: map[DBKind]bool{SouthboundDB: true}})
	require.False(t, result.SouthboundOK)
	require.True(t, result.VswitchOK)
	require.True(t, result.AnyFailed())
}
