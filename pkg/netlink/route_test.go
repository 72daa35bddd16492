package netlink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyAddsAndRemoves(t *testing.T) {
	var calls [][]string
	table := NewTableWithRunner(func(args ...string) error {
		calls = append(calls, append([]string(nil), args...))
		return nil
	})

	added, removed, err := table.Apply([]Route{{Prefix: "10.0.0.0/24", Dev: "eth0"}})
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.Empty(t, removed)
	require.Len(t, table.Installed(), 1)

	added, removed, err = table.Apply(nil)
	require.NoError(t, err)
	require.Empty(t, added)
	require.Len(t, removed, 1)
	require.Empty(t, table.Installed())
}

func TestApplyIsIdempotent(t *testing.T) {
	calls := 0
	table := NewTableWithRunner(func(args ...string) error {
		calls++
		return nil
	})
	route := []Route{{Prefix: "10.0.0.0/24", Dev: "eth0", Nexthop: "10.0.0.1"}}

	_, _, err := table.Apply(route)
	require.NoError(t, err)
	before := calls

	_, _, err = table.Apply(route)
	require.NoError(t, err)
	require.Equal(t, before, calls, "reapplying an unchanged route must not shell out again")
}
