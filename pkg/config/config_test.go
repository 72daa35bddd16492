package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromExternalIDsDefaults(t *testing.T) {
	c := FromExternalIDs(nil)
	require.Equal(t, DefaultBridge, c.Bridge)
	require.Equal(t, DefaultBridgeDatapathType, c.BridgeDatapathType)
	require.Equal(t, DefaultRemoteProbeInterval, c.OvnRemoteProbeInterval)
	require.True(t, c.MatchNorthdVersion)
}

func TestFromExternalIDsOverrides(t *testing.T) {
	c := FromExternalIDs(map[string]string{
		"ovn-remote":            "tcp:127.0.0.1:6642",
		"ovn-bridge":            "br-custom",
		"ovn-monitor-all":       "true",
		"ovn-encap-ip":          "10.0.0.1, 10.0.0.2",
		"dynamic-routing-port-mapping": "lrp-a:eth0,lrp-b:eth1",
	})
	require.Equal(t, "tcp:127.0.0.1:6642", c.OvnRemote)
	require.Equal(t, "br-custom", c.Bridge)
	require.True(t, c.OvnMonitorAll)
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, c.EncapIP)
	require.Equal(t, "eth0", c.DynamicRoutingPortMapping["lrp-a"])
}

func TestResolveChassisPrecedence(t *testing.T) {
	dir := t.TempDir()
	overridePath := filepath.Join(dir, "system-id-override")
	require.NoError(t, os.WriteFile(overridePath, []byte("from-file\n"), 0o644))

	id, err := ResolveChassis("from-flag", overridePath, map[string]string{"system-id": "from-ids"})
	require.NoError(t, err)
	require.Equal(t, "from-flag", id)

	id, err = ResolveChassis("", overridePath, map[string]string{"system-id": "from-ids"})
	require.NoError(t, err)
	require.Equal(t, "from-file", id)

	id, err = ResolveChassis("", filepath.Join(dir, "missing"), map[string]string{"system-id": "from-ids"})
	require.NoError(t, err)
	require.Equal(t, "from-ids", id)

	_, err = ResolveChassis("", filepath.Join(dir, "missing"), nil)
	require.Error(t, err)
}
