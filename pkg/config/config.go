package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the resolved daemon configuration, read from the open-vswitch
// row's external_ids column (spec.md §6). Keys not present keep their
// documented defaults.
type Config struct {
	Chassis string

	OvnRemote             string
	OvnRemoteProbeInterval int
	OvnMonitorAll         bool

	Bridge                string
	BridgeDatapathType    string
	BridgeRemote          string
	BridgeRemoteProbeInterval int

	EncapIP        []string
	EncapIPDefault string
	TransportZones []string

	EnableLflowCache         bool
	LimitLflowCache          int
	MemlimitLflowCacheKB     int
	TrimLimitLflowCache      int
	TrimWmarkPercLflowCache  int
	TrimTimeoutMS            int

	CleanupOnExit       bool
	MatchNorthdVersion  bool
	DynamicRoutingPortMapping map[string]string
}

// Default values for keys with a documented default (spec.md §6).
const (
	DefaultBridge             = "br-int"
	DefaultBridgeDatapathType = "system"
	DefaultRemoteProbeInterval = 5000
)

// FromExternalIDs derives a Config from the open-vswitch row's external_ids
// map. Unrecognized keys are ignored.
func FromExternalIDs(externalIDs map[string]string) Config {
	c := Config{
		Bridge:                 DefaultBridge,
		BridgeDatapathType:     DefaultBridgeDatapathType,
		OvnRemoteProbeInterval: DefaultRemoteProbeInterval,
		MatchNorthdVersion:     true,
		EnableLflowCache:       true,
	}

	get := func(key string) (string, bool) {
		v, ok := externalIDs[key]
		return v, ok && v != ""
	}

	if v, ok := get("ovn-remote"); ok {
		c.OvnRemote = v
	}
	if v, ok := get("ovn-remote-probe-interval"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.OvnRemoteProbeInterval = n
		}
	}
	if v, ok := get("ovn-monitor-all"); ok {
		c.OvnMonitorAll = v == "true"
	}
	if v, ok := get("ovn-bridge"); ok {
		c.Bridge = v
	}
	if v, ok := get("ovn-bridge-datapath-type"); ok {
		c.BridgeDatapathType = v
	}
	if v, ok := get("ovn-bridge-remote"); ok {
		c.BridgeRemote = v
	}
	if v, ok := get("ovn-bridge-remote-probe-interval"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.BridgeRemoteProbeInterval = n
		}
	}
	if v, ok := get("ovn-encap-ip"); ok {
		c.EncapIP = splitCSV(v)
	}
	if v, ok := get("ovn-encap-ip-default"); ok {
		c.EncapIPDefault = v
	}
	if v, ok := get("ovn-transport-zones"); ok {
		c.TransportZones = splitCSV(v)
	}
	if v, ok := get("ovn-enable-lflow-cache"); ok {
		c.EnableLflowCache = v == "true"
	}
	if v, ok := get("ovn-limit-lflow-cache"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.LimitLflowCache = n
		}
	}
	if v, ok := get("ovn-memlimit-lflow-cache-kb"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.MemlimitLflowCacheKB = n
		}
	}
	if v, ok := get("ovn-trim-limit-lflow-cache"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.TrimLimitLflowCache = n
		}
	}
	if v, ok := get("ovn-trim-wmark-perc-lflow-cache"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.TrimWmarkPercLflowCache = n
		}
	}
	if v, ok := get("ovn-trim-timeout-ms"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.TrimTimeoutMS = n
		}
	}
	if v, ok := get("ovn-cleanup-on-exit"); ok {
		c.CleanupOnExit = v == "true"
	}
	if v, ok := get("ovn-match-northd-version"); ok {
		c.MatchNorthdVersion = v == "true"
	}
	if v, ok := get("dynamic-routing-port-mapping"); ok {
		c.DynamicRoutingPortMapping = parseMapping(v)
	}
	return c
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseMapping(v string) map[string]string {
	out := make(map[string]string)
	for _, pair := range splitCSV(v) {
		k, val, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return out
}

// ResolveChassis implements the identity-resolution precedence of spec.md
// §6: the --chassis CLI flag wins, then the contents of the
// system-id-override file, then external_ids:system-id. The first
// non-empty value wins.
func ResolveChassis(cliFlag, overrideFilePath string, externalIDs map[string]string) (string, error) {
	if cliFlag != "" {
		return cliFlag, nil
	}
	if overrideFilePath != "" {
		data, err := os.ReadFile(overrideFilePath)
		if err == nil {
			if id := strings.TrimSpace(string(data)); id != "" {
				return id, nil
			}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("config: reading system-id-override: %w", err)
		}
	}
	if id := externalIDs["system-id"]; id != "" {
		return id, nil
	}
	return "", fmt.Errorf("config: no chassis identity available from --chassis, system-id-override, or external_ids:system-id")
}
