package bridge

import (
	"crypto/rand"
	"fmt"

	"github.com/cuemby/ovncontroller/pkg/config"
	"github.com/cuemby/ovncontroller/pkg/log"
	"github.com/cuemby/ovncontroller/pkg/model"
)

// MaxTableIndex is the highest OpenFlow table index the shared flow-table
// row is installed against (spec.md §6).
const MaxTableIndex = 254

// SharedFlowTablePrefixes are the prefix-match columns the shared
// flow-table row is configured with.
var SharedFlowTablePrefixes = []string{"ip_src", "ip_dst", "ipv6_src", "ipv6_dst"}

// Store is the minimal virtual-switch write surface EnsureIntegrationBridge
// needs; pkg/coordinator's vswitch transaction satisfies it.
type Store interface {
	FindBridgeByName(name string) (model.Bridge, bool)
	InsertFlowTable(ft model.FlowTable) (model.UUID, error)
	InsertBridge(b model.Bridge) (model.UUID, error)
}

// EnsureIntegrationBridge creates the bridge named by cfg.Bridge if it does
// not already exist, with the fixed configuration spec.md §6 requires. It
// is a no-op if the bridge is already present, so it is safe to call on
// every daemon startup.
func EnsureIntegrationBridge(store Store, cfg config.Config) error {
	if _, ok := store.FindBridgeByName(cfg.Bridge); ok {
		return nil
	}

	ftID, err := store.InsertFlowTable(model.FlowTable{
		Name:         "shared",
		PrefixFields: SharedFlowTablePrefixes,
	})
	if err != nil {
		return fmt.Errorf("bridge: creating shared flow table: %w", err)
	}

	hwaddr, err := randomLocalMAC()
	if err != nil {
		return fmt.Errorf("bridge: generating hwaddr: %w", err)
	}

	flows := make([]model.UUID, 0, MaxTableIndex+1)
	for i := 0; i <= MaxTableIndex; i++ {
		flows = append(flows, ftID)
	}

	b := model.Bridge{
		Name:         cfg.Bridge,
		FailMode:     "secure",
		DatapathType: cfg.BridgeDatapathType,
		Flows:        flows,
		OtherConfig: map[string]string{
			"disable-in-band": "true",
			"hwaddr":          hwaddr,
		},
	}
	if _, err := store.InsertBridge(b); err != nil {
		return fmt.Errorf("bridge: creating %s: %w", cfg.Bridge, err)
	}

	log.WithComponent("bridge").Info().Str("bridge", cfg.Bridge).Str("hwaddr", hwaddr).Msg("created integration bridge")
	return nil
}

// randomLocalMAC returns a locally-administered, unicast MAC address
// suitable for other_config:hwaddr.
func randomLocalMAC() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	buf[0] = (buf[0] | 0x02) & 0xfe // set locally-administered, clear multicast
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", buf[0], buf[1], buf[2], buf[3], buf[4], buf[5]), nil
}
