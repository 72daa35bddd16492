package netlink

import (
	"fmt"
	"sync"
)

// Neighbor is one ARP/NDP entry this daemon maintains for EVPN-learned MAC
// bindings (spec.md §4.10, Glossary "EVPN bindings").
type Neighbor struct {
	IP  string
	MAC string
	Dev string
}

func (n Neighbor) key() string { return n.IP + "|" + n.Dev }

// NeighborTable tracks installed neighbor entries the same way Table
// tracks routes.
type NeighborTable struct {
	mu        sync.Mutex
	installed map[string]Neighbor
	runner    func(args ...string) error
}

// NewNeighborTable creates a neighbor table that shells out to "ip neigh".
func NewNeighborTable() *NeighborTable {
	return &NeighborTable{installed: make(map[string]Neighbor), runner: runIP}
}

// NewNeighborTableWithRunner creates a neighbor table using a caller-
// supplied command runner, for tests that must not shell out to the real
// "ip" binary.
func NewNeighborTableWithRunner(runner func(args ...string) error) *NeighborTable {
	return &NeighborTable{installed: make(map[string]Neighbor), runner: runner}
}

// Apply converges installed neighbor entries to desired.
func (t *NeighborTable) Apply(desired []Neighbor) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	desiredByKey := make(map[string]Neighbor, len(desired))
	for _, n := range desired {
		desiredByKey[n.key()] = n
	}

	for key, n := range t.installed {
		if _, ok := desiredByKey[key]; !ok {
			if err := t.runner("neigh", "del", n.IP, "dev", n.Dev); err != nil {
				return err
			}
			delete(t.installed, key)
		}
	}
	for key, n := range desiredByKey {
		if existing, ok := t.installed[key]; ok && existing.MAC == n.MAC {
			continue
		}
		if err := t.runner("neigh", "replace", n.IP, "lladdr", n.MAC, "dev", n.Dev, "nud", "permanent"); err != nil {
			return fmt.Errorf("netlink: %w", err)
		}
		t.installed[key] = n
	}
	return nil
}

// Installed returns the currently installed neighbor entries.
func (t *NeighborTable) Installed() []Neighbor {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Neighbor, 0, len(t.installed))
	for _, n := range t.installed {
		out = append(out, n)
	}
	return out
}
