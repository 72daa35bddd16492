package netlink

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Route is one host routing-table entry this daemon installs to reflect an
// advertised or learned route (spec.md §4.10).
type Route struct {
	Prefix  string
	Nexthop string
	Dev     string
}

func (r Route) key() string { return r.Prefix + "|" + r.Dev }

// Table tracks the routes this process has installed so it can diff
// against a new desired set and only touch what changed, mirroring the
// teacher's HostPortPublisher's installed/published-port tracking map.
type Table struct {
	mu        sync.Mutex
	installed map[string]Route
	runner    func(args ...string) error
}

// NewTable creates a route table that shells out to the "ip" binary.
func NewTable() *Table {
	return &Table{
		installed: make(map[string]Route),
		runner:    runIP,
	}
}

// NewTableWithRunner creates a route table using a caller-supplied command
// runner, for tests that must not shell out to the real "ip" binary.
func NewTableWithRunner(runner func(args ...string) error) *Table {
	return &Table{
		installed: make(map[string]Route),
		runner:    runner,
	}
}

func runIP(args ...string) error {
	cmd := exec.Command("ip", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("netlink: ip %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Apply diffs desired against the currently installed set and issues the
// minimal set of "ip route replace/del" invocations to converge,
// returning the routes that changed (spec.md §4.10 "notify/status/diff-
// apply node pattern").
func (t *Table) Apply(desired []Route) (added, removed []Route, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	desiredByKey := make(map[string]Route, len(desired))
	for _, r := range desired {
		desiredByKey[r.key()] = r
	}

	for key, r := range t.installed {
		if _, ok := desiredByKey[key]; !ok {
			if e := t.runner("route", "del", r.Prefix, "dev", r.Dev); e != nil {
				return added, removed, e
			}
			delete(t.installed, key)
			removed = append(removed, r)
		}
	}

	for key, r := range desiredByKey {
		if existing, ok := t.installed[key]; ok && existing.Nexthop == r.Nexthop {
			continue
		}
		args := []string{"route", "replace", r.Prefix, "dev", r.Dev}
		if r.Nexthop != "" {
			args = append(args, "via", r.Nexthop)
		}
		if e := t.runner(args...); e != nil {
			return added, removed, e
		}
		t.installed[key] = r
		added = append(added, r)
	}
	return added, removed, nil
}

// Installed returns a copy of the currently installed route set.
func (t *Table) Installed() []Route {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Route, 0, len(t.installed))
	for _, r := range t.installed {
		out = append(out, r)
	}
	return out
}
