package nodes

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
	"strings"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/openflow"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/cuemby/ovncontroller/pkg/translate"
)

// LflowOutputNodeName is this node's registered engine.Node name.
const LflowOutputNodeName = "lflow_output"

// matchVarRef matches a $name token inside a logical flow's Match string,
// OVN's convention for referencing an address set or port group by name.
var matchVarRef = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// LflowOutputNode holds the desired OpenFlow table derived from logical
// flows local scope currently cares about, plus the translation cache and
// extend-tables side-state that survive unrelated churn (spec.md §4.4).
//
// A logical flow's translation depends on more than its own row: its Match
// string may reference address sets and port groups by name, and several
// other southbound tables (MAC bindings, FDB, multicast groups, load
// balancers, datapath groups) influence a datapath's flow set without being
// named in Match at all. Both classes of dependency are folded into the
// cache fingerprint so a referenced object changing invalidates exactly the
// flows that read it (spec.md §4.4).
type LflowOutputNode struct {
	RuntimeData  *RuntimeDataNode
	LogicalFlows *ovsdb.Table[model.LogicalFlow]
	AddrSets     *AddrSetNode
	PortGroups   *PortGroupNode
	Translator   translate.LogicalFlowTranslator
	Cache        *LflowCache
	Extend       *ExtendTables
	Writer       openflow.Writer

	desired  map[uint64]translate.FlowEntry
	cookieOf map[model.UUID][]uint64
	lfByID   map[model.UUID]model.LogicalFlow
	deps     *DepGraph         // "addrset:<name>"/"portgroup:<name>" -> flow UUIDs referencing it
	auxGen   map[model.UUID]int64 // datapath UUID -> generation, bumped by non-Match-referenced table churn
	touched  bool
}

func lflowCookie(id model.UUID) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

// lflowFingerprint covers the flow's own columns plus a digest of every
// address set and port group its Match string resolves through, and the
// datapath's auxiliary generation counter for dependencies that aren't
// referenced by name (spec.md §4.4).
func lflowFingerprint(lf model.LogicalFlow, addrDigest, pgDigest string, auxGen int64) string {
	return fmt.Sprintf("%s|%d|%d|%s|%s|%s|%s|%d", lf.Pipeline, lf.TableID, lf.Priority, lf.Match, lf.Actions, addrDigest, pgDigest, auxGen)
}

// referencedNames extracts the $name tokens from a Match string.
func referencedNames(match string) []string {
	groups := matchVarRef.FindAllStringSubmatch(match, -1)
	if len(groups) == 0 {
		return nil
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g[1])
	}
	return names
}

func (n *LflowOutputNode) Name() string { return LflowOutputNodeName }

func (n *LflowOutputNode) Flags() engine.Flags { return 0 }

func (n *LflowOutputNode) Initialize(ctx context.Context) error {
	n.desired = make(map[uint64]translate.FlowEntry)
	n.cookieOf = make(map[model.UUID][]uint64)
	n.lfByID = make(map[model.UUID]model.LogicalFlow)
	n.deps = NewDepGraph()
	n.auxGen = make(map[model.UUID]int64)
	if n.Cache == nil {
		n.Cache = NewLflowCache(0, 0, 50)
	}
	if n.Extend == nil {
		n.Extend = NewExtendTables()
	}
	return nil
}

// Handlers processes tracked deltas from every table that can change a
// flow's translation without rescanning every local datapath's full flow
// set: the logical flow rows themselves, the address sets and port groups
// their Match strings reference, and the datapath-scoped tables (MAC
// bindings, FDB, multicast groups, load balancers, datapath groups) that
// influence translation without being named in Match (spec.md §4.4).
func (n *LflowOutputNode) Handlers() map[string]engine.InputHandler {
	return map[string]engine.InputHandler{
		"logical_flow": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.LogicalFlow])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			updated := false
			for _, d := range deltas {
				switch d.Tag {
				case model.RowDeleted:
					if n.removeFlow(d.Row.UUID) {
						updated = true
					}
				default:
					if !n.localDatapath(d.Row.LogicalDP) {
						continue
					}
					if err := n.translateFlow(d.Row); err != nil {
						return engine.HandlerUnhandled, nil
					}
					updated = true
				}
			}
			if updated {
				return engine.HandlerUpdated, nil
			}
			return engine.HandlerUnchanged, nil
		},
		RuntimeDataNodeName: func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			// Local datapath membership changed: the set of logical flows
			// worth translating may have shifted, so fall back to a full
			// recompute rather than guessing which flows newly qualify.
			return engine.HandlerUnhandled, nil
		},
		AddrSetNodeName: func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			// AddrSetNode's materialized content changed; a full recompute
			// is the simplest way to make sure every flow's digest reflects
			// the new content.
			return engine.HandlerUnhandled, nil
		},
		PortGroupNodeName: func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			return engine.HandlerUnhandled, nil
		},
		"sb/address_set": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.AddressSet])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			keys := make([]string, 0, len(deltas))
			for _, d := range deltas {
				keys = append(keys, "addrset:"+d.Row.Name)
			}
			if n.retranslateAffected(keys) {
				return engine.HandlerUpdated, nil
			}
			return engine.HandlerUnchanged, nil
		},
		"sb/port_group": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.PortGroup])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			keys := make([]string, 0, len(deltas))
			for _, d := range deltas {
				keys = append(keys, "portgroup:"+d.Row.Name)
			}
			if n.retranslateAffected(keys) {
				return engine.HandlerUpdated, nil
			}
			return engine.HandlerUnchanged, nil
		},
		"chassis_template_var": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			// A template variable can retarget an address set's content in
			// ways this node cannot resolve on its own; defer to AddrSetNode
			// and fall back to a full recompute.
			return engine.HandlerUnhandled, nil
		},
		"logical_dp_group": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.LogicalDPGroup])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			dps := make(map[model.UUID]bool)
			for _, d := range deltas {
				for _, dp := range d.Row.Datapaths {
					n.auxGen[dp]++
					dps[dp] = true
				}
			}
			if n.retranslateForDatapaths(dps) {
				return engine.HandlerUpdated, nil
			}
			return engine.HandlerUnchanged, nil
		},
		"sb/load_balancer": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.LoadBalancer])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			dps := make(map[model.UUID]bool)
			for _, d := range deltas {
				for _, dp := range d.Row.Datapaths {
					n.auxGen[dp]++
					dps[dp] = true
				}
			}
			if n.retranslateForDatapaths(dps) {
				return engine.HandlerUpdated, nil
			}
			return engine.HandlerUnchanged, nil
		},
		"mac_binding": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.MACBinding])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			dps := make(map[model.UUID]bool)
			for _, d := range deltas {
				n.auxGen[d.Row.Datapath]++
				dps[d.Row.Datapath] = true
			}
			if n.retranslateForDatapaths(dps) {
				return engine.HandlerUpdated, nil
			}
			return engine.HandlerUnchanged, nil
		},
		"static_mac_binding": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.StaticMACBinding])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			dps := make(map[model.UUID]bool)
			for _, d := range deltas {
				if dp, ok := n.datapathForPort(d.Row.LogicalPort); ok {
					n.auxGen[dp]++
					dps[dp] = true
				}
			}
			if n.retranslateForDatapaths(dps) {
				return engine.HandlerUpdated, nil
			}
			return engine.HandlerUnchanged, nil
		},
		"fdb": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.FDB])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			dps := make(map[model.UUID]bool)
			for _, d := range deltas {
				if dp, ok := n.datapathForTunnelKey(d.Row.DPKey); ok {
					n.auxGen[dp]++
					dps[dp] = true
				}
			}
			if n.retranslateForDatapaths(dps) {
				return engine.HandlerUpdated, nil
			}
			return engine.HandlerUnchanged, nil
		},
		"multicast_group": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.MulticastGroup])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			dps := make(map[model.UUID]bool)
			for _, d := range deltas {
				n.auxGen[d.Row.Datapath]++
				dps[d.Row.Datapath] = true
			}
			if n.retranslateForDatapaths(dps) {
				return engine.HandlerUpdated, nil
			}
			return engine.HandlerUnchanged, nil
		},
	}
}

func (n *LflowOutputNode) localDatapath(dp model.UUID) bool {
	for _, d := range n.RuntimeData.LocalDatapaths() {
		if d == dp {
			return true
		}
	}
	return false
}

func (n *LflowOutputNode) datapathForPort(port model.UUID) (model.UUID, bool) {
	for _, pb := range n.RuntimeData.PortBindings.Snapshot() {
		if pb.UUID == port {
			return pb.Datapath, true
		}
	}
	return "", false
}

func (n *LflowOutputNode) datapathForTunnelKey(key int32) (model.UUID, bool) {
	for _, db := range n.RuntimeData.DatapathBindings.Snapshot() {
		if db.TunnelKey == key {
			return db.UUID, true
		}
	}
	return "", false
}

func (n *LflowOutputNode) addrSetUUID(name string) (model.UUID, bool) {
	if n.AddrSets == nil {
		return "", false
	}
	for _, as := range n.AddrSets.AddressSets.Snapshot() {
		if as.Name == name {
			return as.UUID, true
		}
	}
	return "", false
}

func (n *LflowOutputNode) portGroupUUID(name string) (model.UUID, bool) {
	if n.PortGroups == nil {
		return "", false
	}
	for _, pg := range n.PortGroups.PortGroups.Snapshot() {
		if pg.Name == name {
			return pg.UUID, true
		}
	}
	return "", false
}

// resolveDigests computes a stable digest of the address sets and port
// groups lf.Match references, and records lf as a dependent of each in
// n.deps so a later change to any of them revisits lf (spec.md §4.4).
func (n *LflowOutputNode) resolveDigests(lf model.LogicalFlow) (addrDigest, pgDigest string) {
	names := referencedNames(lf.Match)
	var addrParts, pgParts []string
	for _, name := range names {
		if uuid, ok := n.addrSetUUID(name); ok {
			n.deps.AddDependency("addrset:"+name, lf.UUID)
			addrParts = append(addrParts, name+"="+strings.Join(n.AddrSets.Addresses(uuid), ","))
		}
		if uuid, ok := n.portGroupUUID(name); ok {
			n.deps.AddDependency("portgroup:"+name, lf.UUID)
			members := n.PortGroups.LocalMembers(uuid)
			strs := make([]string, len(members))
			for i, m := range members {
				strs[i] = string(m)
			}
			pgParts = append(pgParts, name+"="+strings.Join(strs, ","))
		}
	}
	sort.Strings(addrParts)
	sort.Strings(pgParts)
	return strings.Join(addrParts, ";"), strings.Join(pgParts, ";")
}

func (n *LflowOutputNode) translateFlow(lf model.LogicalFlow) error {
	n.removeFlow(lf.UUID)

	addrDigest, pgDigest := n.resolveDigests(lf)
	fp := lflowFingerprint(lf, addrDigest, pgDigest, n.auxGen[lf.LogicalDP])
	entries, ok := n.Cache.Get(fp)
	if !ok {
		var err error
		entries, err = n.Translator.TranslateLogicalFlow(lf, n.RuntimeData.LocalDatapaths())
		if err != nil {
			return err
		}
		n.Cache.Put(fp, entries)
	}

	cookies := make([]uint64, 0, len(entries))
	for i, e := range entries {
		cookie := lflowCookie(lf.UUID) ^ uint64(i)
		e.Cookie = cookie
		n.desired[cookie] = e
		cookies = append(cookies, cookie)
	}
	n.cookieOf[lf.UUID] = cookies
	n.lfByID[lf.UUID] = lf
	return nil
}

func (n *LflowOutputNode) removeFlow(id model.UUID) bool {
	cookies, ok := n.cookieOf[id]
	if !ok {
		return false
	}
	for _, c := range cookies {
		delete(n.desired, c)
	}
	delete(n.cookieOf, id)
	delete(n.lfByID, id)
	n.deps.RemoveObject(id)
	return true
}

// retranslateAffected re-translates every flow recorded as depending on any
// of keys (e.g. "addrset:set1"), without rescanning the full logical flow
// table.
func (n *LflowOutputNode) retranslateAffected(keys []string) bool {
	affected := make(map[model.UUID]bool)
	for _, k := range keys {
		for _, id := range n.deps.Affected(k) {
			affected[id] = true
		}
	}
	updated := false
	for id := range affected {
		if lf, ok := n.lfByID[id]; ok {
			if err := n.translateFlow(lf); err == nil {
				updated = true
			}
		}
	}
	return updated
}

// retranslateForDatapaths re-translates every currently tracked flow
// assigned to one of dps, used by tables that influence translation by
// datapath rather than by name reference (spec.md §4.4).
func (n *LflowOutputNode) retranslateForDatapaths(dps map[model.UUID]bool) bool {
	if len(dps) == 0 {
		return false
	}
	updated := false
	for id, lf := range n.lfByID {
		if !dps[lf.LogicalDP] {
			continue
		}
		_ = id
		if err := n.translateFlow(lf); err == nil {
			updated = true
		}
	}
	return updated
}

// Run performs a full recompute: every local logical flow is (re)translated
// and the desired table is rebuilt from scratch.
func (n *LflowOutputNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	n.desired = make(map[uint64]translate.FlowEntry)
	n.cookieOf = make(map[model.UUID][]uint64)
	n.lfByID = make(map[model.UUID]model.LogicalFlow)
	n.deps = NewDepGraph()

	for _, lf := range n.LogicalFlows.Snapshot() {
		if !n.localDatapath(lf.LogicalDP) {
			continue
		}
		if err := n.translateFlow(lf); err != nil {
			return false, fmt.Errorf("nodes: translating logical flow %s: %w", lf.UUID, err)
		}
	}
	n.touched = true
	return true, nil
}

func (n *LflowOutputNode) Delta() any { return nil }

func (n *LflowOutputNode) ClearTracked() { n.touched = false }

func (n *LflowOutputNode) Cleanup() {}

func (n *LflowOutputNode) Validity() engine.Validity { return engine.Valid }

// DesiredFlows returns the current desired OpenFlow entries, keyed by
// cookie.
func (n *LflowOutputNode) DesiredFlows() map[uint64]translate.FlowEntry { return n.desired }
