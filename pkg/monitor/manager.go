package monitor

import (
	"sync"

	"github.com/cuemby/ovncontroller/pkg/model"
)

// Tables requesting every row until the local chassis identity is known,
// because their absence would disrupt traffic (spec.md §4.3 "Startup mode").
const (
	TablePortBinding    = "port_binding"
	TableAdvertisedRoute = "advertised_route"
	TableChassisPrivate  = "chassis_private"
)

var startupTables = []string{TablePortBinding, TableAdvertisedRoute, TableChassisPrivate}

// LocalScope is the subset of the local-scope sets (spec.md §3.2) the
// monitor-condition manager needs to derive clauses from. It is passed in
// by the runtime-data node rather than owned here, keeping this package
// free of a dependency on pkg/nodes.
type LocalScope struct {
	LocalDatapaths []model.UUID
	LocalPorts     []model.UUID
	RelatedPorts   []model.UUID
}

func uuidStrings(ids []model.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// Manager owns the current condition set, the local chassis identity, and
// the acknowledgment water mark consumers of nb_cfg must wait on (spec.md
// §4.3, §4.7).
type Manager struct {
	mu           sync.Mutex
	chassis      string
	monitorAll   bool
	current      Conditions
	expectedSeq  uint64
	ackedSeq     uint64
}

// NewManager creates a manager with no chassis identity yet, so the first
// Recompute runs in startup mode.
func NewManager() *Manager {
	return &Manager{}
}

// SetMonitorAll forces every recompute into full monitoring, for the
// ovn-monitor-all external-ids override (spec.md §6).
func (m *Manager) SetMonitorAll(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monitorAll = on
}

// Recompute derives a fresh Conditions set from scope and the local chassis
// identity (empty string if not yet resolved). If the result differs from
// the currently submitted set, ExpectedCondSeqno is advanced and the new
// conditions are returned for submission; callers must call Ack once the
// server confirms it (spec.md §4.3 "Invariant").
func (m *Manager) Recompute(scope LocalScope, chassis string) (Conditions, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := NewBuilder()
	switch {
	case m.monitorAll:
		b.MonitorAll()
		for _, t := range startupTables {
			b.Table(t)
		}
	case chassis == "":
		for _, t := range startupTables {
			b.Table(t)
		}
	default:
		b.Clause(TablePortBinding, "datapath", uuidStrings(scope.LocalDatapaths)...)
		b.Clause(TablePortBinding, "chassis", chassis)
		b.Clause(TablePortBinding, "type", "patch", "chassisredirect", "external")
		b.Table(TableChassisPrivate)
		b.Clause(TableAdvertisedRoute, "datapath", uuidStrings(scope.LocalDatapaths)...)
	}
	next := b.Build()

	m.chassis = chassis
	if m.current != nil && m.current.Equal(next) {
		return m.current, false
	}
	m.current = next
	m.expectedSeq++
	return next, true
}

// Ack records that seqno has been acknowledged by the server.
func (m *Manager) Ack(seqno uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seqno > m.ackedSeq {
		m.ackedSeq = seqno
	}
}

// ExpectedCondSeqno returns the sequence number the current condition set
// was submitted under.
func (m *Manager) ExpectedCondSeqno() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expectedSeq
}

// Acked reports whether the server has confirmed the currently expected
// condition sequence number. Consumers gate nb_cfg advancement on this
// (spec.md §4.7 "Ignore nb_cfg while monitor-condition acknowledgment is
// pending").
func (m *Manager) Acked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ackedSeq >= m.expectedSeq
}

// Current returns the most recently computed condition set.
func (m *Manager) Current() Conditions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
