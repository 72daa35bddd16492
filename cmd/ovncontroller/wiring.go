package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cuemby/ovncontroller/pkg/coordinator"
	"github.com/cuemby/ovncontroller/pkg/log"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/nodes/route"
	"github.com/cuemby/ovncontroller/pkg/openflow"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/cuemby/ovncontroller/pkg/translate"
	"github.com/google/uuid"
)

// dbSource adapts an ovsdb.Dialer into an ovsdb.Source[R]. The JSON-RPC
// monitor/transact decoding that would turn bytes on the wire into rows is
// the wire-protocol depth spec.md §1 explicitly places out of scope; this
// adapter keeps the connection warm and reports Connected() so downstream
// nodes see accurate validity, exactly the contract pkg/ovsdb/leaf.go
// documents for a "real implementation".
type dbSource[R any] struct {
	dialer *ovsdb.Dialer
}

func (s *dbSource[R]) Connected() bool { return s.dialer.Connected() }

func (s *dbSource[R]) Refresh(ctx context.Context) ([]R, []ovsdb.RowDelta[R], error) {
	if _, err := s.dialer.Conn(ctx); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

// loggingWriter is a placeholder openflow.Writer that logs what it would
// install/remove instead of speaking the OpenFlow wire protocol, which
// spec.md §1 Non-goals excludes ("translation from logical flows to
// OpenFlow matches/actions ... are outside scope").
type loggingWriter struct {
	seqno    *openflow.SeqnoTracker
	barrier  uint64
}

func (w *loggingWriter) Install(table uint8, entries []translate.FlowEntry) error {
	log.WithComponent("openflow").Debug().Int("table", int(table)).Int("count", len(entries)).Msg("install flows")
	return nil
}

func (w *loggingWriter) Remove(table uint8, cookies []uint64) error {
	log.WithComponent("openflow").Debug().Int("table", int(table)).Int("count", len(cookies)).Msg("remove flows")
	return nil
}

func (w *loggingWriter) Barrier() (uint64, error) {
	w.barrier++
	seq := w.barrier
	if w.seqno != nil {
		w.seqno.Ack(seq)
	}
	return seq, nil
}

// loggingCommitter is a placeholder coordinator.Committer that logs staged
// mutations instead of issuing the real OVSDB transact RPC, the same
// wire-protocol depth left opaque throughout pkg/ovsdb.
type loggingCommitter struct{}

func (c *loggingCommitter) Commit(ctx context.Context, db coordinator.DBKind, mutations []coordinator.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}
	log.WithComponent("coordinator").Debug().Str("db", db.String()).Int("count", len(mutations)).Msg("commit mutations")
	return nil
}

// vswitchBridgeStore adapts the local bridge/flow-table snapshots and the
// write coordinator into bridge.Store, so EnsureIntegrationBridge can run
// against the same staged-mutation path every other writer node uses
// (spec.md §6 "Integration bridge creation").
type vswitchBridgeStore struct {
	bridges    *ovsdb.Table[model.Bridge]
	coordinator *coordinator.Coordinator
}

func (s *vswitchBridgeStore) FindBridgeByName(name string) (model.Bridge, bool) {
	for _, b := range s.bridges.Snapshot() {
		if b.Name == name {
			return b, true
		}
	}
	return model.Bridge{}, false
}

func (s *vswitchBridgeStore) InsertFlowTable(ft model.FlowTable) (model.UUID, error) {
	id := model.UUID(uuid.NewString())
	ft.UUID = id
	s.coordinator.Stage(coordinator.VswitchDB, "flow_table", coordinator.OpInsert, ft)
	return id, nil
}

func (s *vswitchBridgeStore) InsertBridge(b model.Bridge) (model.UUID, error) {
	id := model.UUID(uuid.NewString())
	b.UUID = id
	s.coordinator.Stage(coordinator.VswitchDB, "bridge", coordinator.OpInsert, b)
	return id, nil
}

// netlinkRouteSource reads learned routes off the host by parsing "ip route
// show dev <dev>" output, the "status" half of the notify/status/diff-apply
// pattern (spec.md §4.10), grounded on pkg/netlink's own shelled-"ip"
// approach.
type netlinkRouteSource struct{}

func (s *netlinkRouteSource) LearnedRoutes(dev string) ([]route.LearnedRoute, error) {
	out, err := exec.Command("ip", "route", "show", "dev", dev).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("netlinkRouteSource: ip route show dev %s: %w", dev, err)
	}
	var routes []route.LearnedRoute
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lr := route.LearnedRoute{Prefix: fields[0]}
		for i, f := range fields {
			if f == "via" && i+1 < len(fields) {
				lr.Nexthop = fields[i+1]
			}
		}
		routes = append(routes, lr)
	}
	return routes, nil
}
