package nodes

import (
	"context"

	"github.com/cuemby/ovncontroller/pkg/coordinator"
	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/monitor"
	"github.com/cuemby/ovncontroller/pkg/openflow"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
)

// NbCfgNodeName is this node's registered engine.Node name.
const NbCfgNodeName = "nb_cfg"

// NbCfgNode publishes, on the chassis-private row, the highest nb_cfg for
// which every required flow is installed and acknowledged locally (spec.md
// §4.7). It refuses to advance while monitor-condition acknowledgment is
// pending, and binds the write to OpenFlow rule installation via the
// sequence-number subsystem rather than to mere desired-table mutation.
type NbCfgNode struct {
	SBGlobal        *ovsdb.Table[model.SBGlobal]
	ChassisPrivates *ovsdb.Table[model.ChassisPrivate]
	ChassisName     func() string
	Monitor         *monitor.Manager
	Seqno           *openflow.SeqnoTracker
	Writer          openflow.Writer
	Coordinator     *coordinator.Coordinator

	published    int64
	pendingNbCfg int64
	pendingSeqno uint64
}

func (n *NbCfgNode) Name() string { return NbCfgNodeName }

func (n *NbCfgNode) Flags() engine.Flags { return 0 }

func (n *NbCfgNode) Initialize(ctx context.Context) error { return nil }

func (n *NbCfgNode) Handlers() map[string]engine.InputHandler { return nil }

// Run re-evaluates whether the currently pending nb_cfg can be published:
// it must have an OpenFlow barrier seqno already acknowledged, and monitor
// conditions must not have a pending, unacknowledged recompute (spec.md
// §4.7 "Ignore nb_cfg while monitor-condition acknowledgment is pending").
func (n *NbCfgNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	rows := n.SBGlobal.Snapshot()
	if len(rows) == 0 {
		return false, nil
	}
	current := rows[0].NbCfg

	if n.Monitor != nil && !n.Monitor.Acked() {
		return false, nil
	}

	if current != n.pendingNbCfg {
		n.pendingNbCfg = current
		if n.Writer != nil {
			if seqno, err := n.Writer.Barrier(); err == nil {
				n.pendingSeqno = seqno
			}
		}
	}

	if n.Seqno != nil && n.Seqno.Acked() < n.pendingSeqno {
		return false, nil
	}

	if n.pendingNbCfg <= n.published {
		return false, nil
	}

	n.published = n.pendingNbCfg
	n.writeChassisPrivate()
	return true, nil
}

func (n *NbCfgNode) writeChassisPrivate() {
	if n.Coordinator == nil || !n.Coordinator.Writable(coordinator.SouthboundDB) {
		return
	}
	chassis := ""
	if n.ChassisName != nil {
		chassis = n.ChassisName()
	}
	for _, cp := range n.ChassisPrivates.Snapshot() {
		if cp.Name != chassis {
			continue
		}
		updated := cp
		updated.NbCfg = n.published
		n.Coordinator.Stage(coordinator.SouthboundDB, "chassis_private", coordinator.OpUpdate, updated)
		return
	}
}

func (n *NbCfgNode) Delta() any { return n.published }

func (n *NbCfgNode) ClearTracked() {}

func (n *NbCfgNode) Cleanup() {}

func (n *NbCfgNode) Validity() engine.Validity { return engine.Valid }

// Published returns the highest nb_cfg acknowledged as fully installed.
func (n *NbCfgNode) Published() int64 { return n.published }
