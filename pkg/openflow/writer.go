package openflow

import "github.com/cuemby/ovncontroller/pkg/translate"

// Writer installs and removes OpenFlow entries on the integration bridge's
// control channel. No node calls Install or Remove: the lflow and pflow
// output nodes only hold their desired entries (DesiredFlows), and the
// interface-status and nb_cfg nodes call only Barrier.
type Writer interface {
	Install(table uint8, entries []translate.FlowEntry) error
	Remove(table uint8, cookies []uint64) error
	// Barrier requests a barrier and returns the sequence number the switch
	// will echo back once every previously submitted write has taken
	// effect (spec.md §4.6 "driven by an OpenFlow sequence-number
	// subscription").
	Barrier() (seqno uint64, err error)
}
