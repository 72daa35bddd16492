// Package translate declares the opaque translator interfaces the lflow and
// pflow output nodes depend on. Logical-to-OpenFlow match/action
// translation and DHCP/DNS/ARP responder logic are out of scope (spec.md
// §1 Non-goals); this package exists only to give those nodes a
// well-defined seam to call through, per spec.md §9's note that such
// concerns are consumed as opaque interfaces.
package translate

import "github.com/cuemby/ovncontroller/pkg/model"

// FlowEntry is one OpenFlow rule keyed by a cookie derived from the
// originating logical-flow UUID (spec.md §4.4).
type FlowEntry struct {
	Cookie   uint64
	Table    uint8
	Priority uint16
	Match    string
	Actions  string
}

// LogicalFlowTranslator turns one logical-flow row (plus the local chassis
// and datapath-group context it needs) into zero or more physical
// OpenFlow entries. Implementations own match/action compilation, which is
// out of this repository's scope.
type LogicalFlowTranslator interface {
	TranslateLogicalFlow(lf model.LogicalFlow, localDatapaths []model.UUID) ([]FlowEntry, error)
}

// PhysicalFlowTranslator compiles the physical pipeline (tunnel encap/decap,
// patch-port wiring, chassis-redirect delivery) for one local port binding.
type PhysicalFlowTranslator interface {
	TranslatePhysicalFlow(pb model.PortBinding, localChassis model.UUID) ([]FlowEntry, error)
}
