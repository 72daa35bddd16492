package nodes

import (
	"github.com/cuemby/ovncontroller/pkg/coordinator"
	"github.com/cuemby/ovncontroller/pkg/model"
)

// claimPort stages a pending chassis claim on pb's RequestedChassis column
// the first time this chassis observes a locally-advertised interface for
// it. The claim is reconciled asynchronously: the southbound server
// acknowledges it by writing pb.Chassis, which the next iteration's
// snapshot will reflect (spec.md §4.5 "Claims a chassis column write on
// first local advertisement of an interface, reconciled asynchronously by
// the interface-status manager").
func claimPort(c *coordinator.Coordinator, pb model.PortBinding, chassis string) {
	if c == nil || !c.Writable(coordinator.SouthboundDB) {
		return
	}
	claimed := pb
	claimed.RequestedChassis = model.UUID(chassis)
	c.Stage(coordinator.SouthboundDB, "port_binding", coordinator.OpUpdate, claimed)
}
