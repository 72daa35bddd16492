package nodes

import "github.com/cuemby/ovncontroller/pkg/model"

// ExtendTables tracks the desired-vs-existing side of OpenFlow group and
// meter table entries that logical flows reference by id, separately from
// the flow table itself, so a group/meter allocation survives even while
// its referencing flow is being re-translated (spec.md §4.4 "Extend
// tables").
type ExtendTables struct {
	desiredGroups map[int32]model.UUID // group id -> owner key (a load balancer's "<lb UUID>|<vip>")
	existingGroups map[int32]bool

	desiredMeters map[int32]model.UUID // meter id -> owning Meter UUID
	existingMeters map[int32]bool

	nextGroupID int32
	nextMeterID int32
}

// NewExtendTables creates an empty extend-tables tracker.
func NewExtendTables() *ExtendTables {
	return &ExtendTables{
		desiredGroups:  make(map[int32]model.UUID),
		existingGroups: make(map[int32]bool),
		desiredMeters:  make(map[int32]model.UUID),
		existingMeters: make(map[int32]bool),
		nextGroupID:    1,
		nextMeterID:    1,
	}
}

// AllocateGroup assigns (or returns the existing) group id for owner,
// scanning desiredGroups for a prior allocation before minting a new one.
func (e *ExtendTables) AllocateGroup(owner model.UUID) int32 {
	for id, o := range e.desiredGroups {
		if o == owner {
			return id
		}
	}
	id := e.nextGroupID
	e.nextGroupID++
	e.desiredGroups[id] = owner
	return id
}

// AllocateMeter assigns (or returns the existing) meter id for owner.
func (e *ExtendTables) AllocateMeter(owner model.UUID) int32 {
	for id, o := range e.desiredMeters {
		if o == owner {
			return id
		}
	}
	id := e.nextMeterID
	e.nextMeterID++
	e.desiredMeters[id] = owner
	return id
}

// ReleaseOwner drops every group/meter id allocated to owner, called when
// the owning row (multicast group, load balancer, meter) is deleted.
func (e *ExtendTables) ReleaseOwner(owner model.UUID) {
	for id, o := range e.desiredGroups {
		if o == owner {
			delete(e.desiredGroups, id)
			delete(e.existingGroups, id)
		}
	}
	for id, o := range e.desiredMeters {
		if o == owner {
			delete(e.desiredMeters, id)
			delete(e.existingMeters, id)
		}
	}
}

// GroupOwners returns the currently allocated group ids and the owner key
// of each, for the unixctl group-table-list command.
func (e *ExtendTables) GroupOwners() map[int32]string {
	out := make(map[int32]string, len(e.desiredGroups))
	for id, owner := range e.desiredGroups {
		out[id] = string(owner)
	}
	return out
}

// MeterOwners returns the currently allocated meter ids and the UUID of
// the row that owns each, for the unixctl meter-table-list command.
func (e *ExtendTables) MeterOwners() map[int32]string {
	out := make(map[int32]string, len(e.desiredMeters))
	for id, owner := range e.desiredMeters {
		out[id] = string(owner)
	}
	return out
}

// Reconcile returns group and meter ids present in existing* but no longer
// in desired*, so the caller can remove them from the switch, then marks
// every desired id as existing.
func (e *ExtendTables) Reconcile() (staleGroups, staleMeters []int32) {
	for id := range e.existingGroups {
		if _, ok := e.desiredGroups[id]; !ok {
			staleGroups = append(staleGroups, id)
		}
	}
	for id := range e.existingMeters {
		if _, ok := e.desiredMeters[id]; !ok {
			staleMeters = append(staleMeters, id)
		}
	}
	for id := range staleGroups {
		delete(e.existingGroups, staleGroups[id])
	}
	for id := range staleMeters {
		delete(e.existingMeters, staleMeters[id])
	}
	for id := range e.desiredGroups {
		e.existingGroups[id] = true
	}
	for id := range e.desiredMeters {
		e.existingMeters[id] = true
	}
	return staleGroups, staleMeters
}
