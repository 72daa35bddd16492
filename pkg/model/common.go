package model

import "time"

// UUID is a database row identity. It survives a table re-snapshot; raw row
// pointers do not (spec.md §3, §4.2).
type UUID string

// RowTag classifies a tracked row delta.
type RowTag string

const (
	RowNew     RowTag = "new"
	RowUpdated RowTag = "updated"
	RowDeleted RowTag = "deleted"
)

// PortKind distinguishes the kinds of logical port a PortBinding can
// represent, per spec.md §4.5/§4.6.
type PortKind string

const (
	PortKindVIF             PortKind = "vif"
	PortKindPatch           PortKind = "patch"
	PortKindLocalnet        PortKind = "localnet"
	PortKindL3Gateway       PortKind = "l3gateway"
	PortKindChassisRedirect PortKind = "chassisredirect"
	PortKindExternal        PortKind = "external"
	PortKindVirtual         PortKind = "virtual"
)

// RequiresActivation reports whether claiming this port kind requires the
// deferred "activate" step (spec.md §4.5 Claims / §4.6) rather than an
// immediate claim.
func (k PortKind) RequiresActivation() bool {
	return k == PortKindL3Gateway || k == PortKindChassisRedirect
}

// Timestamped is embedded by rows that track last-update time for debug
// dumps and staleness checks.
type Timestamped struct {
	UpdatedAt time.Time
}
