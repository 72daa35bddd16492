package model

// OpenVSwitch is the single top-level row of the virtual-switch database,
// carrying the external_ids configuration keys of spec.md §6.
type OpenVSwitch struct {
	UUID        UUID
	Bridges     []UUID
	ExternalIDs map[string]string
	OtherConfig map[string]string
}

// Bridge is a virtual-switch bridge; br-int is the integration bridge this
// controller manages (spec.md §6 "Integration bridge creation").
type Bridge struct {
	UUID          UUID
	Name          string
	Ports         []UUID
	FailMode      string
	DatapathType  string
	DatapathID    string
	Flows         []UUID
	ExternalIDs   map[string]string
	OtherConfig   map[string]string
}

// Port is a virtual-switch port, grouping one or more interfaces (a bond).
type Port struct {
	UUID        UUID
	Name        string
	Interfaces  []UUID
	Tag         int32
	QoS         UUID
	ExternalIDs map[string]string
}

// Interface is the per-NIC row the runtime-data node watches for
// external_ids:iface-id to discover locally-resident logical ports
// (spec.md §4.5).
type Interface struct {
	UUID        UUID
	Name        string
	Type        string
	OFPort      int32
	MAC         string
	AdminState  string
	LinkState   string
	ExternalIDs map[string]string
	Options     map[string]string
}

// QoS and Queue describe per-port rate limiting.
type QoS struct {
	UUID    UUID
	Type    string
	Queues  map[int32]UUID
}

type Queue struct {
	UUID UUID
	DSCP int32
}

// SSL holds the virtual-switch database's TLS material reference; wiring it
// up is out of scope (spec.md §1 Non-goals: "TLS wiring").
type SSL struct {
	UUID            UUID
	PrivateKeyFile  string
	CertificateFile string
	CACertFile      string
}

// FlowTable is the shared flow-table row referenced by every OpenFlow table
// index [0, 254], configured with prefix-match fields per spec.md §6.
type FlowTable struct {
	UUID          UUID
	Name          string
	PrefixFields  []string
}

// FlowSampleCollectorSet configures sFlow/IPFIX sampling; consumed here only
// as an opaque row the bridge references.
type FlowSampleCollectorSet struct {
	UUID    UUID
	ID      int32
	Bridge  UUID
}

// Datapath is the virtual-switch's own kernel/userspace datapath row
// (distinct from model.DatapathBinding, the southbound logical datapath).
type Datapath struct {
	UUID         UUID
	Name         string
	CTZones      map[string]int32
}

// CTZone is the virtual-switch's persisted view of connection-tracking zone
// assignments, read back by pkg/nodes/ctzone.go across restarts
// (spec.md §4.8, §8 restart-stability law).
type CTZone struct {
	UUID UUID
	Key  string // e.g. "port-<lport>" or "snat-<datapath>"
	Zone int32
}

// Mirror describes a traffic-mirroring configuration on the bridge;
// consumed here only as an opaque row.
type Mirror struct {
	UUID         UUID
	Name         string
	SelectAll    bool
	OutputPort   UUID
}
