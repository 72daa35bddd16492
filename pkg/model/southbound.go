package model

// Chassis is this host's (or a peer's) identity in the cluster-wide logical
// network (spec.md Glossary).
type Chassis struct {
	UUID           UUID
	Name           string
	Hostname       string
	Encaps         []UUID
	TransportZones []string
	OtherConfig    map[string]string
}

// ChassisPrivate carries the per-chassis write-back fields the controller
// owns: the nb_cfg watermark (spec.md §4.7) and chassis-local bookkeeping.
type ChassisPrivate struct {
	UUID             UUID
	Name             string
	ChassisUUID      UUID
	NbCfg            int64
	NbCfgTimestamp   int64
	NodeDownSinceUTC int64
}

// Encap is a tunnel endpoint advertised by a chassis.
type Encap struct {
	UUID        UUID
	ChassisName string
	Type        string
	IP          string
	OtherConfig map[string]string
}

// ChassisTemplateVar holds per-chassis substitutions for template variables
// referenced from load balancers and ACLs (spec.md §4.9).
type ChassisTemplateVar struct {
	UUID     UUID
	Chassis  string
	Variable map[string]string
}

// DatapathBinding maps a logical switch/router to its compact tunnel-key
// identifier (spec.md Glossary: Datapath).
type DatapathBinding struct {
	UUID         UUID
	TunnelKey    int32
	ExternalIDs  map[string]string
	LoadBalancer []UUID
}

// PortBinding maps a logical port to a chassis and a physical means of
// reaching it (spec.md Glossary).
type PortBinding struct {
	UUID            UUID
	LogicalPort     string
	Datapath        UUID
	TunnelKey       int32
	Type            PortKind
	Chassis         UUID
	AdditionalChassis []UUID
	ParentPort      string
	Tag             int32
	MAC             []string
	Options         map[string]string
	ExternalIDs     map[string]string
	// RequestedChassis is written by runtime-data as a pending claim
	// (spec.md §4.5 Claims) before Chassis is acknowledged.
	RequestedChassis UUID
}

// LogicalFlow is a high-level match/action pair, translated by the opaque
// pkg/translate routines into OpenFlow rules (spec.md Glossary).
type LogicalFlow struct {
	UUID         UUID
	LogicalDP    UUID
	DPGroup      UUID
	Pipeline     string // "ingress" or "egress"
	TableID      int32
	Priority     int32
	Match        string
	Actions      string
	ExternalIDs  map[string]string
}

// LogicalDPGroup groups several datapaths sharing identical logical flows,
// letting a single LogicalFlow row fan out to all of them.
type LogicalDPGroup struct {
	UUID       UUID
	Datapaths  []UUID
}

// MulticastGroup names a set of ports that receive a flooded/multicast
// packet on a datapath.
type MulticastGroup struct {
	UUID      UUID
	Name      string
	Datapath  UUID
	TunnelKey int32
	Ports     []UUID
}

// MACBinding records a learned (IP, MAC) association on a datapath.
type MACBinding struct {
	UUID      UUID
	Datapath  UUID
	IP        string
	MAC       string
	LogicalPort string
}

// StaticMACBinding is an operator/controller-provisioned MAC binding that
// does not age out like a learned MACBinding.
type StaticMACBinding struct {
	UUID        UUID
	LogicalPort UUID
	IP          string
	MAC         string
	Override    bool
}

// FDB is a learned (tunnel-key, MAC) forwarding-database entry.
type FDB struct {
	UUID      UUID
	DPKey     int32
	MAC       string
	PortKey   int32
}

// DNS holds static name records served by the in-datapath DNS responder
// (whose logic is out of scope per spec.md §1 Non-goals; only the row shape
// that feeds it is modeled here).
type DNS struct {
	UUID     UUID
	Datapaths []UUID
	Records  map[string]string
}

// DHCPOptions and DHCPv6Options hold option sets referenced by PortBinding
// options; the DHCP responder logic itself is out of scope.
type DHCPOptions struct {
	UUID    UUID
	Cidr    string
	Options map[string]string
}

type DHCPv6Options struct {
	UUID    UUID
	Options map[string]string
}

// LoadBalancer is a southbound load-balancer definition materialized by
// pkg/nodes into per-datapath flows (spec.md §4.9).
type LoadBalancer struct {
	UUID        UUID
	Name        string
	Protocol    string
	Datapaths   []UUID
	VIPs        map[string][]string // vip:port -> backend ip:port list
	ExternalIDs map[string]string
}

// IPMulticast and IGMPGroup hold multicast-snooping state per datapath.
type IPMulticast struct {
	UUID              UUID
	Datapath          UUID
	Enabled           bool
	QuerierEnabled    bool
	MaxResponseSeconds int32
}

type IGMPGroup struct {
	UUID     UUID
	Address  string
	Datapath UUID
	Ports    []UUID
}

// AddressSet is a named set of IP addresses referenced from ACLs/logical
// flows, materialized and tracked by pkg/nodes/addrset.go.
type AddressSet struct {
	UUID      UUID
	Name      string
	Addresses []string
}

// PortGroup is a named set of logical ports referenced from ACLs,
// materialized by pkg/nodes/portgroup.go.
type PortGroup struct {
	UUID  UUID
	Name  string
	Ports []UUID
}

// Meter and MeterBand describe OpenFlow meter allocations requested by
// logical flows (spec.md §4.4 Extend tables).
type Meter struct {
	UUID  UUID
	Name  string
	Unit  string
	Bands []MeterBand
}

type MeterBand struct {
	Rate      int32
	BurstSize int32
}

// ControllerEvent is an operator-visible event row written back by the
// controller (e.g. packet-in drops reported through pinctrl).
type ControllerEvent struct {
	UUID        UUID
	EventType   string
	Chassis     UUID
	SeqNum      int64
	EventInfo   map[string]string
}

// HAChassisGroup orders a set of chassis for a gateway port's active/standby
// failover.
type HAChassisGroup struct {
	UUID     UUID
	Name     string
	Chassis  []HAChassisEntry
}

type HAChassisEntry struct {
	Chassis  UUID
	Priority int32
}

// AdvertisedRoute and LearnedRoute feed the route/neighbor/EVPN subsystem
// (spec.md §4.10).
type AdvertisedRoute struct {
	UUID      UUID
	Datapath  UUID
	IPPrefix  string
	Nexthop   string
	Port      UUID
}

type LearnedRoute struct {
	UUID      UUID
	Datapath  UUID
	IPPrefix  string
	Nexthop   string
	Port      UUID
}

// AdvertisedMACBinding is the EVPN analogue of MACBinding, advertised
// outward rather than learned locally.
type AdvertisedMACBinding struct {
	UUID        UUID
	Datapath    UUID
	IP          string
	MAC         string
}

// ACLID maps a stable numeric id to an ACL for logging/flow-cookie purposes.
type ACLID struct {
	UUID UUID
	ACL  UUID
	ID   int64
}

// SBGlobal is the southbound database's single global row, carrying the
// monotonic nb_cfg counter northbound issues (spec.md §4.7, Glossary).
type SBGlobal struct {
	UUID          UUID
	NbCfg         int64
	NbCfgTimestamp int64
	Options       map[string]string
	SSL           UUID
}
