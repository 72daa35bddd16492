/*
Package openflow declares the OpenFlow control-channel seam the physical-
flow and interface-status nodes depend on: a Writer that installs/removes
flow entries, and a sequence-number subsystem that lets a node learn when a
batch of writes it issued has actually been applied by the switch, as
opposed to merely accepted onto the wire (spec.md §4.6, §4.7). The wire
protocol itself — OpenFlow encoding, the control channel, barrier handling —
is out of scope (spec.md §1 Non-goals); this package only defines the
interfaces nodes call through.
*/
package openflow
