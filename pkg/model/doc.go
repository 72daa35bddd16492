/*
Package model defines the row types for the two databases the engine reads
and writes: the cluster-wide southbound logical-network database and the
local virtual-switch (OVSDB integration-bridge) database.

These are plain Go structs, not an ORM: the engine's input adapters
(pkg/ovsdb) deliver pointers to these structs as tracked deltas, and nodes
cache the durable parts of their identity (UUID, tunnel key) rather than the
pointers themselves, per spec.md §3's ownership rule. Table layout and the
wire encoding used to fetch/update rows are out of scope (spec.md §1
Non-goals: "database schema definition") — this package only fixes the Go
shape that the rest of the engine programs against.
*/
package model
