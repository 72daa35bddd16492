/*
Package ovsdb provides the generic input-adapter layer shared by both
databases the engine reads from: the southbound logical-network database
and the local virtual-switch database (spec.md §4.2).

A Table[R] wraps one database table: Snapshot returns every row currently
known, Tracked returns this iteration's {new, updated, deleted} row deltas,
and Index looks up a named secondary index created once at startup and
retained for the process lifetime (spec.md §3 "Index"). LeafNode[R] adapts a
Table[R] into an engine.Node so it can be registered directly into the
engine graph as a leaf with no inputs.

Row identity survives a table re-snapshot via UUID; raw pointers returned by
Snapshot/Tracked are only valid between one ClearTracked and the next
refresh (spec.md §4.2 "Contract").
*/
package ovsdb
