/*
Package nodes holds the domain computations registered into the engine
graph: local-scope derivation, logical/physical flow output, the interface-
status manager, nb_cfg propagation, the connection-tracking zone allocator,
and the address-set/port-group/load-balancer/route materializers (spec.md
§4.4–§4.10).

Every type here implements engine.Node and is grounded on the teacher's
pkg/reconciler shape (a stateful owner of one concern, re-invoked each
cycle, diffing against what it last produced) generalized from a fixed
reconcile loop into the engine's recompute/handle strategy selection.
*/
package nodes
