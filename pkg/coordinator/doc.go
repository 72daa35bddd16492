/*
Package coordinator sequences the two transaction streams this daemon
writes — the southbound logical-network database and the local
virtual-switch database — tracking their in-flight status, gating writer
nodes on writable status, and retrying failed commits (spec.md §3
"Transaction & commit coordinator", [ADDED] §4.11).

It is grounded on the teacher's pkg/manager.Manager (owns the store and
drives its lifecycle) and pkg/storage.Store (the transactional persistence
boundary), generalized from a single raft-backed KV store into two
independent, non-replicated transaction streams, since southbound/vswitch
replication is itself external to this daemon.
*/
package coordinator
