/*
Package bridge ensures the local integration bridge exists with the
configuration this daemon requires before the main loop starts (spec.md §6
"Integration bridge creation"): a configurable name (default br-int),
fail-mode secure, other_config:disable-in-band=true, a random hardware
address so later port additions never force datapath-id recomputation, and
a single shared flow-table row referenced by every OpenFlow table index.

This is a one-shot bootstrap step, grounded on the teacher's pkg/embedded
ensure-exists-or-create pattern (ContainerdManager.Start checks for a
running daemon before launching one); here the equivalent check is "does a
bridge row with this name exist" before creating one.
*/
package bridge
