/*
Package unixctl implements the daemon's local control surface: a Unix-
domain-socket JSON-RPC server (spec.md §4.12) exposing the command table
spec.md §6 names — exit, recompute, sb-cluster-state-reset,
debug/pause|resume|status, debug/delay-nb-cfg-report, ct-zone-list,
group-table-list, meter-table-list, inject-pkt, lflow-cache/flush,
lflow-cache/show-stats, debug/dump-*.

Grounded on the teacher's pkg/api (gRPC server + ReadOnlyInterceptor), with
the transport reworked from mTLS gRPC to a local Unix-domain socket — the
daemon's control surface is reached only from the same host, so the
teacher's certificate-based authentication is replaced by filesystem
permissions on the socket itself, and the interceptor's read-only/write
split becomes a per-command registration flag instead of a method-name
prefix convention.
*/
package unixctl
