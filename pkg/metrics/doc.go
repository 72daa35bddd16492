/*
Package metrics exposes ovncontroller's Prometheus metrics.

It instruments the engine's own control loop (iteration count/duration,
per-node recompute-vs-handle counts, force-recompute state), the derived
state the engine maintains (local scope sizes, lflow cache occupancy,
ct-zone allocations), and the transaction/commit coordinator (commit
outcomes and latency per database). It also registers gauges and counters
for the desired flow table size, lflow cache trims, nb_cfg values and
monitor-condition sequence numbers (DesiredFlowsTotal, LflowCacheTrimsTotal,
NbCfgAcked, NbCfgReceived, MonitorCondSeqnoExpected, MonitorCondSeqnoAcked);
nothing in this repository sets those, so they stay at zero. Metrics are
served over HTTP via Handler(), matching the teacher's promhttp-based
exposition pattern.

Collector runs an arbitrary sampling closure on a fixed interval so gauge
metrics owned by engine nodes stay fresh between iterations, without this
package importing the concrete node types (avoiding an import cycle between
metrics and nodes).
*/
package metrics
