package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Engine iteration metrics
	EngineIterationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ovncontroller_engine_iterations_total",
			Help: "Total number of engine iterations by completion kind (completed, canceled, error)",
		},
		[]string{"result"},
	)

	EngineIterationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ovncontroller_engine_iteration_duration_seconds",
			Help:    "Time taken for one engine iteration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	NodeRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ovncontroller_node_runs_total",
			Help: "Total number of node evaluations by node name and strategy (recompute, handle, skipped, canceled)",
		},
		[]string{"node", "strategy"},
	)

	NodeRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ovncontroller_node_run_duration_seconds",
			Help:    "Time taken to evaluate a single node in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"node"},
	)

	ForceRecompute = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_force_recompute",
			Help: "Whether force-recompute is set for the next iteration (1 = set, 0 = clear)",
		},
	)

	// Local scope metrics
	LocalDatapathsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_local_datapaths_total",
			Help: "Number of datapaths currently in local scope",
		},
	)

	LocalPortsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_local_ports_total",
			Help: "Number of logical ports resident on this chassis",
		},
	)

	// Flow output metrics
	DesiredFlowsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_desired_flows_total",
			Help: "Number of entries in the desired OpenFlow table",
		},
	)

	LflowCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_lflow_cache_entries",
			Help: "Number of entries currently held in the logical-flow translation cache",
		},
	)

	LflowCacheBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_lflow_cache_bytes",
			Help: "Approximate size in bytes of the logical-flow translation cache",
		},
	)

	LflowCacheTrimsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ovncontroller_lflow_cache_trims_total",
			Help: "Total number of times the logical-flow cache was trimmed for exceeding a high-water mark",
		},
	)

	// ct-zone allocator metrics
	CtZonesAllocated = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_ct_zones_allocated",
			Help: "Number of connection-tracking zone ids currently allocated",
		},
	)

	// nb_cfg propagation metrics
	NbCfgAcked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_nb_cfg_acked",
			Help: "Highest nb_cfg value acknowledged as fully installed by this chassis",
		},
	)

	NbCfgReceived = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_nb_cfg_received",
			Help: "Latest nb_cfg value observed on the southbound global row",
		},
	)

	// Commit coordinator metrics
	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ovncontroller_commits_total",
			Help: "Total number of transaction commits attempted, by database and outcome",
		},
		[]string{"database", "outcome"},
	)

	CommitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ovncontroller_commit_duration_seconds",
			Help:    "Time taken to commit a transaction in seconds, by database",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"database"},
	)

	// Monitor-condition metrics
	MonitorCondSeqnoExpected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_monitor_cond_seqno_expected",
			Help: "Sequence number expected to be acknowledged for the most recently submitted monitor conditions",
		},
	)

	MonitorCondSeqnoAcked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ovncontroller_monitor_cond_seqno_acked",
			Help: "Sequence number of the most recently acknowledged monitor conditions",
		},
	)

	// Control surface metrics
	UnixctlRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ovncontroller_unixctl_requests_total",
			Help: "Total number of unixctl control-surface requests by command and outcome",
		},
		[]string{"command", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		EngineIterationsTotal,
		EngineIterationDuration,
		NodeRunsTotal,
		NodeRunDuration,
		ForceRecompute,
		LocalDatapathsTotal,
		LocalPortsTotal,
		DesiredFlowsTotal,
		LflowCacheEntries,
		LflowCacheBytes,
		LflowCacheTrimsTotal,
		CtZonesAllocated,
		NbCfgAcked,
		NbCfgReceived,
		CommitsTotal,
		CommitDuration,
		MonitorCondSeqnoExpected,
		MonitorCondSeqnoAcked,
		UnixctlRequestsTotal,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
