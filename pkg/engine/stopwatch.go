package engine

import (
	"sync"
	"time"
)

// Named stopwatch identifiers carried over from the original implementation's
// lib/stopwatch-names.h. Nothing in this repository records under these
// names: Run records one entry per node name, and the registry is reachable
// through Engine.Stopwatch. No debug/dump-stopwatch command is registered on
// the unixctl surface.
const (
	LoopStopwatch          = "ovn-controller-loop"
	BuildLflowsStopwatch   = "build_lflows"
	LflowsToSBStopwatch    = "lflows_to_sb"
	PortGroupRunStopwatch  = "port_group_run"
	SyncMetersRunStopwatch = "sync_meters_run"
	AdvertisedRouteSyncStopwatch = "advertised_route_sync"
	LearnedRouteSyncStopwatch    = "learned_route_sync"
)

// Stopwatch is a small named-interval timer registry. Each name accumulates
// a running count and total duration; Record is cheap enough to call from
// inside the engine's hot path.
type Stopwatch struct {
	mu   sync.Mutex
	data map[string]*stopwatchEntry
}

type stopwatchEntry struct {
	Count    uint64
	Total    time.Duration
	LastHit  time.Duration
}

// NewStopwatch creates an empty stopwatch registry.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{data: make(map[string]*stopwatchEntry)}
}

// Record adds one sample under name.
func (s *Stopwatch) Record(name string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[name]
	if !ok {
		e = &stopwatchEntry{}
		s.data[name] = e
	}
	e.Count++
	e.Total += d
	e.LastHit = d
}

// Stat is a point-in-time snapshot of one stopwatch entry.
type Stat struct {
	Name     string
	Count    uint64
	Total    time.Duration
	Average  time.Duration
	LastHit  time.Duration
}

// Snapshot returns a stable, sorted-by-name copy of every recorded
// stopwatch.
func (s *Stopwatch) Snapshot() []Stat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Stat, 0, len(s.data))
	for name, e := range s.data {
		avg := time.Duration(0)
		if e.Count > 0 {
			avg = e.Total / time.Duration(e.Count)
		}
		out = append(out, Stat{Name: name, Count: e.Count, Total: e.Total, Average: avg, LastHit: e.LastHit})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Name < out[j-1].Name; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Stopwatch exposes the engine's per-node timing registry for debug dumps.
func (e *Engine) Stopwatch() *Stopwatch { return e.stopwatch }
