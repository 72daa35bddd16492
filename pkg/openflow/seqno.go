package openflow

import "sync"

// SeqnoTracker tracks the highest OpenFlow sequence number the switch has
// acknowledged and lets callers subscribe to "this seqno (or later) has
// been applied" without polling (spec.md §4.6, §4.7).
type SeqnoTracker struct {
	mu      sync.Mutex
	acked   uint64
	waiters map[uint64][]func()
}

// NewSeqnoTracker creates a tracker starting at seqno 0.
func NewSeqnoTracker() *SeqnoTracker {
	return &SeqnoTracker{waiters: make(map[uint64][]func())}
}

// NotifyOnAck registers cb to run the next time Ack reaches seqno. If seqno
// has already been acknowledged, cb runs immediately.
func (s *SeqnoTracker) NotifyOnAck(seqno uint64, cb func()) {
	s.mu.Lock()
	if s.acked >= seqno {
		s.mu.Unlock()
		cb()
		return
	}
	s.waiters[seqno] = append(s.waiters[seqno], cb)
	s.mu.Unlock()
}

// Ack records that seqno has been applied by the switch and fires every
// waiter registered at or below it.
func (s *SeqnoTracker) Ack(seqno uint64) {
	s.mu.Lock()
	if seqno <= s.acked {
		s.mu.Unlock()
		return
	}
	s.acked = seqno
	var ready []func()
	for at, cbs := range s.waiters {
		if at <= seqno {
			ready = append(ready, cbs...)
			delete(s.waiters, at)
		}
	}
	s.mu.Unlock()
	for _, cb := range ready {
		cb()
	}
}

// Acked returns the highest sequence number applied so far.
func (s *SeqnoTracker) Acked() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acked
}
