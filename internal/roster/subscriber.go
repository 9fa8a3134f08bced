package roster

import "sync"

// subscriber wraps a snapshot channel so it can be closed exactly once.
type subscriber struct {
	ch     chan Snapshot
	mu     sync.Mutex
	closed bool
}

// trySend delivers a snapshot without blocking. Slow subscribers miss
// intermediate snapshots and pick up the next one.
func (s *subscriber) trySend(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- snap:
	default:
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
