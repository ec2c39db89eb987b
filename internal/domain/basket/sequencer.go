// internal/domain/basket/sequencer.go
package basket

import "sync"

// Sequencer orders in-flight aggregation requests. Each recompute begins with
// a fresh sequence number; a result may only be committed if no later request
// has committed first, so a superseded recompute can never overwrite a newer
// one.
type Sequencer struct {
	mu        sync.Mutex
	next      uint64
	committed uint64
}

// Begin allocates the sequence number for a new aggregation request
func (s *Sequencer) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

// Accept reports whether the result for seq may be committed, and records the
// commit when it may. Stale results are discarded.
func (s *Sequencer) Accept(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.committed {
		return false
	}
	s.committed = seq
	return true
}
