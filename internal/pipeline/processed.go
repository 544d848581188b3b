package pipeline

import "sync"

// ProcessedSet is the in-process idempotency ledger of the controller.
// A message id is claimed the moment it is selected for processing,
// before any side-effecting call, and stays claimed for the process
// lifetime. This guarantees at most one reply attempt per message per
// process; a restart may legitimately reprocess messages that were
// claimed but never acknowledged at the source.
type ProcessedSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewProcessedSet creates an empty ProcessedSet.
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{ids: make(map[string]struct{})}
}

// Claim records the id as processed. It returns true if this call
// claimed the id, false if it was already claimed.
func (s *ProcessedSet) Claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Contains reports whether the id has been claimed.
func (s *ProcessedSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ids[id]
	return ok
}

// Len returns the number of claimed ids.
func (s *ProcessedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids)
}
