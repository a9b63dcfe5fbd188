package workflow

import "sync"

// GateStore keeps one Gate per conversation key for the process lifetime.
// Like the session registry it never evicts; state is lost on restart.
type GateStore struct {
	mu    sync.Mutex
	gates map[string]*Gate
	order []string
}

// NewGateStore constructs an empty store creating gates with the given
// worker order (DefaultWorkerOrder when nil).
func NewGateStore(order []string) *GateStore {
	return &GateStore{gates: make(map[string]*Gate), order: order}
}

// GetOrCreate returns the gate for key, creating it at the initial stage on
// first use.
func (s *GateStore) GetOrCreate(key string) *Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.gates[key]; ok {
		return g
	}
	g := NewGate(s.order)
	s.gates[key] = g
	return g
}
