package flow

import (
	"sync"

	"github.com/campaignmesh/campaignmesh/core"
)

// DelegationTracker remembers which delegation tool-use id spawned which
// worker, so that worker-authored events carrying only a parent link can be
// attributed to the worker by name. Scope is a single turn.
type DelegationTracker struct {
	mu        sync.RWMutex
	byToolUse map[string]string
	last      *core.DelegationRequest
}

// NewDelegationTracker constructs an empty tracker.
func NewDelegationTracker() *DelegationTracker {
	return &DelegationTracker{byToolUse: make(map[string]string)}
}

// Observe records a classified delegation request.
func (t *DelegationTracker) Observe(req core.DelegationRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if req.ToolUseID != "" {
		t.byToolUse[req.ToolUseID] = req.Worker
	}
	r := req
	t.last = &r
}

// Resolve maps a parent tool-use id to the worker name it spawned. Unknown
// ids resolve to the id itself: the event is still attributed to a worker,
// never mistaken for coordinator text.
func (t *DelegationTracker) Resolve(toolUseID string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if name, ok := t.byToolUse[toolUseID]; ok {
		return name
	}
	return toolUseID
}

// Last returns the most recently observed delegation, if any.
func (t *DelegationTracker) Last() (core.DelegationRequest, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return core.DelegationRequest{}, false
	}
	return *t.last, true
}
