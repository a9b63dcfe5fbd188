package workflow

import (
	"fmt"
	"sync"
)

// DefaultWorkerOrder is the stage-ordered worker list of the default
// campaign workflow.
var DefaultWorkerOrder = []string{
	"brief-analyzer",
	"market-researcher",
	"creative-director",
	"content-writer",
}

// TransitionError reports a rejected stage transition. The gate never
// mutates state when returning one.
type TransitionError struct {
	Stage   Stage
	Worker  string
	Trigger string
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	if e.Worker != "" {
		return fmt.Sprintf("workflow: %s not allowed for worker %q in stage %s", e.Trigger, e.Worker, e.Stage)
	}
	return fmt.Sprintf("workflow: %s not allowed in stage %s", e.Trigger, e.Stage)
}

// Gate is the explicit workflow stage state machine for one conversation.
// It enforces the ordering contract: stage N+1's worker is never invocable
// before stage N's worker has produced output and the caller has confirmed.
// All methods are safe for concurrent use.
type Gate struct {
	mu         sync.Mutex
	stage      Stage
	outputSeen bool
	order      []string
}

// NewGate creates a gate at StageBriefPending. A nil or empty order uses
// DefaultWorkerOrder.
func NewGate(order []string) *Gate {
	if len(order) == 0 {
		order = DefaultWorkerOrder
	}
	return &Gate{stage: StageBriefPending, order: order}
}

// Current returns the gate's stage.
func (g *Gate) Current() Stage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stage
}

// OutputSeen reports whether the current pending stage's worker has already
// produced output, i.e. whether the stage is confirmable.
func (g *Gate) OutputSeen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outputSeen
}

// AllowedWorkers returns the workers invocable right now: the current
// pending stage's worker (initial run or in-place retry), or the next
// stage's worker once the current stage is confirmed. Nil when the workflow
// is done.
func (g *Gate) AllowedWorkers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.allowedIndexLocked()
	if idx < 0 {
		return nil
	}
	return []string{g.order[idx]}
}

func (g *Gate) allowedIndexLocked() int {
	if g.stage == StageDone {
		return -1
	}
	idx := g.stage.stageIndex()
	if !g.stage.Pending() {
		idx++
	}
	if idx >= len(g.order) {
		return -1
	}
	return idx
}

// ObserveDelegation records a delegation reported by the engine. Delegations
// to the allowed worker advance a confirmed stage to the next pending stage,
// or restart the current pending stage in place. Out-of-order delegations
// return a *TransitionError. Worker names outside the configured order pass
// through untouched: this layer has no validation authority over names the
// engine reports.
func (g *Gate) ObserveDelegation(worker string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.indexOfLocked(worker)
	if idx < 0 {
		return nil
	}
	allowed := g.allowedIndexLocked()
	if allowed < 0 || idx != allowed {
		return &TransitionError{Stage: g.stage, Worker: worker, Trigger: "delegation"}
	}

	if g.stage.Pending() {
		// Same stage, regenerate: retried in place, never skipped.
		g.outputSeen = false
		return nil
	}
	g.stage = Stage(idx * 2)
	g.outputSeen = false
	return nil
}

// ObserveWorkerOutput records that the named worker produced output. Output
// from the current pending stage's worker makes the stage confirmable; the
// content stage is terminal and completes the workflow without confirmation.
func (g *Gate) ObserveWorkerOutput(worker string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.stage.Pending() || g.indexOfLocked(worker) != g.stage.stageIndex() {
		return
	}
	g.outputSeen = true
	if g.stage == StageContentPending {
		g.stage = StageDone
	}
}

// Confirm applies the external confirmation trigger: a subsequent inbound
// caller message arriving while a pending stage has produced output. It
// advances the pending stage to its confirmed phase. Confirming without
// pending output, or outside a pending stage, returns a *TransitionError.
func (g *Gate) Confirm() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.stage.Pending() || !g.outputSeen {
		return &TransitionError{Stage: g.stage, Trigger: "confirmation"}
	}
	g.stage++
	g.outputSeen = false
	return nil
}

func (g *Gate) indexOfLocked(worker string) int {
	for i, w := range g.order {
		if w == worker {
			return i
		}
	}
	return -1
}
