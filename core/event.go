package core

// AgentEvent is the classified form of a single raw generation-engine event.
// Concrete event types implement the unexported isAgentEvent marker enabling
// a closed set, exhaustively handled with a type switch.
//
// Exactly one classification applies per value; a raw event that carries both
// a delegation block and text blocks classifies into multiple AgentEvent
// values, in the order the delegation/text rules apply.
type AgentEvent interface{ isAgentEvent() }

// Init signals session initialization. SessionToken is the opaque resumption
// handle minted (or echoed) by the engine for this turn. It may be empty when
// the engine omitted the token; consumers must then skip the registry update
// and continue with no-resume semantics.
type Init struct {
	SessionToken string
}

func (Init) isAgentEvent() {}

// DelegationRequest records the coordinator invoking the delegation tool to
// hand a bounded sub-task to a named worker. This layer never executes the
// delegation itself; it only observes and surfaces the request.
type DelegationRequest struct {
	Worker      string // target worker name as reported by the engine
	Description string // short task description
	Prompt      string // full task prompt, empty when the engine omitted it
	ToolUseID   string // engine-assigned invocation id, links worker output back
}

func (DelegationRequest) isAgentEvent() {}

// TextChunk is one unit of assistant prose. Origin names the worker that
// authored the text; an empty Origin means the top-level coordinator.
type TextChunk struct {
	Text   string
	Origin string
}

func (TextChunk) isAgentEvent() {}

// FromCoordinator reports whether the chunk was authored by the top-level
// coordinator rather than a delegated worker.
func (t TextChunk) FromCoordinator() bool { return t.Origin == "" }

// Opaque marks an event matching none of the known shapes (internal replay
// messages, raw tool-result echoes, engine bookkeeping). Opaque events are
// dropped and must never reach the caller.
type Opaque struct{}

func (Opaque) isAgentEvent() {}
