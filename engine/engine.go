package engine

import (
	"context"

	"github.com/campaignmesh/campaignmesh/core"
)

// RawEvent is one undecoded event from the generation-engine wire. Events are
// heterogeneous JSON objects; decoding happens exclusively in package flow.
type RawEvent []byte

// Request captures the normalized engine input assembled by the runner for
// one turn. Worker definitions and prompt text pass through unchanged; this
// layer never interprets them.
type Request struct {
	SystemPrompt string                           `json:"system_prompt"`
	Workers      map[string]core.WorkerDefinition `json:"workers,omitempty"`
	ResumeToken  string                           `json:"resume_token,omitempty"`
	Messages     []core.Message                   `json:"messages"`
}

// Engine is the minimal interface required to drive one turn of generation.
//
// Contract:
//   - Events are delivered in order; the channel closes when the turn ends.
//   - Exactly one init-type event per turn carries a fresh or echoed
//     session token.
//   - A mid-stream failure is sent on the error channel and the event
//     channel is closed; at most one error per turn.
//   - Liveness (timeouts, retries, backoff) is owned by the engine, not by
//     this layer.
type Engine interface {
	Stream(ctx context.Context, req Request) (<-chan RawEvent, <-chan error)
}

// DelegateToolName is the tool the coordinator invokes to hand a sub-task to
// a worker. This layer depends only on the shape of its invocation record;
// the engine executes the tool.
const DelegateToolName = "Task"

// DelegateToolSchema returns the JSON schema for the delegation tool's
// arguments, exposed to engines that require explicit tool definitions.
func DelegateToolSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subagent_type": map[string]any{"type": "string", "description": "Name of the worker to delegate to"},
			"description":   map[string]any{"type": "string", "description": "Short description of the delegated task"},
			"prompt":        map[string]any{"type": "string", "description": "Full task prompt for the worker"},
		},
		"required": []string{"subagent_type", "prompt"},
	}
}
