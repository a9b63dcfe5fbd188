package engine

import (
	"encoding/json"

	"github.com/tidwall/sjson"
)

// Block is one content block within an assistant wire event. Blocks are
// heterogeneous: text blocks carry Text, tool-use blocks carry ID, Name and
// Input.
type Block struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

// TextBlock builds a plain text content block.
func TextBlock(text string) Block {
	return Block{Type: "text", Text: text}
}

// DelegateBlock builds a tool-use block invoking the delegation tool.
func DelegateBlock(id, worker, description, prompt string) Block {
	input := map[string]any{"subagent_type": worker}
	if description != "" {
		input["description"] = description
	}
	if prompt != "" {
		input["prompt"] = prompt
	}
	return Block{Type: "tool_use", ID: id, Name: DelegateToolName, Input: input}
}

// NewInitEvent composes the init wire event announcing the session token for
// this turn. An empty token yields an init event without a session id.
func NewInitEvent(token string) RawEvent {
	raw := []byte(`{"type":"system","subtype":"init"}`)
	if token != "" {
		raw, _ = sjson.SetBytes(raw, "session_id", token)
	}
	return raw
}

// NewAssistantEvent composes an assistant wire event from content blocks.
// A non-empty parentToolUseID marks the event as produced inside the worker
// spawned by that delegation.
func NewAssistantEvent(parentToolUseID string, blocks ...Block) RawEvent {
	payload, _ := json.Marshal(blocks)
	raw, _ := sjson.SetRawBytes([]byte(`{"type":"assistant"}`), "message.content", payload)
	if parentToolUseID != "" {
		raw, _ = sjson.SetBytes(raw, "parent_tool_use_id", parentToolUseID)
	}
	return raw
}

// NewResultEvent composes the terminal bookkeeping event engines emit when a
// turn completes. Classified as opaque and never surfaced to the caller.
func NewResultEvent(status string) RawEvent {
	raw, _ := sjson.SetBytes([]byte(`{"type":"result"}`), "subtype", status)
	return raw
}
