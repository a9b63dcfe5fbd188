package testutil

import (
	"github.com/tidwall/sjson"

	"github.com/campaignmesh/campaignmesh/engine"
)

// RawEventBuilder constructs arbitrary wire events, including the odd shapes
// the classifier must tolerate. Example:
//
//	raw := NewRawEvent().Type("assistant").DirectText("hi").Build()
//
// Chain only the fields you need; nothing is added implicitly.
type RawEventBuilder struct {
	raw []byte
}

// NewRawEvent creates a builder for an empty JSON object event.
func NewRawEvent() *RawEventBuilder {
	return &RawEventBuilder{raw: []byte(`{}`)}
}

func (b *RawEventBuilder) set(path string, value any) *RawEventBuilder {
	b.raw, _ = sjson.SetBytes(b.raw, path, value)
	return b
}

// Type sets the wire event type (chainable).
func (b *RawEventBuilder) Type(t string) *RawEventBuilder { return b.set("type", t) }

// Subtype sets the wire event subtype (chainable).
func (b *RawEventBuilder) Subtype(s string) *RawEventBuilder { return b.set("subtype", s) }

// SessionID sets the session token field of an init event (chainable).
func (b *RawEventBuilder) SessionID(id string) *RawEventBuilder { return b.set("session_id", id) }

// ParentToolUse sets the parent link field (chainable).
func (b *RawEventBuilder) ParentToolUse(id string) *RawEventBuilder {
	return b.set("parent_tool_use_id", id)
}

// DirectText sets the top-level text field (chainable).
func (b *RawEventBuilder) DirectText(text string) *RawEventBuilder { return b.set("text", text) }

// ContentString sets content to a plain string (chainable).
func (b *RawEventBuilder) ContentString(text string) *RawEventBuilder {
	return b.set("content", text)
}

// ContentBlocks sets the top-level content block list (chainable).
func (b *RawEventBuilder) ContentBlocks(blocks ...engine.Block) *RawEventBuilder {
	return b.set("content", blocks)
}

// MessageBlocks sets the nested message.content block list (chainable).
func (b *RawEventBuilder) MessageBlocks(blocks ...engine.Block) *RawEventBuilder {
	return b.set("message.content", blocks)
}

// Field sets an arbitrary path for shapes no dedicated method covers (chainable).
func (b *RawEventBuilder) Field(path string, value any) *RawEventBuilder {
	return b.set(path, value)
}

// Build returns the composed raw event.
func (b *RawEventBuilder) Build() engine.RawEvent {
	out := make([]byte, len(b.raw))
	copy(out, b.raw)
	return out
}
