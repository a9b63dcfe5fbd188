package testutil

import "github.com/campaignmesh/campaignmesh/core"

// ContextBuilder helps construct caller contexts with fluent chaining.
// Example:
//
//	cc := NewCallerContext().User("u1").UserSays("hello").Build()
type ContextBuilder struct {
	userID   string
	messages []core.Message
}

// NewCallerContext creates a builder for an anonymous caller with no history.
func NewCallerContext() *ContextBuilder { return &ContextBuilder{} }

// User sets the authenticated user id (chainable).
func (b *ContextBuilder) User(id string) *ContextBuilder {
	b.userID = id
	return b
}

// UserSays appends a user message (chainable).
func (b *ContextBuilder) UserSays(content string) *ContextBuilder {
	b.messages = append(b.messages, core.Message{Role: "user", Content: content})
	return b
}

// AssistantSays appends an assistant message (chainable).
func (b *ContextBuilder) AssistantSays(content string) *ContextBuilder {
	b.messages = append(b.messages, core.Message{Role: "assistant", Content: content})
	return b
}

// WithConversationID attaches a conversation_id to the latest message (chainable).
func (b *ContextBuilder) WithConversationID(id string) *ContextBuilder {
	if len(b.messages) == 0 {
		return b
	}
	last := &b.messages[len(b.messages)-1]
	if last.Metadata == nil {
		last.Metadata = map[string]string{}
	}
	last.Metadata["conversation_id"] = id
	return b
}

// Build returns the composed caller context.
func (b *ContextBuilder) Build() core.CallerContext {
	return core.CallerContext{UserID: b.userID, Messages: b.messages}
}
