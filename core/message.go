package core

// Message is one inbound conversational message supplied by the caller.
type Message struct {
	Role     string            `json:"role"`               // "user" or "assistant"
	Content  string            `json:"content"`            // plain UTF-8 text
	Metadata map[string]string `json:"metadata,omitempty"` // caller-supplied hints (e.g. conversation_id)
}

// CallerContext carries everything the host supplies for one turn: an
// optional authenticated identity plus the ordered message history
// (oldest first, the latest inbound message last).
type CallerContext struct {
	UserID   string    // authenticated user id, empty for anonymous callers
	Messages []Message // full conversation history for this session
}

// LatestMessage returns the most recent inbound message, or a zero Message
// when the history is empty.
func (cc CallerContext) LatestMessage() Message {
	if len(cc.Messages) == 0 {
		return Message{}
	}
	return cc.Messages[len(cc.Messages)-1]
}

// NewUserMessage is a convenience constructor for a user-authored message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}
