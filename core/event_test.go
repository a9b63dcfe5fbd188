package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextChunk_FromCoordinator(t *testing.T) {
	assert.True(t, TextChunk{Text: "hi"}.FromCoordinator())
	assert.False(t, TextChunk{Text: "hi", Origin: "brief-analyzer"}.FromCoordinator())
}

func TestCallerContext_LatestMessage(t *testing.T) {
	assert.Equal(t, Message{}, CallerContext{}.LatestMessage())

	cc := CallerContext{Messages: []Message{
		NewUserMessage("first"),
		{Role: "assistant", Content: "reply"},
		NewUserMessage("second"),
	}}
	assert.Equal(t, "second", cc.LatestMessage().Content)
	assert.Equal(t, "user", cc.LatestMessage().Role)
}
