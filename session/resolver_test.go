package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campaignmesh/campaignmesh/core"
)

func TestResolveKey_AuthenticatedUser(t *testing.T) {
	cc := core.CallerContext{
		UserID:   "alice",
		Messages: []core.Message{{Role: "user", Content: "hi"}},
	}
	assert.Equal(t, "user:alice", ResolveKey(cc))
}

func TestResolveKey_ConversationID(t *testing.T) {
	cc := core.CallerContext{
		Messages: []core.Message{{
			Role:     "user",
			Content:  "hi",
			Metadata: map[string]string{MetadataConversationID: "c42"},
		}},
	}
	assert.Equal(t, "conv:c42", ResolveKey(cc))
}

func TestResolveKey_SharedFallback(t *testing.T) {
	assert.Equal(t, SharedKey, ResolveKey(core.CallerContext{}))
	assert.Equal(t, SharedKey, ResolveKey(core.CallerContext{
		Messages: []core.Message{{Role: "user", Content: "hi"}},
	}))
}

func TestResolveKey_UserIdentityWinsOverConversationID(t *testing.T) {
	cc := core.CallerContext{
		UserID: "alice",
		Messages: []core.Message{{
			Role:     "user",
			Content:  "hi",
			Metadata: map[string]string{MetadataConversationID: "c42"},
		}},
	}
	assert.Equal(t, "user:alice", ResolveKey(cc))
}

func TestResolveKey_Deterministic(t *testing.T) {
	cc := core.CallerContext{
		Messages: []core.Message{{
			Role:     "user",
			Content:  "hi",
			Metadata: map[string]string{MetadataConversationID: "c1"},
		}},
	}
	first := ResolveKey(cc)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ResolveKey(cc))
	}
}

func TestResolveKey_ConversationIDOnEarlierMessageIgnored(t *testing.T) {
	// Only the latest inbound message's metadata counts.
	cc := core.CallerContext{
		Messages: []core.Message{
			{Role: "user", Content: "hi", Metadata: map[string]string{MetadataConversationID: "c1"}},
			{Role: "user", Content: "again"},
		},
	}
	assert.Equal(t, SharedKey, ResolveKey(cc))
}
