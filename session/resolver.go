package session

import "github.com/campaignmesh/campaignmesh/core"

// SharedKey is the fallback conversation key for callers with neither an
// authenticated identity nor a client-supplied conversation id. All such
// callers share one session; a known weak case, not remedied here.
const SharedKey = "shared"

// MetadataConversationID is the message metadata field carrying a
// caller-supplied conversation id.
const MetadataConversationID = "conversation_id"

// ResolveKey derives the stable conversation identity for a turn. Priority:
// authenticated user id, then a conversation_id on the latest inbound
// message, then the shared fallback. Pure and deterministic; it always
// succeeds.
func ResolveKey(cc core.CallerContext) string {
	if cc.UserID != "" {
		return "user:" + cc.UserID
	}
	if id := cc.LatestMessage().Metadata[MetadataConversationID]; id != "" {
		return "conv:" + id
	}
	return SharedKey
}
