// Package engine defines the narrow contract CampaignMesh requires of an
// external generation engine: given a system prompt, worker definitions, an
// optional resumption token and the conversation history, the engine streams
// an ordered sequence of raw JSON events terminating when the turn completes.
//
// The raw events stay undecoded at this boundary; package flow owns the
// decoder that turns them into typed core.AgentEvent values. Concrete
// adapters live in sub-packages (anthropic, openai); a scripted MockEngine is
// provided here for tests and examples.
package engine
