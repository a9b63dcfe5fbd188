// Package core provides the foundational domain types used across
// CampaignMesh. It defines the core abstractions for:
//
//   - AgentEvent (the classified, tagged form of one raw engine event)
//   - Messages and CallerContext (the inbound conversational surface)
//   - WorkerDefinition (the opaque configuration of a delegable worker)
//   - Fragment (one caller-visible unit of emitted text)
//
// The package intentionally keeps implementation concerns (engine adapters,
// event classification, session storage, stage gating) out of scope so that
// higher level packages can depend on a small, stable set of contracts.
package core
