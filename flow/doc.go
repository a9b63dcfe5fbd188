// Package flow implements the per-turn event pipeline: the Classifier
// decodes heterogeneous raw engine events into typed core.AgentEvent values,
// the DelegationTracker resolves parent-link ids back to worker names, and
// the Presenter turns the classified sequence into the ordered caller-visible
// fragment stream (buffering coordinator think-aloud text until a delegation
// decision is known).
package flow
