// Package workflow makes the campaign workflow stage an explicit, externally
// observable state machine: Brief, Research, Direction, Content, each with a
// pending phase gated by an explicit caller confirmation before the next
// stage's worker becomes invocable. Transitions are forward-only; a stage may
// be retried in place but never skipped. Confirmation is a typed trigger
// driven by a subsequent inbound caller message, never inferred from
// generated prose.
package workflow
