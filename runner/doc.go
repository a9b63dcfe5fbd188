// Package runner drives one assistant turn end to end: it resolves the
// conversation key, looks up the resumption token, invokes the generation
// engine with the stage-gated worker definitions, classifies the raw event
// stream and emits the ordered caller-visible fragment sequence. It is a
// pure stream transformer: no retries, no timeouts, no masking of engine
// failures.
package runner
