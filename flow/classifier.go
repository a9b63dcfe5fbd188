package flow

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/campaignmesh/campaignmesh/core"
	"github.com/campaignmesh/campaignmesh/engine"
	"github.com/campaignmesh/campaignmesh/logging"
)

// internalTypes are wire event types that replay engine bookkeeping (tool
// result echoes, role-labeled history replays, terminal results). They carry
// text-shaped payloads but must never surface to the caller.
var internalTypes = map[string]bool{
	"user":        true,
	"tool":        true,
	"tool_result": true,
	"result":      true,
}

// ClassifierOptions configures a Classifier.
type ClassifierOptions struct {
	// DelegateTool is the tool name whose invocations count as delegations.
	DelegateTool string
	// Logger receives structured diagnostics; never part of the emission contract.
	Logger logging.Logger
}

// Classifier decodes one raw engine event into its typed classifications.
// It is the only place raw wire shapes are inspected; everything downstream
// handles the closed core.AgentEvent set exhaustively.
type Classifier struct {
	tracker      *DelegationTracker
	delegateTool string
	logger       logging.Logger
}

// NewClassifier creates a classifier bound to a per-turn tracker.
func NewClassifier(tracker *DelegationTracker, optFns ...func(o *ClassifierOptions)) *Classifier {
	opts := ClassifierOptions{
		DelegateTool: engine.DelegateToolName,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{
		tracker:      tracker,
		delegateTool: opts.DelegateTool,
		logger:       opts.Logger,
	}
}

// Classify decodes raw into zero or more typed events, in rule order:
// init first, then delegation requests (block order), then at most one text
// chunk. Events matching no known shape yield a single Opaque. Malformed
// payloads are dropped silently; classification never fails.
func (c *Classifier) Classify(raw engine.RawEvent) []core.AgentEvent {
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		c.logger.Debug("classifier dropped non-object event")
		return []core.AgentEvent{core.Opaque{}}
	}

	eventType := root.Get("type").String()

	// Session initialization is never forwarded to presentation.
	if eventType == "system" && root.Get("subtype").String() == "init" {
		return []core.AgentEvent{core.Init{SessionToken: root.Get("session_id").String()}}
	}

	if eventType == "system" || internalTypes[eventType] {
		return []core.AgentEvent{core.Opaque{}}
	}

	// A non-empty parent link means the event was produced while executing
	// inside the worker spawned by that delegation.
	origin := ""
	if pid := root.Get("parent_tool_use_id").String(); pid != "" {
		origin = c.tracker.Resolve(pid)
	}

	var out []core.AgentEvent

	for _, req := range c.extractDelegations(root) {
		c.tracker.Observe(req)
		c.logger.Debug("classifier observed delegation worker=%s tool_use_id=%s", req.Worker, req.ToolUseID)
		out = append(out, req)
	}

	if text, ok := extractText(root); ok {
		out = append(out, core.TextChunk{Text: text, Origin: origin})
	}

	if len(out) == 0 {
		return []core.AgentEvent{core.Opaque{}}
	}
	return out
}

// extractDelegations scans content blocks for invocations of the delegation
// tool, preserving block order.
func (c *Classifier) extractDelegations(root gjson.Result) []core.DelegationRequest {
	blocks := contentBlocks(root)
	if !blocks.IsArray() {
		return nil
	}

	var reqs []core.DelegationRequest
	blocks.ForEach(func(_, b gjson.Result) bool {
		if b.Get("type").String() != "tool_use" || b.Get("name").String() != c.delegateTool {
			return true
		}
		reqs = append(reqs, core.DelegationRequest{
			Worker:      b.Get("input.subagent_type").String(),
			Description: b.Get("input.description").String(),
			Prompt:      b.Get("input.prompt").String(),
			ToolUseID:   b.Get("id").String(),
		})
		return true
	})
	return reqs
}

// contentBlocks returns the block list of an event, whichever nesting the
// engine used.
func contentBlocks(root gjson.Result) gjson.Result {
	if blocks := root.Get("message.content"); blocks.IsArray() {
		return blocks
	}
	return root.Get("content")
}

// extractText pulls plain text from whichever shape is present, first match
// wins: direct text field, content as a string, then content as a block list
// where each block either exposes a text field or is an associative block
// with a text key. Absence of any textual payload reports false.
func extractText(root gjson.Result) (string, bool) {
	if t := root.Get("text"); t.Type == gjson.String {
		return t.String(), true
	}

	if content := root.Get("content"); content.Type == gjson.String {
		return content.String(), true
	}

	blocks := contentBlocks(root)
	if !blocks.IsArray() {
		return "", false
	}

	var sb strings.Builder
	found := false
	blocks.ForEach(func(_, b gjson.Result) bool {
		if b.Get("type").String() == "tool_use" {
			return true
		}
		if t := b.Get("text"); t.Type == gjson.String {
			sb.WriteString(t.String())
			found = true
		}
		return true
	})
	if !found {
		return "", false
	}
	return sb.String(), true
}
