// Package anthropic implements the engine.Engine contract on the Anthropic
// Messages API. The adapter owns the delegation loop the contract assigns to
// the engine: it executes delegation tool invocations by running the named
// worker as a nested, isolated model call and echoing its output on the wire
// with the spawning tool-use id as parent link.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/google/uuid"

	"github.com/campaignmesh/campaignmesh/core"
	"github.com/campaignmesh/campaignmesh/engine"
	"github.com/campaignmesh/campaignmesh/logging"
)

// Options configures the Anthropic engine adapter.
type Options struct {
	// Model is the coordinator model, also the fallback for workers whose
	// definition names no model of its own.
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// MaxSteps bounds the coordinator's delegation loop per turn.
	MaxSteps int
	// Logger records model call latency and delegation activity when set.
	Logger *logging.StructuredLogger
}

// Engine adapts the Anthropic Messages API to the engine.Engine contract.
type Engine struct {
	client *anthropic.Client
	opts   Options
}

var _ engine.Engine = (*Engine)(nil)

// New creates an Anthropic engine using the official client.
func New(optFns ...func(o *Options)) *Engine {
	opts := applyOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Engine{client: &client, opts: opts}
}

// NewFromClient creates an Anthropic engine from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Engine {
	return &Engine{client: client, opts: applyOptions(optFns)}
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
		MaxSteps:    8,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Stream implements engine.Engine. It emits exactly one init event carrying
// the echoed or freshly minted session token, then runs the coordinator
// until it stops requesting delegations or MaxSteps is reached.
func (e *Engine) Stream(ctx context.Context, req engine.Request) (<-chan engine.RawEvent, <-chan error) {
	events := make(chan engine.RawEvent, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errCh)

		token := req.ResumeToken
		if token == "" {
			token = uuid.NewString()
		}
		if !send(ctx, events, engine.NewInitEvent(token)) {
			errCh <- ctx.Err()
			return
		}

		if err := e.runCoordinator(ctx, req, events); err != nil {
			errCh <- err
			return
		}

		send(ctx, events, engine.NewResultEvent("success"))
	}()

	return events, errCh
}

func (e *Engine) runCoordinator(ctx context.Context, req engine.Request, events chan<- engine.RawEvent) error {
	params := anthropic.MessageNewParams{
		Model:       e.opts.Model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   e.opts.MaxTokens,
		Temperature: anthropic.Float(e.opts.Temperature),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt + workerCatalog(req.Workers)}}
	}
	if len(req.Workers) > 0 {
		params.Tools = []anthropic.ToolUnionParam{delegateTool()}
	}

	for step := 0; step < e.opts.MaxSteps; step++ {
		start := time.Now()
		resp, err := e.client.Messages.New(ctx, params)
		if e.opts.Logger != nil {
			e.opts.Logger.LogEngineCall(string(e.opts.Model), time.Since(start), err)
		}
		if err != nil {
			return fmt.Errorf("anthropic api error: %w", err)
		}

		blocks, delegations := wireBlocks(resp.Content)
		if len(blocks) > 0 {
			if !send(ctx, events, engine.NewAssistantEvent("", blocks...)) {
				return ctx.Err()
			}
		}

		if len(delegations) == 0 {
			return nil
		}

		// Execute each requested delegation and feed the results back so the
		// coordinator can continue.
		params.Messages = append(params.Messages, resp.ToParam())
		var results []anthropic.ContentBlockParamUnion
		for _, d := range delegations {
			if e.opts.Logger != nil {
				e.opts.Logger.LogDelegation(d.Worker, d.ToolUseID)
			}
			output, derr := e.runWorker(ctx, req, d, events)
			if derr != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				results = append(results, anthropic.NewToolResultBlock(d.ToolUseID, derr.Error(), true))
				continue
			}
			results = append(results, anthropic.NewToolResultBlock(d.ToolUseID, output, false))
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(results...))
	}

	return fmt.Errorf("delegation loop exceeded %d steps", e.opts.MaxSteps)
}

// runWorker executes one delegation as an isolated model call using the
// worker's own prompt and model, echoing its text on the wire with the
// spawning tool-use id as parent link.
func (e *Engine) runWorker(ctx context.Context, req engine.Request, d core.DelegationRequest, events chan<- engine.RawEvent) (string, error) {
	def, ok := req.Workers[d.Worker]
	if !ok {
		return "", fmt.Errorf("unknown worker %q", d.Worker)
	}

	model := e.opts.Model
	if def.Model != "" {
		model = anthropic.Model(def.Model)
	}

	task := d.Prompt
	if task == "" {
		task = d.Description
	}

	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       model,
		System:      []anthropic.TextBlockParam{{Text: def.Prompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(task))},
		MaxTokens:   e.opts.MaxTokens,
		Temperature: anthropic.Float(e.opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("worker %q failed: %w", d.Worker, err)
	}

	var output string
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		text := block.AsText().Text
		if text == "" {
			continue
		}
		output += text
		if !send(ctx, events, engine.NewAssistantEvent(d.ToolUseID, engine.TextBlock(text))) {
			return "", ctx.Err()
		}
	}
	return output, nil
}

// wireBlocks converts response content into wire blocks, collecting the
// delegation requests among them.
func wireBlocks(content []anthropic.ContentBlockUnion) ([]engine.Block, []core.DelegationRequest) {
	var blocks []engine.Block
	var delegations []core.DelegationRequest

	for _, block := range content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if textBlock.Text != "" {
				blocks = append(blocks, engine.TextBlock(textBlock.Text))
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			if toolBlock.Name != engine.DelegateToolName {
				continue
			}
			var input map[string]any
			if toolBlock.Input != nil {
				if raw, err := json.Marshal(toolBlock.Input); err == nil {
					_ = json.Unmarshal(raw, &input)
				}
			}
			d := core.DelegationRequest{
				Worker:      stringField(input, "subagent_type"),
				Description: stringField(input, "description"),
				Prompt:      stringField(input, "prompt"),
				ToolUseID:   toolBlock.ID,
			}
			blocks = append(blocks, engine.DelegateBlock(d.ToolUseID, d.Worker, d.Description, d.Prompt))
			delegations = append(delegations, d)
		}
	}
	return blocks, delegations
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// buildMessages converts the caller history into Anthropic message params.
// Unknown roles are treated as user.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		if m.Role == "assistant" {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}
	return out
}

// workerCatalog appends the available worker roster to the system prompt so
// the coordinator knows what it may delegate to.
func workerCatalog(workers map[string]core.WorkerDefinition) string {
	if len(workers) == 0 {
		return ""
	}
	names := make([]string, 0, len(workers))
	for name := range workers {
		names = append(names, name)
	}
	sort.Strings(names)

	catalog := "\n\nAvailable workers:\n"
	for _, name := range names {
		catalog += fmt.Sprintf("- %s: %s\n", name, workers[name].Description)
	}
	return catalog
}

func delegateTool() anthropic.ToolUnionParam {
	schema := engine.DelegateToolSchema()
	inputSchema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
	if properties, exists := schema["properties"]; exists {
		inputSchema.Properties = properties
	}
	if required, ok := schema["required"].([]string); ok {
		inputSchema.Required = required
	}
	return anthropic.ToolUnionParamOfTool(inputSchema, engine.DelegateToolName)
}

func send(ctx context.Context, events chan<- engine.RawEvent, ev engine.RawEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}
