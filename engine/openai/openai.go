// Package openai implements the engine.Engine contract on the OpenAI Chat
// Completions API. Like the anthropic adapter it owns the delegation loop:
// a delegation tool call is executed as a nested completion using the
// worker's own prompt and model, and the worker's output is echoed on the
// wire with the spawning tool-call id as parent link.
package openai

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/tidwall/gjson"

	"github.com/campaignmesh/campaignmesh/core"
	"github.com/campaignmesh/campaignmesh/engine"
	"github.com/campaignmesh/campaignmesh/logging"
)

// Options configure the OpenAI engine adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// MaxSteps bounds the coordinator's delegation loop per turn.
	MaxSteps int
	// Logger records model call latency and delegation activity when set.
	Logger *logging.StructuredLogger
}

// Engine adapts the OpenAI Chat Completions API to the engine.Engine contract.
type Engine struct {
	client *openai.Client
	opts   Options
}

var _ engine.Engine = (*Engine)(nil)

// New creates an OpenAI engine using the official client.
func New(optFns ...func(o *Options)) *Engine {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an OpenAI engine from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		MaxSteps:            8,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{client: client, opts: opts}
}

// Stream implements engine.Engine.
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
	messages := buildMessages(req)
	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               e.opts.Model,
		Temperature:         openai.Float(e.opts.Temperature),
		MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
	}
	if len(req.Workers) > 0 {
		params.Tools = []openai.ChatCompletionToolParam{delegateTool()}
	}

	for step := 0; step < e.opts.MaxSteps; step++ {
		start := time.Now()
		resp, err := e.client.Chat.Completions.New(ctx, params)
		if e.opts.Logger != nil {
			e.opts.Logger.LogEngineCall(e.opts.Model, time.Since(start), err)
		}
		if err != nil {
			return fmt.Errorf("openai api error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("openai returned no choices")
		}
		msg := resp.Choices[0].Message

		blocks, delegations := wireBlocks(msg)
		if len(blocks) > 0 {
			if !send(ctx, events, engine.NewAssistantEvent("", blocks...)) {
				return ctx.Err()
			}
		}

		if len(delegations) == 0 {
			return nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, d := range delegations {
			if e.opts.Logger != nil {
				e.opts.Logger.LogDelegation(d.Worker, d.ToolUseID)
			}
			output, derr := e.runWorker(ctx, req, d, events)
			if derr != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				output = derr.Error()
			}
			params.Messages = append(params.Messages, openai.ToolMessage(output, d.ToolUseID))
		}
	}

	return fmt.Errorf("delegation loop exceeded %d steps", e.opts.MaxSteps)
}

// runWorker executes one delegation as an isolated completion using the
// worker's own prompt and model.
func (e *Engine) runWorker(ctx context.Context, req engine.Request, d core.DelegationRequest, events chan<- engine.RawEvent) (string, error) {
	def, ok := req.Workers[d.Worker]
	if !ok {
		return "", fmt.Errorf("unknown worker %q", d.Worker)
	}

	model := e.opts.Model
	if def.Model != "" {
		model = def.Model
	}

	task := d.Prompt
	if task == "" {
		task = d.Description
	}

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(def.Prompt),
			openai.UserMessage(task),
		},
		Model:               model,
		Temperature:         openai.Float(e.opts.Temperature),
		MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("worker %q failed: %w", d.Worker, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("worker %q returned no choices", d.Worker)
	}

	output := resp.Choices[0].Message.Content
	if output != "" {
		if !send(ctx, events, engine.NewAssistantEvent(d.ToolUseID, engine.TextBlock(output))) {
			return "", ctx.Err()
		}
	}
	return output, nil
}

// wireBlocks converts one completion message into wire blocks, collecting
// the delegation requests among its tool calls.
func wireBlocks(msg openai.ChatCompletionMessage) ([]engine.Block, []core.DelegationRequest) {
	var blocks []engine.Block
	var delegations []core.DelegationRequest

	if msg.Content != "" {
		blocks = append(blocks, engine.TextBlock(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name != engine.DelegateToolName {
			continue
		}
		args := gjson.Parse(tc.Function.Arguments)
		d := core.DelegationRequest{
			Worker:      args.Get("subagent_type").String(),
			Description: args.Get("description").String(),
			Prompt:      args.Get("prompt").String(),
			ToolUseID:   tc.ID,
		}
		blocks = append(blocks, engine.DelegateBlock(d.ToolUseID, d.Worker, d.Description, d.Prompt))
		delegations = append(delegations, d)
	}
	return blocks, delegations
}

// buildMessages converts the caller history into chat messages, prepending
// the system prompt and worker roster.
func buildMessages(req engine.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt+workerCatalog(req.Workers)))
	}
	for _, m := range req.Messages {
		if m.Content == "" {
			continue
		}
		if m.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}
	return messages
}

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

func delegateTool() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Type: "function",
		Function: openai.FunctionDefinitionParam{
			Name:        engine.DelegateToolName,
			Description: openai.String("Delegate a bounded sub-task to a named worker."),
			Parameters:  engine.DelegateToolSchema(),
		},
	}
}

func send(ctx context.Context, events chan<- engine.RawEvent, ev engine.RawEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}
