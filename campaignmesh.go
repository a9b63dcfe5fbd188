// Package campaignmesh provides a high-level façade over the turn runner and
// its service abstractions (session registry, stage gates & logging) for
// coordinating a multi-stage, multi-agent campaign content workflow. Most
// applications interact with this package by:
//  1. Creating a Mesh via New() with a concrete engine adapter
//  2. Streaming turns (Turn) or collecting them synchronously (TurnText)
//
// The façade delegates orchestration to runner.Runner while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a shared token store
// (session/redis) and a structured logger.
package campaignmesh

import (
	"context"
	"strings"

	"github.com/campaignmesh/campaignmesh/config"
	"github.com/campaignmesh/campaignmesh/core"
	"github.com/campaignmesh/campaignmesh/engine"
	"github.com/campaignmesh/campaignmesh/logging"
	"github.com/campaignmesh/campaignmesh/runner"
	"github.com/campaignmesh/campaignmesh/session"
	"github.com/campaignmesh/campaignmesh/workflow"
)

// Options configures the Mesh instance.
type Options struct {
	// Config supplies the coordinator prompt and worker definitions
	// (defaults to the built-in campaign workflow if nil).
	Config *config.Config

	// Tokens stores resumption tokens (defaults to the in-memory registry).
	Tokens session.TokenStore

	// Gates tracks workflow stages per conversation (defaults to a fresh
	// in-memory store matching the config's worker order).
	Gates *workflow.GateStore

	// PromptVars are substituted into worker prompt templates at startup.
	PromptVars map[string]any

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the turn runner and services.
type Mesh struct {
	runner *runner.Runner
}

// New creates a Mesh around the given engine with optional overrides. Any
// unset service falls back to an in-memory default.
func New(eng engine.Engine, optFns ...func(o *Options)) (*Mesh, error) {
	opts := Options{
		Config: config.Default(),
		Tokens: session.NewInMemoryRegistry(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r, err := runner.New(eng, func(o *runner.Options) {
		o.Config = opts.Config
		o.Tokens = opts.Tokens
		o.Gates = opts.Gates
		o.PromptVars = opts.PromptVars
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &Mesh{runner: r}, nil
}

// Turn streams one assistant turn for the caller context. See runner.Turn.
func (m *Mesh) Turn(ctx context.Context, cc core.CallerContext) (<-chan core.Fragment, <-chan error) {
	return m.runner.Turn(ctx, cc)
}

// TurnText runs one turn to completion and returns the rendered output as a
// single string, internal fragments enclosed in the default markers.
func (m *Mesh) TurnText(ctx context.Context, cc core.CallerContext) (string, error) {
	frags, errs := m.runner.Turn(ctx, cc)

	var sb strings.Builder
	for f := range frags {
		sb.WriteString(f.Render("", ""))
		sb.WriteString("\n")
	}
	if err := <-errs; err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}
