package runner

import (
	"context"
	"fmt"

	"github.com/campaignmesh/campaignmesh/config"
	"github.com/campaignmesh/campaignmesh/core"
	"github.com/campaignmesh/campaignmesh/engine"
	"github.com/campaignmesh/campaignmesh/flow"
	"github.com/campaignmesh/campaignmesh/internal/util"
	"github.com/campaignmesh/campaignmesh/logging"
	"github.com/campaignmesh/campaignmesh/session"
	"github.com/campaignmesh/campaignmesh/workflow"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Config supplies prompts, worker definitions and the delegate tool name.
	Config *config.Config
	// Tokens stores the per-conversation resumption token.
	Tokens session.TokenStore
	// Gates tracks the per-conversation workflow stage.
	Gates *workflow.GateStore
	// PromptVars are substituted into worker prompt templates once at startup.
	PromptVars map[string]any
	// FragmentBufferSize sets channel buffering for emitted fragments.
	FragmentBufferSize int
	// Logger receives structured diagnostics.
	Logger logging.Logger
}

// Runner coordinates turns: resolves conversation identity, gates worker
// invocability by workflow stage, streams classified engine events and emits
// ordered fragments. Public methods are safe for concurrent use; concurrent
// turns for the same conversation key race with last-write-wins token
// semantics.
type Runner struct {
	engine  engine.Engine
	cfg     *config.Config
	workers map[string]core.WorkerDefinition
	tokens  session.TokenStore
	gates   *workflow.GateStore
	bufSize int
	logger  logging.Logger
}

// New constructs a Runner with optional overrides.
func New(eng engine.Engine, optFns ...func(o *Options)) (*Runner, error) {
	opts := Options{
		Config:             config.Default(),
		Tokens:             session.NewInMemoryRegistry(),
		FragmentBufferSize: 64,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Tokens == nil {
		opts.Tokens = session.NewInMemoryRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Gates == nil {
		opts.Gates = workflow.NewGateStore(opts.Config.WorkerOrder)
	}

	workers, err := opts.Config.RenderedWorkers(opts.PromptVars)
	if err != nil {
		return nil, fmt.Errorf("render worker prompts: %w", err)
	}

	return &Runner{
		engine:  eng,
		cfg:     opts.Config,
		workers: workers,
		tokens:  opts.Tokens,
		gates:   opts.Gates,
		bufSize: opts.FragmentBufferSize,
		logger:  opts.Logger,
	}, nil
}

// Turn produces one assistant turn for the supplied caller context. The
// fragment channel is lazy, finite and non-restartable; it closes when the
// turn completes. An engine failure mid-stream is delivered on the error
// channel and terminates the turn; fragments already emitted stand.
func (r *Runner) Turn(ctx context.Context, cc core.CallerContext) (<-chan core.Fragment, <-chan error) {
	frags := make(chan core.Fragment, r.bufSize)
	errs := make(chan error, 1)

	key := session.ResolveKey(cc)
	turnID := util.NewID()
	gate := r.gates.GetOrCreate(key)

	// Confirmation trigger: a subsequent inbound caller message while the
	// pending stage has produced output. Typed transition, never inferred
	// from message content.
	if gate.Current().Pending() && gate.OutputSeen() && cc.LatestMessage().Role == "user" {
		if err := gate.Confirm(); err != nil {
			r.logger.Warn("stage confirmation rejected turn_id=%s: %v", turnID, err)
		} else {
			r.logger.Debug("stage confirmed turn_id=%s stage=%s", turnID, gate.Current())
		}
	}

	token, ok, err := r.tokens.Get(ctx, key)
	if err != nil {
		// Degrade to a fresh session rather than failing the turn.
		r.logger.Warn("token lookup failed key=%s turn_id=%s: %v", key, turnID, err)
		token, ok = "", false
	}
	r.logger.Debug("turn started key=%s turn_id=%s stage=%s resume=%t", key, turnID, gate.Current(), ok)

	req := engine.Request{
		SystemPrompt: r.cfg.CoordinatorPrompt,
		Workers:      r.allowedWorkers(gate),
		ResumeToken:  token,
		Messages:     cc.Messages,
	}

	events, engineErrs := r.engine.Stream(ctx, req)

	go func() {
		defer close(frags)
		defer close(errs)
		r.consume(ctx, key, turnID, gate, events, engineErrs, frags, errs)
	}()

	return frags, errs
}

// allowedWorkers restricts the configured worker definitions to those the
// stage gate permits for this turn.
func (r *Runner) allowedWorkers(gate *workflow.Gate) map[string]core.WorkerDefinition {
	allowed := gate.AllowedWorkers()
	if len(allowed) == 0 {
		return nil
	}
	defs := make(map[string]core.WorkerDefinition, len(allowed))
	for _, name := range allowed {
		if def, ok := r.workers[name]; ok {
			defs[name] = def
		}
	}
	return defs
}

// consume processes the raw event stream of one turn sequentially, one event
// at a time, in arrival order.
func (r *Runner) consume(
	ctx context.Context,
	key, turnID string,
	gate *workflow.Gate,
	events <-chan engine.RawEvent,
	engineErrs <-chan error,
	frags chan<- core.Fragment,
	errs chan<- error,
) {
	tracker := flow.NewDelegationTracker()
	classifier := flow.NewClassifier(tracker, func(o *flow.ClassifierOptions) {
		o.DelegateTool = r.cfg.DelegateTool
		o.Logger = r.logger
	})
	presenter := flow.NewPresenter()

	for raw := range events {
		for _, ev := range classifier.Classify(raw) {
			if !r.handleEvent(ctx, key, turnID, gate, presenter, ev, frags) {
				errs <- ctx.Err()
				return
			}
		}
	}

	// The engine closes the event channel on failure too; a pending error
	// fails the turn without flushing the remaining buffer.
	if err, ok := <-engineErrs; ok && err != nil {
		r.logger.Error("engine stream failed key=%s turn_id=%s: %v", key, turnID, err)
		errs <- fmt.Errorf("engine stream failed: %w", err)
		return
	}

	for _, f := range presenter.Finish() {
		if !emit(ctx, frags, f) {
			errs <- ctx.Err()
			return
		}
	}
	r.logger.Debug("turn finished key=%s turn_id=%s stage=%s", key, turnID, gate.Current())
}

// handleEvent applies one classified event's side effects and emits its
// fragments. Returns false when the context was cancelled mid-emission.
func (r *Runner) handleEvent(
	ctx context.Context,
	key, turnID string,
	gate *workflow.Gate,
	presenter *flow.Presenter,
	ev core.AgentEvent,
	frags chan<- core.Fragment,
) bool {
	switch e := ev.(type) {
	case core.Init:
		if e.SessionToken == "" {
			// No extractable token: skip the registry update and continue
			// with no-resume semantics next turn.
			r.logger.Warn("init event without session token key=%s turn_id=%s", key, turnID)
			return true
		}
		if err := r.tokens.Set(ctx, key, e.SessionToken); err != nil {
			r.logger.Warn("token update failed key=%s turn_id=%s: %v", key, turnID, err)
		}
		return true
	case core.DelegationRequest:
		if err := gate.ObserveDelegation(e.Worker); err != nil {
			r.logger.Warn("out-of-order delegation key=%s turn_id=%s: %v", key, turnID, err)
		}
		r.logger.Info("delegation observed worker=%s turn_id=%s stage=%s", e.Worker, turnID, gate.Current())
	case core.TextChunk:
		if !e.FromCoordinator() {
			gate.ObserveWorkerOutput(e.Origin)
		}
	case core.Opaque:
		return true
	}

	for _, f := range presenter.Feed(ev) {
		if !emit(ctx, frags, f) {
			return false
		}
	}
	return true
}

func emit(ctx context.Context, frags chan<- core.Fragment, f core.Fragment) bool {
	select {
	case <-ctx.Done():
		return false
	case frags <- f:
		return true
	}
}
