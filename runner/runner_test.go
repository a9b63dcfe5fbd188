package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaignmesh/campaignmesh/core"
	"github.com/campaignmesh/campaignmesh/engine"
	"github.com/campaignmesh/campaignmesh/internal/testutil"
	"github.com/campaignmesh/campaignmesh/session"
	"github.com/campaignmesh/campaignmesh/workflow"
)

func collect(frags <-chan core.Fragment, errs <-chan error) ([]core.Fragment, error) {
	var out []core.Fragment
	for f := range frags {
		out = append(out, f)
	}
	return out, <-errs
}

func newTestRunner(t *testing.T, eng engine.Engine, optFns ...func(o *Options)) *Runner {
	t.Helper()
	r, err := New(eng, optFns...)
	require.NoError(t, err)
	return r
}

func TestTurn_BriefScenario(t *testing.T) {
	eng := engine.NewMockEngine()
	eng.Script("Sell eco bottles to Gen Z",
		engine.NewInitEvent("s1"),
		engine.NewAssistantEvent("",
			engine.DelegateBlock("toolu_1", "brief-analyzer", "Analyze the request", "Structure the brief")),
		engine.NewAssistantEvent("toolu_1", engine.TextBlock("=== BRIEF ===\n...")),
		engine.NewAssistantEvent("toolu_1", engine.TextBlock("Is this accurate?")),
		engine.NewResultEvent("success"),
	)

	tokens := session.NewInMemoryRegistry()
	r := newTestRunner(t, eng, func(o *Options) { o.Tokens = tokens })

	cc := testutil.NewCallerContext().UserSays("Sell eco bottles to Gen Z").WithConversationID("c1").Build()
	frags, err := collect(r.Turn(context.Background(), cc))
	require.NoError(t, err)

	require.Len(t, frags, 3)
	assert.Equal(t, core.FragmentInternal, frags[0].Kind)
	assert.Contains(t, frags[0].Text, "brief-analyzer")
	assert.Equal(t, core.Fragment{Kind: core.FragmentProse, Text: "=== BRIEF ===\n..."}, frags[1])
	assert.Equal(t, core.Fragment{Kind: core.FragmentProse, Text: "Is this accurate?"}, frags[2])

	// The registry now maps the resolved key to the init token.
	token, ok, terr := tokens.Get(context.Background(), "conv:c1")
	require.NoError(t, terr)
	assert.True(t, ok)
	assert.Equal(t, "s1", token)
}

func TestTurn_ResumeTokenPassedOnNextTurn(t *testing.T) {
	eng := engine.NewMockEngine()
	eng.Script("first",
		engine.NewInitEvent("s1"),
		engine.NewAssistantEvent("", engine.TextBlock("ok")),
	)
	eng.Script("second",
		engine.NewInitEvent("s2"),
		engine.NewAssistantEvent("", engine.TextBlock("ok again")),
	)

	tokens := session.NewInMemoryRegistry()
	r := newTestRunner(t, eng, func(o *Options) { o.Tokens = tokens })

	cc := testutil.NewCallerContext().User("alice").UserSays("first").Build()
	_, err := collect(r.Turn(context.Background(), cc))
	require.NoError(t, err)

	cc2 := testutil.NewCallerContext().User("alice").UserSays("first").UserSays("second").Build()
	_, err = collect(r.Turn(context.Background(), cc2))
	require.NoError(t, err)

	require.NotNil(t, eng.LastRequest())
	assert.Equal(t, "s1", eng.LastRequest().ResumeToken)

	// Last write wins: the second init replaced the stored token.
	token, ok, terr := tokens.Get(context.Background(), "user:alice")
	require.NoError(t, terr)
	assert.True(t, ok)
	assert.Equal(t, "s2", token)
}

func TestTurn_InitWithoutTokenDegradesToStateless(t *testing.T) {
	eng := engine.NewMockEngine()
	eng.Script("hello",
		engine.NewInitEvent(""),
		engine.NewAssistantEvent("", engine.TextBlock("hi")),
	)

	tokens := session.NewInMemoryRegistry()
	r := newTestRunner(t, eng, func(o *Options) { o.Tokens = tokens })

	cc := testutil.NewCallerContext().User("alice").UserSays("hello").Build()
	frags, err := collect(r.Turn(context.Background(), cc))
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "hi", frags[0].Text)

	_, ok, terr := tokens.Get(context.Background(), "user:alice")
	require.NoError(t, terr)
	assert.False(t, ok)
}

func TestTurn_EngineFailurePropagates(t *testing.T) {
	eng := engine.NewMockEngine()
	eng.Script("boom",
		engine.NewInitEvent("s1"),
		engine.NewAssistantEvent("toolu_x", engine.TextBlock("partial output")),
	)
	eng.FailWith(errors.New("engine exploded"))

	r := newTestRunner(t, eng)

	cc := testutil.NewCallerContext().User("alice").UserSays("boom").Build()
	frags, err := collect(r.Turn(context.Background(), cc))

	// Already-emitted fragments stand; the failure is not masked.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine exploded")
	require.Len(t, frags, 1)
	assert.Equal(t, "partial output", frags[0].Text)
}

func TestTurn_StageGateFiltersWorkers(t *testing.T) {
	eng := engine.NewMockEngine()
	r := newTestRunner(t, eng)

	cc := testutil.NewCallerContext().User("alice").UserSays("start").Build()
	_, err := collect(r.Turn(context.Background(), cc))
	require.NoError(t, err)

	req := eng.LastRequest()
	require.NotNil(t, req)
	require.Len(t, req.Workers, 1)
	_, ok := req.Workers["brief-analyzer"]
	assert.True(t, ok)
}

func TestTurn_ConfirmationAdvancesStage(t *testing.T) {
	eng := engine.NewMockEngine()
	eng.Script("Sell bottles",
		engine.NewInitEvent("s1"),
		engine.NewAssistantEvent("",
			engine.DelegateBlock("toolu_1", "brief-analyzer", "Analyze", "prompt")),
		engine.NewAssistantEvent("toolu_1", engine.TextBlock("Is this accurate?")),
	)
	eng.Script("yes",
		engine.NewInitEvent("s2"),
		engine.NewAssistantEvent("",
			engine.DelegateBlock("toolu_2", "market-researcher", "Research", "prompt")),
		engine.NewAssistantEvent("toolu_2", engine.TextBlock("Idea 1 ...")),
	)

	gates := workflow.NewGateStore(nil)
	r := newTestRunner(t, eng, func(o *Options) { o.Gates = gates })

	cc := testutil.NewCallerContext().User("alice").UserSays("Sell bottles").Build()
	_, err := collect(r.Turn(context.Background(), cc))
	require.NoError(t, err)

	gate := gates.GetOrCreate("user:alice")
	assert.Equal(t, workflow.StageBriefPending, gate.Current())
	assert.True(t, gate.OutputSeen())

	// The subsequent inbound message is the confirmation trigger; the next
	// turn may only invoke the research worker.
	cc2 := testutil.NewCallerContext().User("alice").
		UserSays("Sell bottles").AssistantSays("Is this accurate?").UserSays("yes").Build()
	_, err = collect(r.Turn(context.Background(), cc2))
	require.NoError(t, err)

	req := eng.LastRequest()
	require.Len(t, req.Workers, 1)
	_, ok := req.Workers["market-researcher"]
	assert.True(t, ok)
	assert.Equal(t, workflow.StageResearchPending, gate.Current())
}

func TestTurn_OpaqueEventsNeverSurface(t *testing.T) {
	eng := engine.NewMockEngine()
	eng.Script("hello",
		engine.NewInitEvent("s1"),
		engine.NewResultEvent("success"),
		testutil.NewRawEvent().Type("user").ContentString("replayed echo").Build(),
		engine.NewAssistantEvent("", engine.TextBlock("visible")),
	)

	r := newTestRunner(t, eng)

	cc := testutil.NewCallerContext().User("alice").UserSays("hello").Build()
	frags, err := collect(r.Turn(context.Background(), cc))
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "visible", frags[0].Text)
}

func TestTurn_EndOfTurnFlushesBufferedCoordinatorText(t *testing.T) {
	eng := engine.NewMockEngine()
	eng.Script("hello",
		engine.NewInitEvent("s1"),
		engine.NewAssistantEvent("", engine.TextBlock("closing thought")),
	)

	r := newTestRunner(t, eng)

	cc := testutil.NewCallerContext().User("alice").UserSays("hello").Build()
	frags, err := collect(r.Turn(context.Background(), cc))
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, core.Fragment{Kind: core.FragmentProse, Text: "closing thought"}, frags[0])
}
