package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_InitialState(t *testing.T) {
	g := NewGate(nil)
	assert.Equal(t, StageBriefPending, g.Current())
	assert.False(t, g.OutputSeen())
	assert.Equal(t, []string{"brief-analyzer"}, g.AllowedWorkers())
}

func TestGate_FullWorkflow(t *testing.T) {
	g := NewGate(nil)

	require.NoError(t, g.ObserveDelegation("brief-analyzer"))
	g.ObserveWorkerOutput("brief-analyzer")
	assert.Equal(t, StageBriefPending, g.Current())
	assert.True(t, g.OutputSeen())

	require.NoError(t, g.Confirm())
	assert.Equal(t, StageBriefConfirmed, g.Current())
	assert.Equal(t, []string{"market-researcher"}, g.AllowedWorkers())

	require.NoError(t, g.ObserveDelegation("market-researcher"))
	assert.Equal(t, StageResearchPending, g.Current())
	g.ObserveWorkerOutput("market-researcher")
	require.NoError(t, g.Confirm())
	assert.Equal(t, StageResearchConfirmed, g.Current())

	require.NoError(t, g.ObserveDelegation("creative-director"))
	g.ObserveWorkerOutput("creative-director")
	require.NoError(t, g.Confirm())
	assert.Equal(t, StageDirectionApproved, g.Current())

	require.NoError(t, g.ObserveDelegation("content-writer"))
	assert.Equal(t, StageContentPending, g.Current())
	g.ObserveWorkerOutput("content-writer")
	assert.Equal(t, StageDone, g.Current())
	assert.Nil(t, g.AllowedWorkers())
}

func TestGate_StagesAreNeverSkipped(t *testing.T) {
	g := NewGate(nil)

	err := g.ObserveDelegation("market-researcher")
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StageBriefPending, te.Stage)
	assert.Equal(t, "market-researcher", te.Worker)

	// Rejection leaves the gate untouched.
	assert.Equal(t, StageBriefPending, g.Current())
}

func TestGate_RetryInPlace(t *testing.T) {
	g := NewGate(nil)

	require.NoError(t, g.ObserveDelegation("brief-analyzer"))
	g.ObserveWorkerOutput("brief-analyzer")
	assert.True(t, g.OutputSeen())

	// Regenerating the same stage resets the confirmable flag but does not
	// move the stage.
	require.NoError(t, g.ObserveDelegation("brief-analyzer"))
	assert.Equal(t, StageBriefPending, g.Current())
	assert.False(t, g.OutputSeen())
}

func TestGate_ConfirmRequiresOutput(t *testing.T) {
	g := NewGate(nil)

	err := g.Confirm()
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StageBriefPending, g.Current())
}

func TestGate_ConfirmOutsidePendingStageRejected(t *testing.T) {
	g := NewGate(nil)
	g.ObserveWorkerOutput("brief-analyzer")
	require.NoError(t, g.Confirm())

	err := g.Confirm()
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StageBriefConfirmed, g.Current())
}

func TestGate_PriorStageWorkerRejectedAfterAdvance(t *testing.T) {
	g := NewGate(nil)
	g.ObserveWorkerOutput("brief-analyzer")
	require.NoError(t, g.Confirm())
	require.NoError(t, g.ObserveDelegation("market-researcher"))

	err := g.ObserveDelegation("brief-analyzer")
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StageResearchPending, g.Current())
}

func TestGate_UnknownWorkerPassesThrough(t *testing.T) {
	// This layer has no validation authority over names the engine reports.
	g := NewGate(nil)
	assert.NoError(t, g.ObserveDelegation("totally-unknown"))
	assert.Equal(t, StageBriefPending, g.Current())
}

func TestGate_OutputFromWrongWorkerIgnored(t *testing.T) {
	g := NewGate(nil)
	g.ObserveWorkerOutput("market-researcher")
	assert.False(t, g.OutputSeen())
}

func TestGate_DoneRejectsDelegations(t *testing.T) {
	full := NewGate(nil)
	full.ObserveWorkerOutput("brief-analyzer")
	require.NoError(t, full.Confirm())
	require.NoError(t, full.ObserveDelegation("market-researcher"))
	full.ObserveWorkerOutput("market-researcher")
	require.NoError(t, full.Confirm())
	require.NoError(t, full.ObserveDelegation("creative-director"))
	full.ObserveWorkerOutput("creative-director")
	require.NoError(t, full.Confirm())
	require.NoError(t, full.ObserveDelegation("content-writer"))
	full.ObserveWorkerOutput("content-writer")
	require.Equal(t, StageDone, full.Current())

	err := full.ObserveDelegation("content-writer")
	var te *TransitionError
	require.ErrorAs(t, err, &te)
}

func TestGateStore_GetOrCreate(t *testing.T) {
	s := NewGateStore(nil)

	g1 := s.GetOrCreate("user:alice")
	g2 := s.GetOrCreate("user:alice")
	assert.Same(t, g1, g2)

	g3 := s.GetOrCreate("user:bob")
	assert.NotSame(t, g1, g3)
}

func TestTransitionError_Message(t *testing.T) {
	err := &TransitionError{Stage: StageBriefPending, Worker: "content-writer", Trigger: "delegation"}
	assert.Contains(t, err.Error(), "content-writer")
	assert.Contains(t, err.Error(), "brief_pending")
}
