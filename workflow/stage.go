package workflow

// Stage enumerates the campaign workflow states. Values are ordered; the
// gate only ever moves forward through them.
type Stage int

const (
	// StageBriefPending awaits the brief worker's output and its confirmation.
	StageBriefPending Stage = iota
	// StageBriefConfirmed records caller confirmation of the brief.
	StageBriefConfirmed
	// StageResearchPending awaits the research worker's output and its confirmation.
	StageResearchPending
	// StageResearchConfirmed records caller confirmation of the research.
	StageResearchConfirmed
	// StageDirectionPending awaits the creative direction worker's output.
	StageDirectionPending
	// StageDirectionApproved records the caller approving a direction.
	StageDirectionApproved
	// StageContentPending awaits the content worker's output.
	StageContentPending
	// StageDone is terminal: the content worker has produced output.
	StageDone
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageBriefPending:
		return "brief_pending"
	case StageBriefConfirmed:
		return "brief_confirmed"
	case StageResearchPending:
		return "research_pending"
	case StageResearchConfirmed:
		return "research_confirmed"
	case StageDirectionPending:
		return "direction_pending"
	case StageDirectionApproved:
		return "direction_approved"
	case StageContentPending:
		return "content_pending"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Pending reports whether the stage awaits worker output or confirmation.
func (s Stage) Pending() bool {
	switch s {
	case StageBriefPending, StageResearchPending, StageDirectionPending, StageContentPending:
		return true
	default:
		return false
	}
}

// stageIndex maps a stage to its ordinal workflow step (0-based). Pending
// and confirmed phases of one step share an index.
func (s Stage) stageIndex() int {
	return int(s) / 2
}
