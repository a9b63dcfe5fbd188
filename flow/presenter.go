package flow

import (
	"fmt"
	"strings"

	"github.com/campaignmesh/campaignmesh/core"
)

// Presenter converts the classified event sequence of one turn into the
// linear caller-visible fragment sequence. Coordinator text is buffered until
// the next flush point, because it may be context for an imminent delegation
// rather than freestanding prose. Flush points: a delegation request, the
// first worker output after buffering, and end of turn.
//
// The output is a pure function of the fed event sequence; ordering matches
// engine emission order with no reordering across events. Presenter is not
// safe for concurrent use; each turn owns its own instance.
type Presenter struct {
	buf []string
}

// NewPresenter constructs a presenter with an empty buffer.
func NewPresenter() *Presenter { return &Presenter{} }

// Feed consumes one classified event and returns the fragments it releases,
// possibly none.
func (p *Presenter) Feed(ev core.AgentEvent) []core.Fragment {
	switch e := ev.(type) {
	case core.TextChunk:
		if e.FromCoordinator() {
			p.buf = append(p.buf, e.Text)
			return nil
		}
		// Lingering coordinator commentary before worker output is context,
		// not a delegation act: flush as plain prose, then the worker text
		// verbatim.
		frags := p.flushProse()
		return append(frags, core.Fragment{Kind: core.FragmentProse, Text: e.Text})
	case core.DelegationRequest:
		return []core.Fragment{{
			Kind: core.FragmentInternal,
			Text: formatAnnotation(p.drain(), e),
		}}
	default:
		// Init and Opaque never surface.
		return nil
	}
}

// Finish flushes any remaining buffered coordinator text as plain prose.
// Call exactly once at end of turn.
func (p *Presenter) Finish() []core.Fragment {
	return p.flushProse()
}

func (p *Presenter) drain() string {
	text := strings.Join(p.buf, "")
	p.buf = nil
	return text
}

func (p *Presenter) flushProse() []core.Fragment {
	if len(p.buf) == 0 {
		return nil
	}
	return []core.Fragment{{Kind: core.FragmentProse, Text: p.drain()}}
}

// formatAnnotation groups the buffered thought, the delegation target and
// description, and (when present) the full task prompt into one internal
// reasoning unit.
func formatAnnotation(thought string, d core.DelegationRequest) string {
	var sb strings.Builder
	if thought != "" {
		sb.WriteString(thought)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "Delegating to %s", d.Worker)
	if d.Description != "" {
		fmt.Fprintf(&sb, ": %s", d.Description)
	}
	if d.Prompt != "" {
		sb.WriteString("\n\n")
		sb.WriteString(d.Prompt)
	}
	return sb.String()
}
