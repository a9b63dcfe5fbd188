package core

// FragmentKind distinguishes caller-visible prose from internal reasoning
// annotations so downstream rendering can dim or hide the latter.
type FragmentKind int

const (
	// FragmentProse is verbatim assistant output shown to the user.
	FragmentProse FragmentKind = iota
	// FragmentInternal is coordinator think-aloud plus delegation context,
	// grouped into one annotation block.
	FragmentInternal
)

// String returns the string representation of the fragment kind.
func (k FragmentKind) String() string {
	switch k {
	case FragmentProse:
		return "prose"
	case FragmentInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Default markers used by Fragment.Render to enclose internal fragments.
const (
	DefaultInternalOpen  = "<internal>\n"
	DefaultInternalClose = "\n</internal>"
)

// Fragment is one ordered unit of text emitted to the caller during a turn.
type Fragment struct {
	Kind FragmentKind `json:"kind"`
	Text string       `json:"text"`
}

// Render returns the fragment text, enclosing internal fragments in the given
// markers. Empty markers fall back to the package defaults.
func (f Fragment) Render(open, close string) string {
	if f.Kind != FragmentInternal {
		return f.Text
	}
	if open == "" {
		open = DefaultInternalOpen
	}
	if close == "" {
		close = DefaultInternalClose
	}
	return open + f.Text + close
}
