package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragment_Render(t *testing.T) {
	prose := Fragment{Kind: FragmentProse, Text: "hello"}
	assert.Equal(t, "hello", prose.Render("", ""))
	assert.Equal(t, "hello", prose.Render("[", "]"), "markers never apply to prose")

	internal := Fragment{Kind: FragmentInternal, Text: "thinking"}
	assert.Equal(t, "<internal>\nthinking\n</internal>", internal.Render("", ""))
	assert.Equal(t, "(thinking)", internal.Render("(", ")"))
}

func TestFragmentKind_String(t *testing.T) {
	assert.Equal(t, "prose", FragmentProse.String())
	assert.Equal(t, "internal", FragmentInternal.String())
	assert.Equal(t, "unknown", FragmentKind(42).String())
}
