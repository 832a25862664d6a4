package core

import (
	"testing"

	"github.com/manimation/manimation/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComplexity(t *testing.T) {
	cases := map[string]Complexity{
		"simple":   ComplexitySimple,
		"medium":   ComplexityMedium,
		"complex":  ComplexityComplex,
		"SIMPLE":   ComplexitySimple,
		" medium ": ComplexityMedium,
		"":         ComplexityMedium,
	}
	for in, want := range cases {
		got, err := ParseComplexity(in)
		require.NoError(t, err, "input: %q", in)
		assert.Equal(t, want, got, "input: %q", in)
	}

	_, err := ParseComplexity("extreme")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown complexity")
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("  explain gravity  ", "complex", "high")
	require.NoError(t, err)
	assert.Equal(t, "explain gravity", req.Prompt)
	assert.Equal(t, ComplexityComplex, req.Complexity)
	assert.Equal(t, render.QualityHigh, req.Quality)

	req, err = NewRequest("explain gravity", "", "")
	require.NoError(t, err)
	assert.Equal(t, ComplexityMedium, req.Complexity)
	assert.Equal(t, render.QualityMedium, req.Quality)
}

func TestNewRequest_Invalid(t *testing.T) {
	var userErr *UserError

	_, err := NewRequest("   ", "medium", "medium")
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "describe the animation you want to generate", userErr.Message)

	_, err = NewRequest("explain gravity", "extreme", "medium")
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "unknown complexity")

	_, err = NewRequest("explain gravity", "medium", "ultra")
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "unknown quality")
}

func TestDefaultRequest(t *testing.T) {
	req := DefaultRequest()
	assert.Equal(t, ComplexityMedium, req.Complexity)
	assert.Equal(t, render.QualityMedium, req.Quality)
}
