package codegen

import (
	"context"
	"strings"
	"testing"

	"github.com/manimation/manimation/llm"
	"github.com/manimation/manimation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_CleanCode(t *testing.T) {
	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, withSystem("syntax errors and logical mistakes")).
		Return("I reviewed the code carefully. No issues found, everything looks good!", nil).Once()
	mockLLM.On("CompleteChat", mock.Anything, withSystem("positioning and spacing issues")).
		Return(`{"positioning_issues": [], "overlap_issues": [], "suggestions": []}`, nil).Once()

	e := NewEvaluator(mockLLM, logger.NewNullLogger())
	ev := e.Evaluate(context.Background(), EvaluateRequest{Code: layoutTestCode, Description: "circle", Complexity: "simple"})

	assert.False(t, ev.HasErrors)
	assert.Empty(t, ev.SyntaxErrors)
	assert.Empty(t, ev.FixedCode)
	mockLLM.AssertNumberOfCalls(t, "CompleteChat", 2)
}

func TestEvaluate_FindsAndFixes(t *testing.T) {
	syntaxReply := `I found problems:
1. Missing colon after the construct definition
2. The MathTex call uses invalid LaTeX`
	positioningReply := `{"positioning_issues": ["Title has no explicit position"], "overlap_issues": ["Circle and label overlap at ORIGIN"], "suggestions": ["Use to_edge(UP) for the title"]}`
	fixedReply := "```python\nfrom manim import *\n\nclass ManimScene(Scene):\n    def construct(self):\n        self.wait(1)\n```"

	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, withSystem("syntax errors and logical mistakes")).
		Return(syntaxReply, nil).Once()
	mockLLM.On("CompleteChat", mock.Anything, withSystem("positioning and spacing issues")).
		Return(positioningReply, nil).Once()
	mockLLM.On("CompleteChat", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		if !strings.Contains(req.Messages[0].Content, "Fix the provided Manim code") {
			return false
		}
		user := req.Messages[1].Content
		return strings.Contains(user, "- 1. Missing colon after the construct definition") &&
			strings.Contains(user, "- Title has no explicit position") &&
			strings.Contains(user, "- Circle and label overlap at ORIGIN") &&
			strings.Contains(user, "- Use to_edge(UP) for the title")
	})).Return(fixedReply, nil).Once()

	e := NewEvaluator(mockLLM, logger.NewNullLogger())
	ev := e.Evaluate(context.Background(), EvaluateRequest{Code: layoutTestCode, Description: "circle", Complexity: "medium"})

	assert.True(t, ev.HasErrors)
	require.Len(t, ev.SyntaxErrors, 2)
	assert.Equal(t, "1. Missing colon after the construct definition", ev.SyntaxErrors[0])
	assert.Equal(t, []string{"Title has no explicit position"}, ev.PositioningIssues)
	assert.Equal(t, []string{"Circle and label overlap at ORIGIN"}, ev.OverlapIssues)
	assert.Equal(t, []string{"Use to_edge(UP) for the title"}, ev.Suggestions)
	assert.Contains(t, ev.FixedCode, "class ManimScene(Scene)")
	mockLLM.AssertExpectations(t)
}

func TestEvaluate_PositioningProseFallback(t *testing.T) {
	positioningReply := `The positioning has some problems:
- The label position is undefined
- Two equations overlap near the center
- You should space the steps further apart`

	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, withSystem("syntax errors and logical mistakes")).
		Return("Everything looks good!", nil).Once()
	mockLLM.On("CompleteChat", mock.Anything, withSystem("positioning and spacing issues")).
		Return(positioningReply, nil).Once()
	mockLLM.On("CompleteChat", mock.Anything, withSystem("Fix the provided Manim code")).
		Return("fixed = True", nil).Once()

	e := NewEvaluator(mockLLM, logger.NewNullLogger())
	ev := e.Evaluate(context.Background(), EvaluateRequest{Code: layoutTestCode})

	assert.True(t, ev.HasErrors)
	assert.Equal(t, []string{"The label position is undefined", "Two equations overlap near the center"}, ev.PositioningIssues)
	assert.Equal(t, []string{"Two equations overlap near the center"}, ev.OverlapIssues)
	assert.Equal(t, []string{"You should space the steps further apart"}, ev.Suggestions)
}

func TestEvaluate_ReviewFailuresDegrade(t *testing.T) {
	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.Anything).
		Return("", &llm.UnavailableError{Provider: "openai", Status: 503})

	e := NewEvaluator(mockLLM, logger.NewNullLogger())
	ev := e.Evaluate(context.Background(), EvaluateRequest{Code: layoutTestCode})

	assert.False(t, ev.HasErrors)
	assert.Empty(t, ev.SyntaxErrors)
	assert.Empty(t, ev.PositioningIssues)
	mockLLM.AssertNumberOfCalls(t, "CompleteChat", 2)
}

func TestFormatEvaluation(t *testing.T) {
	clean := FormatEvaluation(Evaluation{})
	assert.Contains(t, clean, "## Code Evaluation Results")
	assert.Contains(t, clean, "✅ No errors or positioning issues detected")

	fixed := FormatEvaluation(Evaluation{
		HasErrors:         true,
		SyntaxErrors:      []string{"Missing import"},
		PositioningIssues: []string{"Undefined position"},
		OverlapIssues:     []string{"Label overlaps circle"},
		Suggestions:       []string{"Add spacing"},
		FixedCode:         "class ManimScene(Scene): pass",
	})
	assert.Contains(t, fixed, "### Syntax Errors\n\n1. Missing import")
	assert.Contains(t, fixed, "### Positioning Issues\n\n1. Undefined position")
	assert.Contains(t, fixed, "### Potential Element Overlaps\n\n1. Label overlaps circle")
	assert.Contains(t, fixed, "### Suggestions for Improvement\n\n1. Add spacing")
	assert.Contains(t, fixed, "✅ These issues have been automatically fixed")

	unfixed := FormatEvaluation(Evaluation{HasErrors: true, SyntaxErrors: []string{"Missing import"}})
	assert.Contains(t, unfixed, "❌ Could not automatically fix all issues")
}
