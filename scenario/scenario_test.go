package scenario

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/manimation/manimation/llm"
	"github.com/manimation/manimation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCompleter is a mock implementation of the LLM gateway
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) CompleteChat(ctx context.Context, req llm.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockCompleter) CompleteObject(ctx context.Context, req llm.CompletionRequest, out interface{}) error {
	args := m.Called(ctx, req, out)
	return args.Error(0)
}

func TestExtract_Success(t *testing.T) {
	reply := `Here is your storyboard:
{
  "title": "Understanding Sine Waves",
  "objects": ["coordinate_plane", "function_graph", "unit_circle"],
  "transformations": ["fade_in", "draw", "rotate"],
  "equations": ["y = \\sin(x)"],
  "storyboard": [
    {"section_name": "Introduction", "time_range": "0:00-0:20", "narration": "Meet the sine wave"}
  ]
}`

	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		return len(req.Messages) == 2 &&
			strings.Contains(req.Messages[1].Content, "'explain sine waves'") &&
			strings.Contains(req.Messages[1].Content, "Complexity level: medium")
	})).Return(reply, nil).Once()

	e := NewExtractor(mockLLM, logger.NewNullLogger())
	out, err := e.Extract(context.Background(), Request{Prompt: "explain sine waves", Complexity: "medium"})
	require.NoError(t, err)

	assert.False(t, out.Fallback)
	assert.Equal(t, "Understanding Sine Waves", out.Scenario.Title)
	assert.Equal(t, []string{"coordinate_plane", "function_graph", "unit_circle"}, out.Scenario.Objects)
	assert.Equal(t, []string{"fade_in", "draw", "rotate"}, out.Scenario.Transformations)
	assert.Equal(t, []string{`y = \sin(x)`}, out.Scenario.Equations)

	require.NotEmpty(t, out.Storyboard)
	assert.True(t, json.Valid([]byte(out.Storyboard)))
	assert.Contains(t, out.Storyboard, "Introduction")
	mockLLM.AssertExpectations(t)
}

func TestExtract_MissingFieldsDefaulted(t *testing.T) {
	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.Anything).
		Return(`{"objects": ["circle"], "transformations": ["creation"], "equations": null}`, nil).Once()

	e := NewExtractor(mockLLM, logger.NewNullLogger())
	out, err := e.Extract(context.Background(), Request{Prompt: "a circle", Complexity: "simple"})
	require.NoError(t, err)

	assert.False(t, out.Fallback)
	assert.Equal(t, "A circle Visualization", out.Scenario.Title)
	assert.Nil(t, out.Scenario.Equations)
	assert.Empty(t, out.Storyboard)
}

func TestExtract_FallbackOnInvalidJSON(t *testing.T) {
	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.Anything).
		Return("I'd be happy to help, but I cannot produce a storyboard right now.", nil).Once()

	e := NewExtractor(mockLLM, logger.NewNullLogger())
	out, err := e.Extract(context.Background(), Request{Prompt: "Explain the Pythagorean theorem", Complexity: "simple"})
	require.NoError(t, err)

	assert.True(t, out.Fallback)
	assert.Equal(t, "Explain the Pythagorean theorem Visualization", out.Scenario.Title)
	assert.Equal(t, []string{"triangle", "square", "text"}, out.Scenario.Objects)
	assert.Equal(t, []string{"creation", "area_calculation"}, out.Scenario.Transformations)
	assert.Equal(t, []string{`a^2 + b^2 = c^2`}, out.Scenario.Equations)
}

func TestExtract_FallbackOnTransportError(t *testing.T) {
	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.Anything).
		Return("", &llm.UnavailableError{Provider: "openai", Status: 503}).Once()

	e := NewExtractor(mockLLM, logger.NewNullLogger())
	out, err := e.Extract(context.Background(), Request{Prompt: "show a sine wave", Complexity: "medium"})
	require.NoError(t, err)

	assert.True(t, out.Fallback)
	assert.Equal(t, []string{"circle", "text", "coordinate_system"}, out.Scenario.Objects)
	assert.Equal(t, []string{"creation", "transformation", "highlight"}, out.Scenario.Transformations)
	assert.Nil(t, out.Scenario.Equations)
}

func TestExtract_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.Anything).Return("", context.Canceled).Once()

	e := NewExtractor(mockLLM, logger.NewNullLogger())
	_, err := e.Extract(ctx, Request{Prompt: "anything", Complexity: "medium"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallback_Keywords(t *testing.T) {
	calc := Fallback("visualize the derivative of x^2")
	assert.Equal(t, []string{"function_graph", "tangent_line", "area"}, calc.Objects)
	assert.Equal(t, []string{"drawing", "zoom", "fill"}, calc.Transformations)
	require.Len(t, calc.Equations, 1)
	assert.Contains(t, calc.Equations[0], `\lim_{h \to 0}`)

	generic := Fallback("bouncing ball physics")
	assert.Equal(t, "Bouncing ball physics Visualization", generic.Title)
	assert.Equal(t, []string{"circle", "text", "coordinate_system"}, generic.Objects)
	assert.Nil(t, generic.Equations)
}
