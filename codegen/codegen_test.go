package codegen

import (
	"context"
	"strings"
	"testing"

	"github.com/manimation/manimation/llm"
	"github.com/manimation/manimation/logger"
	"github.com/manimation/manimation/scenario"
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

// withSystem matches a completion request whose system message
// contains the given fragment.
func withSystem(substr string) interface{} {
	return mock.MatchedBy(func(req llm.CompletionRequest) bool {
		return len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, substr)
	})
}

func testScenario() scenario.Scenario {
	return scenario.Scenario{
		Title:           "Pythagorean Theorem",
		Objects:         []string{"triangle", "square", "text"},
		Transformations: []string{"creation", "area_calculation"},
		Equations:       []string{`a^2 + b^2 = c^2`},
	}
}

func TestGenerate_StripsFence(t *testing.T) {
	reply := "```python\nfrom manim import *\n\nclass ManimScene(Scene):\n    def construct(self):\n        self.wait(1)\n```"

	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		system := req.Messages[0].Content
		user := req.Messages[1].Content
		return strings.Contains(system, `The class name MUST be "ManimScene"`) &&
			strings.Contains(system, "simple, beginner-friendly") &&
			strings.Contains(user, "'Pythagorean Theorem'") &&
			strings.Contains(user, "triangle, square, text")
	})).Return(reply, nil).Once()

	g := NewGenerator(mockLLM, logger.NewNullLogger())
	code, err := g.Generate(context.Background(), Request{
		Description: "explain the pythagorean theorem",
		Scenario:    testScenario(),
		Complexity:  "simple",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "from manim import *"))
	assert.NotContains(t, code, "```")
	mockLLM.AssertExpectations(t)
}

func TestGenerate_ComplexityAddendum(t *testing.T) {
	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, withSystem("sophisticated Manim animations")).
		Return("class ManimScene(Scene): pass", nil).Once()

	g := NewGenerator(mockLLM, logger.NewNullLogger())
	_, err := g.Generate(context.Background(), Request{
		Description: "fourier series",
		Scenario:    testScenario(),
		Complexity:  "complex",
	})
	require.NoError(t, err)
	mockLLM.AssertExpectations(t)
}

func TestGenerate_StoryboardIncluded(t *testing.T) {
	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		user := req.Messages[1].Content
		return strings.Contains(user, "Follow this narrative structure") &&
			strings.Contains(user, `"section_name": "Introduction"`)
	})).Return("class ManimScene(Scene): pass", nil).Once()

	g := NewGenerator(mockLLM, logger.NewNullLogger())
	_, err := g.Generate(context.Background(), Request{
		Description: "sine waves",
		Scenario:    testScenario(),
		Storyboard:  "[\n  {\n    \"section_name\": \"Introduction\"\n  }\n]",
		Complexity:  "medium",
	})
	require.NoError(t, err)
	mockLLM.AssertExpectations(t)
}

func TestGenerate_EmptyReplyIsError(t *testing.T) {
	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.Anything).Return("```python\n```", nil).Once()

	g := NewGenerator(mockLLM, logger.NewNullLogger())
	_, err := g.Generate(context.Background(), Request{Description: "x", Scenario: testScenario()})
	require.Error(t, err)
	var malformed *llm.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestGenerate_PropagatesGatewayError(t *testing.T) {
	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.Anything).
		Return("", &llm.UnavailableError{Provider: "openai", Status: 500}).Once()

	g := NewGenerator(mockLLM, logger.NewNullLogger())
	_, err := g.Generate(context.Background(), Request{Description: "x", Scenario: testScenario()})
	require.Error(t, err)
	var unavailable *llm.UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestRefine_Applied(t *testing.T) {
	original := "class ManimScene(Scene):\n    def construct(self):\n        pass"
	refined := "class ManimScene(Scene):\n    def construct(self):\n        self.wait(2)"

	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		user := req.Messages[1].Content
		return strings.Contains(user, original) &&
			strings.Contains(user, `"make the pause longer"`) &&
			strings.Contains(user, "Previous prompt: a circle")
	})).Return("```python\n"+refined+"\n```", nil).Once()

	g := NewGenerator(mockLLM, logger.NewNullLogger())
	out := g.Refine(context.Background(), RefineRequest{
		Code:     original,
		Feedback: "make the pause longer",
		Context:  "Previous prompt: a circle\n",
	})
	assert.True(t, out.Applied)
	assert.Equal(t, refined, out.Code)
	assert.Empty(t, out.Reason)
}

func TestRefine_FailureKeepsOriginal(t *testing.T) {
	original := "class ManimScene(Scene): pass"

	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.Anything).
		Return("", &llm.RateLimitError{Provider: "openai"}).Once()

	g := NewGenerator(mockLLM, logger.NewNullLogger())
	out := g.Refine(context.Background(), RefineRequest{Code: original, Feedback: "anything"})
	assert.False(t, out.Applied)
	assert.Equal(t, original, out.Code)
	assert.NotEmpty(t, out.Reason)
}

func TestRefine_EmptyReplyKeepsOriginal(t *testing.T) {
	original := "class ManimScene(Scene): pass"

	mockLLM := new(MockCompleter)
	mockLLM.On("CompleteChat", mock.Anything, mock.Anything).Return("``````", nil).Once()

	g := NewGenerator(mockLLM, logger.NewNullLogger())
	out := g.Refine(context.Background(), RefineRequest{Code: original, Feedback: "anything"})
	assert.False(t, out.Applied)
	assert.Equal(t, original, out.Code)
}
