package codegen

import (
	"context"

	"github.com/manimation/manimation/llm"
	"github.com/manimation/manimation/logger"
	"github.com/manimation/manimation/scenario"
)

// Request describes one code generation.
type Request struct {
	Description string
	Scenario    scenario.Scenario
	Storyboard  string
	Complexity  string
	Provider    string
	Model       string
}

// Outcome reports a best-effort rewrite. Code always holds something
// usable: the rewritten source when Applied, the input otherwise.
type Outcome struct {
	Code    string `json:"code"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

type Generator struct {
	llm    llm.Completer
	logger logger.Logger
}

func NewGenerator(client llm.Completer, log logger.Logger) *Generator {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Generator{llm: client, logger: log}
}

// Generate turns a scenario into renderer-ready scene code. The reply
// is fence-stripped only; semantic validation is the renderer's job.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	text, err := g.llm.CompleteChat(ctx, llm.CompletionRequest{
		Provider: req.Provider,
		Model:    req.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: getManimSystemPrompt(req.Complexity)},
			{Role: llm.RoleUser, Content: getGenerateUserPrompt(req.Description, req.Scenario, req.Complexity, req.Storyboard)},
		},
	})
	if err != nil {
		return "", err
	}

	code := llm.StripCodeFence(text)
	if code == "" {
		return "", &llm.MalformedResponseError{Reason: "empty code reply", Raw: text}
	}
	return code, nil
}

// RefineRequest describes one feedback-driven rewrite.
type RefineRequest struct {
	Code     string
	Feedback string
	Context  string
	Provider string
	Model    string
}

// Refine rewrites code per user feedback. On any failure the input
// comes back untouched with the reason.
func (g *Generator) Refine(ctx context.Context, req RefineRequest) Outcome {
	text, err := g.llm.CompleteChat(ctx, llm.CompletionRequest{
		Provider: req.Provider,
		Model:    req.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: getRefineSystemPrompt()},
			{Role: llm.RoleUser, Content: getRefineUserPrompt(req.Code, req.Context, req.Feedback)},
		},
	})
	if err != nil {
		g.logger.WithField("error", err.Error()).Warn("refinement call failed, keeping original code")
		return Outcome{Code: req.Code, Applied: false, Reason: err.Error()}
	}

	code := llm.StripCodeFence(text)
	if code == "" {
		return Outcome{Code: req.Code, Applied: false, Reason: "model returned no code"}
	}
	return Outcome{Code: code, Applied: true}
}
