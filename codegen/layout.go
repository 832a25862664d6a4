package codegen

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/manimation/manimation/llm"
	"github.com/manimation/manimation/logger"
)

// LayoutRequest carries the code under review plus the prompt context
// shown to the reviewer.
type LayoutRequest struct {
	Code        string
	Description string
	Complexity  string
	Provider    string
	Model       string
}

// LayoutAnalysis mirrors the analyzer's reply shape.
type LayoutAnalysis struct {
	Issues        []string `json:"issues"`
	Suggestions   []string `json:"suggestions"`
	AnimationFlow []string `json:"animation_flow"`
	Spacing       float64  `json:"spacing"`
	Regions       []string `json:"regions"`
}

// DefaultLayoutAnalysis is applied when the analyzer call fails or
// replies with something unparseable.
func DefaultLayoutAnalysis() LayoutAnalysis {
	return LayoutAnalysis{
		Issues:        []string{"Potential element overlap", "Undefined positioning"},
		Suggestions:   []string{"Use explicit coordinates for all elements", "Add spacing between elements"},
		AnimationFlow: []string{"Break complex animations into steps", "Add wait time between steps"},
		Spacing:       1.0,
		Regions:       []string{"UP", "DOWN", "LEFT", "RIGHT", "CENTER"},
	}
}

type LayoutRefiner struct {
	llm    llm.Completer
	logger logger.Logger
}

func NewLayoutRefiner(client llm.Completer, log logger.Logger) *LayoutRefiner {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &LayoutRefiner{llm: client, logger: log}
}

// Analyze reviews code for layout problems. It always returns a usable
// analysis: any failure degrades to DefaultLayoutAnalysis.
func (l *LayoutRefiner) Analyze(ctx context.Context, req LayoutRequest) LayoutAnalysis {
	var analysis LayoutAnalysis
	err := l.llm.CompleteObject(ctx, llm.CompletionRequest{
		Provider: req.Provider,
		Model:    req.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: getLayoutAnalysisSystemPrompt()},
			{Role: llm.RoleUser, Content: getLayoutAnalysisUserPrompt(req.Code, req.Description, req.Complexity)},
		},
	}, &analysis)
	if err != nil {
		l.logger.WithField("error", err.Error()).Warn("layout analysis failed, using default analysis")
		return DefaultLayoutAnalysis()
	}
	return analysis
}

// Optimize runs the analyzer and asks for a rewrite applying its
// findings. Any failure, including a reply that lost the scene class,
// returns the input unchanged.
func (l *LayoutRefiner) Optimize(ctx context.Context, req LayoutRequest) Outcome {
	analysis := l.Analyze(ctx, req)
	raw, _ := json.MarshalIndent(analysis, "", "  ")

	text, err := l.llm.CompleteChat(ctx, llm.CompletionRequest{
		Provider: req.Provider,
		Model:    req.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: getLayoutOptimizeSystemPrompt()},
			{Role: llm.RoleUser, Content: getLayoutOptimizeUserPrompt(req.Code, string(raw), req.Description, req.Complexity)},
		},
	})
	if err != nil {
		l.logger.WithField("error", err.Error()).Warn("layout optimization failed, keeping original code")
		return Outcome{Code: req.Code, Applied: false, Reason: err.Error()}
	}

	code := llm.StripCodeFence(text)
	if code == "" || !hasSceneClass(code) {
		return Outcome{Code: req.Code, Applied: false, Reason: "optimized reply lost the scene class"}
	}
	return Outcome{Code: code, Applied: true}
}

var sceneClassRe = regexp.MustCompile(`(?m)^\s*class\s+\w+\s*\([^)]*Scene[^)]*\)\s*:`)

func hasSceneClass(code string) bool {
	return sceneClassRe.MatchString(code)
}
