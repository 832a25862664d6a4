package codegen

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/manimation/manimation/llm"
	"github.com/manimation/manimation/logger"
)

// EvaluateRequest carries the code under evaluation and its origin.
type EvaluateRequest struct {
	Code        string
	Description string
	Complexity  string
	Provider    string
	Model       string
}

// Evaluation aggregates one review pass over scene code.
type Evaluation struct {
	HasErrors         bool     `json:"has_errors"`
	SyntaxErrors      []string `json:"syntax_errors,omitempty"`
	PositioningIssues []string `json:"positioning_issues,omitempty"`
	OverlapIssues     []string `json:"overlap_issues,omitempty"`
	Suggestions       []string `json:"suggestions,omitempty"`
	FixedCode         string   `json:"fixed_code,omitempty"`
}

type Evaluator struct {
	llm    llm.Completer
	logger logger.Logger
}

func NewEvaluator(client llm.Completer, log logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Evaluator{llm: client, logger: log}
}

// Evaluate composes the syntax and positioning reviews and, when they
// find anything, asks for a corrected version. Every sub-step degrades
// on failure; nothing errors out of this layer.
func (e *Evaluator) Evaluate(ctx context.Context, req EvaluateRequest) Evaluation {
	ev := Evaluation{SyntaxErrors: e.checkSyntax(ctx, req)}

	review := e.checkPositioning(ctx, req)
	ev.PositioningIssues = review.PositioningIssues
	ev.OverlapIssues = review.OverlapIssues
	ev.Suggestions = review.Suggestions

	ev.HasErrors = len(ev.SyntaxErrors) > 0 || len(ev.PositioningIssues) > 0 || len(ev.OverlapIssues) > 0
	if ev.HasErrors {
		ev.FixedCode = e.fixIssues(ctx, req, ev)
	}
	return ev
}

func (e *Evaluator) checkSyntax(ctx context.Context, req EvaluateRequest) []string {
	text, err := e.llm.CompleteChat(ctx, llm.CompletionRequest{
		Provider: req.Provider,
		Model:    req.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: getSyntaxReviewSystemPrompt()},
			{Role: llm.RoleUser, Content: getSyntaxReviewUserPrompt(req.Code, req.Description, req.Complexity)},
		},
	})
	if err != nil {
		e.logger.WithField("error", err.Error()).Warn("syntax review failed, skipping")
		return nil
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "no issues") || strings.Contains(lower, "looks good") {
		return nil
	}
	return llm.SegmentIssues(text)
}

type positioningReview struct {
	PositioningIssues []string `json:"positioning_issues"`
	OverlapIssues     []string `json:"overlap_issues"`
	Suggestions       []string `json:"suggestions"`
}

func (e *Evaluator) checkPositioning(ctx context.Context, req EvaluateRequest) positioningReview {
	text, err := e.llm.CompleteChat(ctx, llm.CompletionRequest{
		Provider: req.Provider,
		Model:    req.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: getPositioningReviewSystemPrompt()},
			{Role: llm.RoleUser, Content: getPositioningReviewUserPrompt(req.Code, req.Description, req.Complexity)},
		},
	})
	if err != nil {
		e.logger.WithField("error", err.Error()).Warn("positioning review failed, skipping")
		return positioningReview{}
	}

	if raw, err := llm.ExtractJSONObject(text); err == nil {
		var review positioningReview
		if err := json.Unmarshal(raw, &review); err == nil {
			return review
		}
	}

	// No parseable JSON; scan the prose for bullet points instead.
	notes := llm.ParseReviewNotes(text)
	return positioningReview{
		PositioningIssues: notes.Positioning,
		OverlapIssues:     notes.Overlaps,
		Suggestions:       notes.Suggestions,
	}
}

func (e *Evaluator) fixIssues(ctx context.Context, req EvaluateRequest, ev Evaluation) string {
	text, err := e.llm.CompleteChat(ctx, llm.CompletionRequest{
		Provider: req.Provider,
		Model:    req.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: getFixSystemPrompt()},
			{Role: llm.RoleUser, Content: getFixUserPrompt(req.Code, ev, req.Description, req.Complexity)},
		},
	})
	if err != nil {
		e.logger.WithField("error", err.Error()).Warn("fix call failed, leaving issues unfixed")
		return ""
	}
	return llm.StripCodeFence(text)
}
