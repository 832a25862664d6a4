package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/manimation/manimation/codegen"
	"github.com/manimation/manimation/logger"
	"github.com/manimation/manimation/memory"
	"github.com/manimation/manimation/render"
	"github.com/manimation/manimation/scenario"
)

// ScenarioExtractor turns a prompt into a structured scenario.
type ScenarioExtractor interface {
	Extract(ctx context.Context, req scenario.Request) (scenario.Extraction, error)
}

// CodeGenerator produces and refines scene code.
type CodeGenerator interface {
	Generate(ctx context.Context, req codegen.Request) (string, error)
	Refine(ctx context.Context, req codegen.RefineRequest) codegen.Outcome
}

// LayoutOptimizer rewrites scene code for better element positioning.
type LayoutOptimizer interface {
	Optimize(ctx context.Context, req codegen.LayoutRequest) codegen.Outcome
}

// CodeEvaluator reviews scene code for syntax and positioning
// problems.
type CodeEvaluator interface {
	Evaluate(ctx context.Context, req codegen.EvaluateRequest) codegen.Evaluation
}

// VideoRenderer turns scene code into a published video file.
type VideoRenderer interface {
	Render(ctx context.Context, code string, quality render.Quality) (string, error)
}

// UserError carries a human-usable explanation for a failed action.
// Every Service failure surfaces as one.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }
func (e *UserError) Unwrap() error { return e.Err }

// Result is what a completed user action produces.
type Result struct {
	Scenario   *scenario.Scenario
	Storyboard string
	Fallback   bool
	Code       string
	VideoPath  string
	Summary    string
}

// EvaluationReport pairs the structured evaluation with its rendered
// markdown report.
type EvaluationReport struct {
	Evaluation codegen.Evaluation
	Report     string
}

// Service sequences the components behind each user action. It holds
// no algorithmic logic of its own.
type Service struct {
	extractor    ScenarioExtractor
	generator    CodeGenerator
	layout       LayoutOptimizer
	evaluator    CodeEvaluator
	renderer     VideoRenderer
	conversation *memory.Conversation
	steps        StepManager
	logger       logger.Logger
}

type ServiceConfig struct {
	Extractor    ScenarioExtractor
	Generator    CodeGenerator
	Layout       LayoutOptimizer
	Evaluator    CodeEvaluator
	Renderer     VideoRenderer
	Conversation *memory.Conversation
	Logger       logger.Logger
}

func NewService(cfg ServiceConfig) *Service {
	conversation := cfg.Conversation
	if conversation == nil {
		conversation = memory.NewConversation()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Service{
		extractor:    cfg.Extractor,
		generator:    cfg.Generator,
		layout:       cfg.Layout,
		evaluator:    cfg.Evaluator,
		renderer:     cfg.Renderer,
		conversation: conversation,
		steps:        NewDefaultStepManager(cfg.Extractor, cfg.Generator, cfg.Layout, cfg.Renderer, conversation),
		logger:       log,
	}
}

// Generate runs the full pipeline for a new animation. On pipeline
// failure the returned Result still carries whatever artifacts were
// produced before the failing step.
func (s *Service) Generate(ctx context.Context, req *Request, pub StepPublisher) (*Result, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, &UserError{Message: "describe the animation you want to generate"}
	}

	pipeline, err := NewPipeline(req, s.steps, pub, s.logger)
	if err != nil {
		return nil, &UserError{Message: err.Error(), Err: err}
	}

	if err := pipeline.Execute(ctx); err != nil {
		st := pipeline.state
		partial := &Result{
			Scenario:   st.Scenario,
			Storyboard: st.Storyboard,
			Fallback:   st.Fallback,
			Code:       st.Code,
		}
		return partial, &UserError{
			Message: fmt.Sprintf("could not generate the animation: %v", err),
			Err:     err,
		}
	}

	st := pipeline.state
	return &Result{
		Scenario:   st.Scenario,
		Storyboard: st.Storyboard,
		Fallback:   st.Fallback,
		Code:       st.Code,
		VideoPath:  st.VideoPath,
		Summary:    FormatSummary(st.Scenario, st.Storyboard, st.Code),
	}, nil
}

// RefineRequest describes one refinement of existing code.
type RefineRequest struct {
	Code     string
	Feedback string
	Quality  render.Quality
	Provider string
	Model    string
}

// Positioning-flavored feedback routes through the layout optimizer
// instead of the general refinement prompt.
var layoutFeedbackMarkers = []string{"position", "layout", "overlap", "spacing", "step by step", "clear"}

func wantsLayoutPass(feedback string) bool {
	lower := strings.ToLower(feedback)
	for _, marker := range layoutFeedbackMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Refine rewrites the current animation per user feedback and renders
// the result. When rendering fails, the returned Result still carries
// the refined code so the user can inspect it.
func (s *Service) Refine(ctx context.Context, req RefineRequest) (*Result, error) {
	if strings.TrimSpace(req.Feedback) == "" {
		return nil, &UserError{Message: "describe the changes you want made"}
	}
	code := req.Code
	if strings.TrimSpace(code) == "" {
		code = s.conversation.CurrentCode()
	}
	if strings.TrimSpace(code) == "" {
		return nil, &UserError{Message: "no animation code to refine yet"}
	}

	prompt := s.conversation.LastPrompt()

	var outcome codegen.Outcome
	if wantsLayoutPass(req.Feedback) {
		outcome = s.layout.Optimize(ctx, codegen.LayoutRequest{
			Code:        code,
			Description: prompt,
			Complexity:  string(ComplexityMedium),
			Provider:    req.Provider,
			Model:       req.Model,
		})
	} else {
		outcome = s.generator.Refine(ctx, codegen.RefineRequest{
			Code:     code,
			Feedback: req.Feedback,
			Context:  s.conversation.RefinementContext(),
			Provider: req.Provider,
			Model:    req.Model,
		})
	}

	videoPath, err := s.renderer.Render(ctx, outcome.Code, req.Quality)
	if err != nil {
		return &Result{Code: outcome.Code}, &UserError{
			Message: fmt.Sprintf("the refined code failed to render: %v", err),
			Err:     err,
		}
	}

	s.conversation.UpdateCode(outcome.Code)

	return &Result{
		Code:      outcome.Code,
		VideoPath: videoPath,
		Summary:   fmt.Sprintf("## Refined Animation\n\nFeedback incorporated: \"%s\"\n\nAnimation successfully rendered.", req.Feedback),
	}, nil
}

// Rerender renders user-edited code directly, without any model call.
func (s *Service) Rerender(ctx context.Context, code string, quality render.Quality) (*Result, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &UserError{Message: "no animation code to render"}
	}

	videoPath, err := s.renderer.Render(ctx, code, quality)
	if err != nil {
		return nil, &UserError{
			Message: fmt.Sprintf("rendering failed: %v", err),
			Err:     err,
		}
	}

	s.conversation.UpdateCode(code)

	return &Result{
		Code:      code,
		VideoPath: videoPath,
		Summary:   "## Re-rendered Animation\n\nCode successfully rendered to video.\n\nCheck the video player for results.",
	}, nil
}

// Evaluate reviews code without rendering it. The prompt defaults to
// the most recent one when omitted.
func (s *Service) Evaluate(ctx context.Context, code, prompt, complexity string) (*EvaluationReport, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &UserError{Message: "no animation code to evaluate"}
	}
	c, err := ParseComplexity(complexity)
	if err != nil {
		return nil, &UserError{Message: err.Error(), Err: err}
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = s.conversation.LastPrompt()
	}

	evaluation := s.evaluator.Evaluate(ctx, codegen.EvaluateRequest{
		Code:        code,
		Description: prompt,
		Complexity:  string(c),
	})

	return &EvaluationReport{
		Evaluation: evaluation,
		Report:     codegen.FormatEvaluation(evaluation),
	}, nil
}
