package core

import (
	"context"
	"fmt"

	"github.com/manimation/manimation/codegen"
	"github.com/manimation/manimation/memory"
	"github.com/manimation/manimation/scenario"
)

type StepManager interface {
	GetSteps() []StepType
	GetStep(stepType StepType) Step
}

type DefaultStepManager struct {
	steps map[StepType]Step
}

func NewDefaultStepManager(extractor ScenarioExtractor, generator CodeGenerator, layout LayoutOptimizer, renderer VideoRenderer, conversation *memory.Conversation) *DefaultStepManager {
	return &DefaultStepManager{
		steps: map[StepType]Step{
			ExtractScenario: &extractScenarioStep{extractor: extractor},
			GenerateCode:    &generateCodeStep{generator: generator},
			RefineLayout:    &refineLayoutStep{refiner: layout},
			RenderVideo:     &renderVideoStep{renderer: renderer},
			RecordMemory:    &recordMemoryStep{conversation: conversation},
			Done:            &doneStep{},
		},
	}
}

func (m *DefaultStepManager) GetSteps() []StepType {
	return []StepType{ExtractScenario, GenerateCode, RefineLayout, RenderVideo, RecordMemory, Done}
}

func (m *DefaultStepManager) GetStep(stepType StepType) Step {
	return m.steps[stepType]
}

type extractScenarioStep struct {
	extractor ScenarioExtractor
}

func (s *extractScenarioStep) Execute(ctx context.Context, state *State) error {
	state.Logger.Debug("Extracting animation scenario.")
	extraction, err := s.extractor.Extract(ctx, scenario.Request{
		Prompt:     state.Request.Prompt,
		Complexity: string(state.Request.Complexity),
		Provider:   state.Request.Provider,
		Model:      state.Request.Model,
	})
	if err != nil {
		state.Logger.WithField("error", err.Error()).Error("Failed to extract scenario")
		return fmt.Errorf("failed to extract scenario: %w", err)
	}
	state.Scenario = &extraction.Scenario
	state.Storyboard = extraction.Storyboard
	state.Fallback = extraction.Fallback
	return nil
}

type generateCodeStep struct {
	generator CodeGenerator
}

func (s *generateCodeStep) Execute(ctx context.Context, state *State) error {
	state.Logger.Debug("Generating Manim code.")
	code, err := s.generator.Generate(ctx, codegen.Request{
		Description: state.Request.Prompt,
		Scenario:    *state.Scenario,
		Storyboard:  state.Storyboard,
		Complexity:  string(state.Request.Complexity),
		Provider:    state.Request.Provider,
		Model:       state.Request.Model,
	})
	if err != nil {
		state.Logger.WithField("error", err.Error()).Error("Failed to generate Manim code")
		return fmt.Errorf("failed to generate animation code: %w", err)
	}
	state.Code = code
	return nil
}

// refineLayoutStep is best-effort: a failed or rejected optimization
// keeps the generated code and never fails the pipeline.
type refineLayoutStep struct {
	refiner LayoutOptimizer
}

func (s *refineLayoutStep) Execute(ctx context.Context, state *State) error {
	state.Logger.Debug("Optimizing element layout.")
	outcome := s.refiner.Optimize(ctx, codegen.LayoutRequest{
		Code:        state.Code,
		Description: state.Request.Prompt,
		Complexity:  string(state.Request.Complexity),
		Provider:    state.Request.Provider,
		Model:       state.Request.Model,
	})
	if outcome.Applied {
		state.Code = outcome.Code
	} else if outcome.Reason != "" {
		state.Logger.WithField("reason", outcome.Reason).Debug("Keeping unoptimized code.")
	}
	return nil
}

type renderVideoStep struct {
	renderer VideoRenderer
}

func (s *renderVideoStep) Execute(ctx context.Context, state *State) error {
	state.Logger.Debug("Rendering animation video.")
	videoPath, err := s.renderer.Render(ctx, state.Code, state.Request.Quality)
	if err != nil {
		state.Logger.WithField("error", err.Error()).Error("Failed to render animation")
		return fmt.Errorf("failed to render animation: %w", err)
	}
	state.VideoPath = videoPath
	return nil
}

type recordMemoryStep struct {
	conversation *memory.Conversation
}

func (s *recordMemoryStep) Execute(ctx context.Context, state *State) error {
	state.Logger.Debug("Recording interaction.")
	s.conversation.Record(state.Request.Prompt, state.Scenario, state.Code, state.VideoPath)
	return nil
}

type doneStep struct{}

func (s *doneStep) Execute(ctx context.Context, state *State) error {
	return nil
}
