package core

import (
	"context"
	"fmt"
	"time"

	"github.com/manimation/manimation/logger"
	"github.com/manimation/manimation/scenario"
)

// Step is one unit of pipeline work.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

type StepType int

const (
	ExtractScenario StepType = iota
	GenerateCode
	RefineLayout
	RenderVideo
	RecordMemory
	Done
)

// State accumulates the artifacts of one generation as it moves
// through the pipeline.
type State struct {
	Scenario   *scenario.Scenario
	Storyboard string
	Fallback   bool
	Code       string
	VideoPath  string
	Request    *Request
	Logger     logger.Logger
}

type Pipeline struct {
	stepManager StepManager
	state       *State
	publisher   StepPublisher
}

func NewPipeline(r *Request, sm StepManager, pub StepPublisher, log logger.Logger) (*Pipeline, error) {
	if r == nil {
		return nil, fmt.Errorf("pipeline request must not be nil")
	}
	if pub == nil {
		pub = &DefaultStepPublisher{}
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Pipeline{
		state: &State{
			Request: r,
			Logger:  log,
		},
		publisher:   pub,
		stepManager: sm,
	}, nil
}

func (p *Pipeline) Execute(ctx context.Context) error {
	steps := p.stepManager.GetSteps()
	p.state.Logger.Info("Starting pipeline execution")
	for i, stepType := range steps {
		select {
		case <-ctx.Done():
			p.state.Logger.Info("Pipeline execution cancelled")
			return context.Canceled
		default:
			p.state.Logger.Info(fmt.Sprintf("Attempting to execute step %d: %v", i, stepType))
			step := p.stepManager.GetStep(stepType)
			if step == nil {
				p.state.Logger.Error(fmt.Sprintf("Step %v not found", stepType))
				p.publisher.Error(stepType, fmt.Errorf("step %v not found", stepType))
				return fmt.Errorf("step %v not found", stepType)
			}

			startTime := time.Now()
			if err := step.Execute(ctx, p.state); err != nil {
				p.state.Logger.Error(fmt.Sprintf("Error executing step %v", stepType))
				p.publisher.Error(stepType, err)
				return err
			}
			duration := time.Since(startTime)
			p.state.Logger.Info(fmt.Sprintf("Step %v completed in %v", stepType, duration))
			p.publisher.PublishStep(stepType)

			if i < len(steps)-1 {
				p.state.Logger.Info(fmt.Sprintf("Transitioning from step %v to step %v", stepType, steps[i+1]))
			}
		}
	}

	p.state.Logger.Info("Pipeline execution completed")
	return nil
}

type StepPublisher interface {
	PublishStep(step StepType)
	Error(step StepType, err error)
}

type DefaultStepPublisher struct{}

func (p *DefaultStepPublisher) PublishStep(step StepType) {}

func (p *DefaultStepPublisher) Error(step StepType, err error) {}
