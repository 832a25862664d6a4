package cli

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/manimation/manimation/core"
	"github.com/manimation/manimation/logger"
)

type ExecutionRequest struct {
	Request    *core.Request
	ResultChan chan ExecutionResult
	CreatedAt  time.Time
}

// ExecutionResult carries the outcome of one generation back to the
// caller. Result may hold partial artifacts even when Err is set.
type ExecutionResult struct {
	Result *core.Result
	Err    error
}

type Engine struct {
	service      *core.Service
	pub          core.StepPublisher
	logger       logger.Logger
	requests     chan ExecutionRequest
	workers      int
	workerWG     sync.WaitGroup
	shutdownChan chan struct{}
}

func NewAnimationEngine(service *core.Service, pub core.StepPublisher, l logger.Logger, workers int) (*Engine, error) {
	if service == nil {
		return nil, errors.New("engine requires a service")
	}
	if l == nil {
		l = logger.NewNullLogger()
	}
	return &Engine{
		service:      service,
		pub:          pub,
		logger:       l,
		requests:     make(chan ExecutionRequest, 1000), // Buffered channel
		workers:      workers,
		shutdownChan: make(chan struct{}),
	}, nil
}

func (e *Engine) Start(ctx context.Context) {
	for i := 0; i < e.workers; i++ {
		e.workerWG.Add(1)
		go e.worker(ctx)
	}
}

func (e *Engine) worker(ctx context.Context) {
	defer e.workerWG.Done()
	for {
		select {
		case req := <-e.requests:
			res, err := e.service.Generate(ctx, req.Request, e.pub)
			req.ResultChan <- ExecutionResult{Result: res, Err: err}
			close(req.ResultChan)
		case <-ctx.Done():
			return
		case <-e.shutdownChan:
			return
		}
	}
}

func (e *Engine) AddRequest(request *core.Request) chan ExecutionResult {
	resultChan := make(chan ExecutionResult, 1)
	e.requests <- ExecutionRequest{
		Request:    request,
		ResultChan: resultChan,
		CreatedAt:  time.Now(),
	}
	return resultChan
}

func (e *Engine) Shutdown(timeout time.Duration) {
	close(e.shutdownChan)

	done := make(chan struct{})
	go func() {
		e.workerWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("All workers shut down gracefully")
	case <-time.After(timeout):
		e.logger.Warn("Shutdown timed out, some workers may still be running")
	}
}
