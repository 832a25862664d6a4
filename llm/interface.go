package llm

import "context"

// Completer is the gateway surface the generation pipeline consumes.
type Completer interface {
	CompleteChat(ctx context.Context, req CompletionRequest) (string, error)
	CompleteObject(ctx context.Context, req CompletionRequest, out interface{}) error
}
