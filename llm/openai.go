package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manimation/manimation/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient speaks the OpenAI chat completions protocol. With a
// custom base URL it covers every OpenAI-compatible provider (groq,
// together, deepseek, openrouter).
type OpenAIClient struct {
	client   *openai.Client
	provider string
	usage    *usageLogger
	logger   logger.Logger
}

func NewOpenAIClient(apiKey, baseURL, providerName string, usage *usageLogger, log logger.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", providerName)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(cfg),
		provider: providerName,
		usage:    usage,
		logger:   log,
	}, nil
}

func (c *OpenAIClient) CompleteChat(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	oreq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		oreq.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		oreq.Temperature = req.Temperature
	}

	resp, err := c.client.CreateChatCompletion(ctx, oreq)

	e := &openai.APIError{}
	if errors.As(err, &e) {
		switch {
		case e.HTTPStatusCode == 401:
			// unauthorized
			return "", fmt.Errorf("unauthorized: invalid %s API key", c.provider)
		case e.HTTPStatusCode == 429:
			// rate limiting or engine overload (wait and retry)
			return "", &RateLimitError{Provider: c.provider}
		case e.HTTPStatusCode >= 500:
			// provider server error (retry)
			return "", &UnavailableError{Provider: c.provider, Status: e.HTTPStatusCode, Err: err}
		default:
			// unhandled
			return "", fmt.Errorf("%s API error: %v", c.provider, e)
		}
	}
	if err != nil {
		return "", &UnavailableError{Provider: c.provider, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Reason: fmt.Sprintf("no choices returned from %s", c.provider)}
	}

	res := resp.Choices[0].Message.Content
	c.usage.record(lastUserMessage(req.Messages), res, req.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return res, nil
}

func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

// systemAndRest splits out the concatenated system prompt from the
// conversational messages, for providers that carry it out of band.
func systemAndRest(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n"), rest
}
