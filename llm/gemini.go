package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/manimation/manimation/logger"
	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API through the genai SDK.
type GeminiClient struct {
	client   *genai.Client
	provider string
	usage    *usageLogger
	logger   logger.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, providerName string, usage *usageLogger, log logger.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", providerName)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}
	return &GeminiClient{
		client:   client,
		provider: providerName,
		usage:    usage,
		logger:   log,
	}, nil
}

func (g *GeminiClient) CompleteChat(ctx context.Context, req ChatRequest) (string, error) {
	system, rest := systemAndRest(req.Messages)

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr[float32](req.Temperature)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			switch {
			case apiErr.Code == 429:
				return "", &RateLimitError{Provider: g.provider}
			case apiErr.Code >= 500:
				return "", &UnavailableError{Provider: g.provider, Status: apiErr.Code, Err: err}
			}
		}
		return "", &UnavailableError{Provider: g.provider, Err: err}
	}

	// Concatenate every text part of every candidate.
	value := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			value += part.Text
		}
	}
	if value == "" {
		return "", &MalformedResponseError{Reason: fmt.Sprintf("no content returned from %s", g.provider)}
	}

	if resp.UsageMetadata != nil {
		g.usage.record(lastUserMessage(req.Messages), value, req.Model,
			int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
	}
	return value, nil
}
