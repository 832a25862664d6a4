package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/manimation/manimation/logger"
)

const anthropicVersion = "2023-06-01"

type AnthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
		Type string `json:"type"`
	} `json:"content"`
	ID           string  `json:"id"`
	Model        string  `json:"model"`
	Role         string  `json:"role"`
	StopReason   string  `json:"stop_reason"`
	StopSequence *string `json:"stop_sequence"`
	Type         string  `json:"type"`
	Usage        struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type AnthropicErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type AnthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
	Messages    []Message `json:"messages"`
}

// AnthropicClient talks to the Anthropic messages API directly. The
// system prompt travels in its own field, not as a message.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	provider   string
	usage      *usageLogger
	logger     logger.Logger
	httpClient *http.Client
}

func NewAnthropicClient(apiKey, baseURL, providerName string, usage *usageLogger, log logger.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", providerName)
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		provider:   providerName,
		usage:      usage,
		logger:     log,
		httpClient: &http.Client{},
	}, nil
}

func (a *AnthropicClient) CompleteChat(ctx context.Context, req ChatRequest) (string, error) {
	system, rest := systemAndRest(req.Messages)
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	body := AnthropicRequest{
		Model:       req.Model,
		MaxTokens:   maxTokens,
		System:      system,
		Temperature: req.Temperature,
		Messages:    rest,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}

	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", &UnavailableError{Provider: a.provider, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &RateLimitError{Provider: a.provider}
	}
	if resp.StatusCode >= 500 {
		return "", &UnavailableError{Provider: a.provider, Status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		var errResp AnthropicErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return "", fmt.Errorf("anthropic API error: status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("anthropic API error: %s - %s", errResp.Error.Type, errResp.Error.Message)
	}

	var anthropicResp AnthropicResponse
	if err := json.Unmarshal(respBody, &anthropicResp); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}

	if len(anthropicResp.Content) == 0 {
		return "", &MalformedResponseError{Reason: fmt.Sprintf("no content returned from %s", a.provider)}
	}

	res := anthropicResp.Content[0].Text
	a.usage.record(lastUserMessage(req.Messages), res, req.Model, anthropicResp.Usage.InputTokens, anthropicResp.Usage.OutputTokens)
	return res, nil
}
