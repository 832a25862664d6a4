package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// HTTPLister queries provider model endpoints over HTTP.
type HTTPLister struct {
	client *http.Client
}

func NewHTTPLister() *HTTPLister {
	return &HTTPLister{client: &http.Client{Timeout: 15 * time.Second}}
}

func (l *HTTPLister) ListModels(ctx context.Context, d Descriptor, apiKey string) ([]ModelInfo, error) {
	switch d.Kind {
	case KindOpenAI:
		return l.listOpenAI(ctx, d, apiKey)
	case KindAnthropic:
		return l.listAnthropic(ctx, d, apiKey)
	default:
		return nil, ErrNoDynamicListing
	}
}

func (l *HTTPLister) listOpenAI(ctx context.Context, d Descriptor, apiKey string) ([]ModelInfo, error) {
	cfg := openai.DefaultConfig(apiKey)
	if d.BaseURL != "" {
		cfg.BaseURL = d.BaseURL
	}
	cfg.HTTPClient = l.client
	client := openai.NewClientWithConfig(cfg)

	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing %s models: %w", d.Name, err)
	}

	models := make([]ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, ModelInfo{Name: m.ID, Label: m.ID, Provider: d.Name})
	}
	return models, nil
}

func (l *HTTPLister) listAnthropic(ctx context.Context, d Descriptor, apiKey string) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic API error: status %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %v", err)
	}

	models := make([]ModelInfo, 0, len(payload.Data))
	for _, m := range payload.Data {
		label := m.DisplayName
		if label == "" {
			label = m.ID
		}
		models = append(models, ModelInfo{Name: m.ID, Label: label, Provider: d.Name})
	}
	return models, nil
}
