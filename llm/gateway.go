package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/manimation/manimation/logger"
	"github.com/manimation/manimation/provider"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// CompletionRequest names the provider alongside the chat payload. An
// empty provider or model falls back to the gateway defaults.
type CompletionRequest struct {
	Provider    string
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

type GatewayConfig struct {
	Registry          *provider.Registry
	Credentials       provider.Credentials
	DefaultProvider   string
	BaseURLs          map[string]string
	RequestsPerMinute int
	TellmURL          string
	Logger            logger.Logger
}

// Gateway is the single entry point for model calls. It resolves the
// provider and its credential, enforces a per-provider rate limit,
// retries transient failures with doubling backoff and normalizes
// replies (trimmed, never empty).
type Gateway struct {
	registry        *provider.Registry
	creds           provider.Credentials
	defaultProvider string
	baseURLs        map[string]string
	rpm             int
	usage           *usageLogger
	logger          logger.Logger

	mu       sync.Mutex
	clients  map[string]Client
	limiters map[string]*rate.Limiter

	newClient func(ctx context.Context, d provider.Descriptor, key string) (Client, error)
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewGateway(cfg GatewayConfig) *Gateway {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNullLogger()
	}
	g := &Gateway{
		registry:        cfg.Registry,
		creds:           cfg.Credentials,
		defaultProvider: cfg.DefaultProvider,
		baseURLs:        cfg.BaseURLs,
		rpm:             cfg.RequestsPerMinute,
		usage:           newUsageLogger(cfg.TellmURL, log),
		logger:          log,
		clients:         make(map[string]Client),
		limiters:        make(map[string]*rate.Limiter),
	}
	g.newClient = g.buildClient
	g.sleep = sleepCtx
	return g
}

// CompleteChat runs one chat completion and returns the trimmed reply.
func (g *Gateway) CompleteChat(ctx context.Context, req CompletionRequest) (string, error) {
	d, key, err := g.resolve(req.Provider)
	if err != nil {
		return "", err
	}

	model := req.Model
	if model == "" {
		model = d.DefaultModel
	}

	client, err := g.clientFor(ctx, d, key)
	if err != nil {
		return "", err
	}

	if err := g.limiterFor(d.Name).Wait(ctx); err != nil {
		return "", err
	}

	chat := ChatRequest{
		Model:       model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	var res string
	for attempt := 0; ; attempt++ {
		res, err = client.CompleteChat(ctx, chat)
		if err == nil {
			break
		}
		if !IsRetryable(err) || attempt >= maxAttempts-1 {
			return "", err
		}
		delay := time.Second << attempt
		g.logger.WithField("provider", d.Name).Warn(fmt.Sprintf("completion attempt %d failed, retrying in %v: %v", attempt+1, delay, err))
		if serr := g.sleep(ctx, delay); serr != nil {
			return "", serr
		}
	}

	res = strings.TrimSpace(res)
	if res == "" {
		return "", &MalformedResponseError{Reason: "empty completion"}
	}
	return res, nil
}

// CompleteObject runs a completion and unmarshals the JSON object in
// the reply into out. Callers own their fallback values: any error here
// means "apply your default", never "abort the flow".
func (g *Gateway) CompleteObject(ctx context.Context, req CompletionRequest, out interface{}) error {
	text, err := g.CompleteChat(ctx, req)
	if err != nil {
		return err
	}
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &MalformedResponseError{Reason: fmt.Sprintf("decoding response object: %v", err), Raw: text}
	}
	return nil
}

// Models lists the models of one provider, or of all providers when
// name is empty, using the gateway's credentials.
func (g *Gateway) Models(ctx context.Context, name string) ([]provider.ModelInfo, error) {
	if name == "" {
		return g.registry.AllModels(ctx, g.creds), nil
	}
	return g.registry.Models(ctx, name, g.creds)
}

// Providers lists the registered provider names.
func (g *Gateway) Providers() []string {
	return g.registry.Names()
}

func (g *Gateway) resolve(name string) (provider.Descriptor, string, error) {
	if name == "" {
		name = g.defaultProvider
	}
	d, err := g.registry.Get(name)
	if err != nil {
		return provider.Descriptor{}, "", err
	}
	key, err := g.creds.Resolve(d)
	if err != nil {
		return provider.Descriptor{}, "", err
	}
	return d, key, nil
}

func (g *Gateway) clientFor(ctx context.Context, d provider.Descriptor, key string) (Client, error) {
	sum := sha256.Sum256([]byte(key))
	ck := d.Name + ":" + hex.EncodeToString(sum[:8])

	g.mu.Lock()
	if c, ok := g.clients[ck]; ok {
		g.mu.Unlock()
		return c, nil
	}
	g.mu.Unlock()

	c, err := g.newClient(ctx, d, key)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.clients[ck] = c
	g.mu.Unlock()
	return c, nil
}

func (g *Gateway) buildClient(ctx context.Context, d provider.Descriptor, key string) (Client, error) {
	switch d.Kind {
	case provider.KindAnthropic:
		return NewAnthropicClient(key, g.baseURL(d), d.Name, g.usage, g.logger)
	case provider.KindGemini:
		return NewGeminiClient(ctx, key, d.Name, g.usage, g.logger)
	default:
		return NewOpenAIClient(key, g.baseURL(d), d.Name, g.usage, g.logger)
	}
}

func (g *Gateway) baseURL(d provider.Descriptor) string {
	if override := g.baseURLs[d.Name]; override != "" {
		return override
	}
	return d.BaseURL
}

func (g *Gateway) limiterFor(name string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	lim, ok := g.limiters[name]
	if !ok {
		if g.rpm <= 0 {
			lim = rate.NewLimiter(rate.Inf, 1)
		} else {
			lim = rate.NewLimiter(rate.Limit(float64(g.rpm)/60), 5)
		}
		g.limiters[name] = lim
	}
	return lim
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
