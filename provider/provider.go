package provider

import (
	"errors"
	"fmt"
	"os"
)

// Kind selects the wire protocol a provider speaks.
type Kind int

const (
	// KindOpenAI covers every provider exposing an OpenAI-compatible
	// chat completions endpoint.
	KindOpenAI Kind = iota
	KindAnthropic
	KindGemini
)

// ModelInfo describes a single selectable model.
type ModelInfo struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Provider  string `json:"provider"`
	MaxTokens int    `json:"max_tokens"`
}

// Descriptor is the static identity of a provider: its name, protocol,
// credential source and built-in model table.
type Descriptor struct {
	Name         string
	Kind         Kind
	KeyEnv       string
	BaseURL      string
	DefaultModel string
	Models       []ModelInfo
}

var (
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrDuplicateProvider = errors.New("provider already registered")
)

// MissingKeyError reports a provider that cannot be called because no
// API key resolved for it.
type MissingKeyError struct {
	Provider string
	EnvVar   string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("no API key for provider %q (set %s)", e.Provider, e.EnvVar)
}

// IsMissingKeyError checks if an error is a MissingKeyError.
func IsMissingKeyError(err error) bool {
	var e *MissingKeyError
	return errors.As(err, &e)
}

// Credentials resolves API keys for providers. Precedence: an explicit
// call-time key beats the provider's environment variable, which beats
// the key from the config file.
type Credentials struct {
	Explicit   map[string]string
	Configured map[string]string
}

// Resolve returns the API key for a provider or a MissingKeyError.
func (c Credentials) Resolve(d Descriptor) (string, error) {
	if key := c.Explicit[d.Name]; key != "" {
		return key, nil
	}
	if key := os.Getenv(d.KeyEnv); key != "" {
		return key, nil
	}
	if key := c.Configured[d.Name]; key != "" {
		return key, nil
	}
	return "", &MissingKeyError{Provider: d.Name, EnvVar: d.KeyEnv}
}
