package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/manimation/manimation/llm"
	"github.com/manimation/manimation/logger"
)

// Scenario is the structured description of what an animation should
// contain. It is produced once per request and never mutated after.
type Scenario struct {
	Title           string   `json:"title"`
	Objects         []string `json:"objects"`
	Transformations []string `json:"transformations"`
	Equations       []string `json:"equations,omitempty"`
}

// Request describes one extraction.
type Request struct {
	Prompt     string
	Complexity string
	Provider   string
	Model      string
}

// Extraction carries the scenario plus how it was obtained. Storyboard
// is the raw storyboard section re-rendered as indented JSON, empty
// when the model returned none.
type Extraction struct {
	Scenario   Scenario
	Storyboard string
	Fallback   bool
}

type Extractor struct {
	llm    llm.Completer
	logger logger.Logger
}

func NewExtractor(client llm.Completer, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Extractor{llm: client, logger: log}
}

type wireScenario struct {
	Title           string          `json:"title"`
	Objects         []string        `json:"objects"`
	Transformations []string        `json:"transformations"`
	Equations       []string        `json:"equations"`
	Storyboard      json.RawMessage `json:"storyboard"`
}

// Extract turns a free-text prompt into a structured scenario. Any
// model or parse failure degrades to the keyword fallback table; the
// only error returned is context cancellation.
func (e *Extractor) Extract(ctx context.Context, req Request) (Extraction, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: extractSystemPrompt},
		{Role: llm.RoleUser, Content: extractUserPrompt(req.Prompt, req.Complexity)},
	}

	text, err := e.llm.CompleteChat(ctx, llm.CompletionRequest{
		Provider: req.Provider,
		Model:    req.Model,
		Messages: messages,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Extraction{}, ctx.Err()
		}
		e.logger.WithField("error", err.Error()).Warn("scenario extraction failed, using keyword fallback")
		return Extraction{Scenario: Fallback(req.Prompt), Fallback: true}, nil
	}

	raw, err := llm.ExtractJSONObject(text)
	if err != nil {
		e.logger.WithField("error", err.Error()).Warn("scenario response is not valid JSON, using keyword fallback")
		return Extraction{Scenario: Fallback(req.Prompt), Fallback: true}, nil
	}

	var wire wireScenario
	if err := json.Unmarshal(raw, &wire); err != nil {
		e.logger.WithField("error", err.Error()).Warn("scenario JSON has unexpected shape, using keyword fallback")
		return Extraction{Scenario: Fallback(req.Prompt), Fallback: true}, nil
	}

	s := Scenario{
		Title:           wire.Title,
		Objects:         wire.Objects,
		Transformations: wire.Transformations,
		Equations:       wire.Equations,
	}
	if s.Title == "" {
		s.Title = fallbackTitle(req.Prompt)
	}

	out := Extraction{Scenario: s, Storyboard: indentStoryboard(wire.Storyboard)}
	if out.Storyboard != "" {
		e.logger.Info(fmt.Sprintf("generated storyboard:\n%s", out.Storyboard))
	}
	return out, nil
}

func indentStoryboard(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Fallback maps a prompt to a canned scenario by keyword lookup. It is
// the deterministic floor under the extractor: it always produces
// non-empty objects and transformations.
func Fallback(prompt string) Scenario {
	s := Scenario{
		Title:           fallbackTitle(prompt),
		Objects:         []string{"circle", "text", "coordinate_system"},
		Transformations: []string{"creation", "transformation", "highlight"},
	}

	lower := strings.ToLower(prompt)
	switch {
	case containsAny(lower, "triangle", "pythagorean"):
		s.Objects = []string{"triangle", "square", "text"}
		s.Transformations = []string{"creation", "area_calculation"}
		s.Equations = []string{`a^2 + b^2 = c^2`}
	case containsAny(lower, "calculus", "derivative", "integral"):
		s.Objects = []string{"function_graph", "tangent_line", "area"}
		s.Transformations = []string{"drawing", "zoom", "fill"}
		s.Equations = []string{`f'(x) = \lim_{h \to 0}\frac{f(x+h) - f(x)}{h}`}
	}
	return s
}

func fallbackTitle(prompt string) string {
	p := strings.TrimSpace(prompt)
	if p == "" {
		return "Mathematical Animation"
	}
	r := []rune(p)
	r[0] = unicode.ToUpper(r[0])
	return string(r) + " Visualization"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
