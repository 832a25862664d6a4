package core

import (
	"fmt"
	"strings"

	"github.com/manimation/manimation/render"
)

// Complexity selects how sophisticated the generated animation should
// be.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// ParseComplexity validates a complexity name. The empty string
// selects the medium default; anything else unrecognized is rejected.
func ParseComplexity(s string) (Complexity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ComplexityMedium, nil
	case "simple":
		return ComplexitySimple, nil
	case "medium":
		return ComplexityMedium, nil
	case "complex":
		return ComplexityComplex, nil
	}
	return "", fmt.Errorf("unknown complexity %q (want simple, medium or complex)", s)
}

// Request indicates the user's request for a new animation.
type Request struct {
	Prompt     string
	Complexity Complexity
	Quality    render.Quality
	Provider   string
	Model      string
}

// DefaultRequest returns a Request with default values.
func DefaultRequest() *Request {
	return &Request{
		Complexity: ComplexityMedium,
		Quality:    render.QualityMedium,
	}
}

// NewRequest validates the raw boundary values and builds a Request.
func NewRequest(prompt, complexity, quality string) (*Request, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, &UserError{Message: "describe the animation you want to generate"}
	}
	c, err := ParseComplexity(complexity)
	if err != nil {
		return nil, &UserError{Message: err.Error(), Err: err}
	}
	q, err := render.ParseQuality(quality)
	if err != nil {
		return nil, &UserError{Message: err.Error(), Err: err}
	}
	return &Request{
		Prompt:     strings.TrimSpace(prompt),
		Complexity: c,
		Quality:    q,
	}, nil
}
