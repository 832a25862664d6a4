package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/manimation/manimation/scenario"
)

const defaultPrompt = "Mathematical animation"

// Interaction is one recorded generate exchange.
type Interaction struct {
	Prompt    string
	Scenario  *scenario.Scenario
	Code      string
	VideoPath string
	Timestamp time.Time
}

// Conversation tracks a single process-lifetime session: an
// append-only history plus pointers to the most recent scenario and
// code. Safe for concurrent use.
type Conversation struct {
	mu       sync.Mutex
	history  []Interaction
	scenario *scenario.Scenario
	code     string
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Record appends an interaction to the history and moves the current
// scenario and code pointers to it.
func (c *Conversation) Record(prompt string, sc *scenario.Scenario, code, videoPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, Interaction{
		Prompt:    prompt,
		Scenario:  sc,
		Code:      code,
		VideoPath: videoPath,
		Timestamp: time.Now(),
	})
	c.scenario = sc
	c.code = code
}

// UpdateCode replaces the tracked code after a refinement. It is a
// no-op until an interaction has been recorded.
func (c *Conversation) UpdateCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scenario == nil {
		return
	}
	c.code = code
}

func (c *Conversation) CurrentScenario() *scenario.Scenario {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scenario
}

func (c *Conversation) CurrentCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// LastPrompt returns the most recent prompt, or a generic default when
// nothing has been recorded yet.
func (c *Conversation) LastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return defaultPrompt
	}
	return c.history[len(c.history)-1].Prompt
}

// RefinementContext renders the most recent prompt and, when a
// scenario is tracked, its title into a short blob for refinement
// prompts. Empty when the history is empty.
func (c *Conversation) RefinementContext() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return ""
	}
	last := c.history[len(c.history)-1]
	var b strings.Builder
	fmt.Fprintf(&b, "Previous prompt: %s\n", last.Prompt)
	if c.scenario != nil {
		fmt.Fprintf(&b, "Current animation title: %s\n", c.scenario.Title)
	}
	return b.String()
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}
