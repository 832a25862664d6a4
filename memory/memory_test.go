package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/manimation/manimation/scenario"
	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	c := NewConversation()

	first := &scenario.Scenario{Title: "Circle Basics"}
	second := &scenario.Scenario{Title: "Sine Waves"}

	c.Record("draw a circle", first, "code one", "/videos/a.mp4")
	c.Record("explain sine waves", second, "code two", "/videos/b.mp4")

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "explain sine waves", c.LastPrompt())
	assert.Equal(t, "code two", c.CurrentCode())
	assert.Same(t, second, c.CurrentScenario())
}

func TestLastPrompt_DefaultWhenEmpty(t *testing.T) {
	c := NewConversation()
	assert.Equal(t, "Mathematical animation", c.LastPrompt())
}

func TestRefinementContext(t *testing.T) {
	c := NewConversation()
	assert.Equal(t, "", c.RefinementContext())

	c.Record("explain sine waves", &scenario.Scenario{Title: "Sine Waves"}, "code", "/videos/a.mp4")
	assert.Equal(t, "Previous prompt: explain sine waves\nCurrent animation title: Sine Waves\n", c.RefinementContext())
}

func TestRefinementContext_NoScenario(t *testing.T) {
	c := NewConversation()
	c.Record("render this file", nil, "code", "/videos/a.mp4")

	assert.Equal(t, "Previous prompt: render this file\n", c.RefinementContext())
}

func TestUpdateCode(t *testing.T) {
	c := NewConversation()

	// Nothing recorded yet, nothing to update.
	c.UpdateCode("orphan code")
	assert.Equal(t, "", c.CurrentCode())

	c.Record("draw a circle", &scenario.Scenario{Title: "Circle"}, "original", "/videos/a.mp4")
	c.UpdateCode("refined")

	assert.Equal(t, "refined", c.CurrentCode())
	assert.Equal(t, 1, c.Len(), "refinement should not grow the history")
}

func TestRecord_Concurrent(t *testing.T) {
	c := NewConversation()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Record(fmt.Sprintf("prompt %d", n), nil, "code", "")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, c.Len())
}
