package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/manimation/manimation/scenario"
)

type storyboardSection struct {
	SectionName string   `json:"section_name"`
	TimeRange   string   `json:"time_range"`
	Narration   string   `json:"narration"`
	Visuals     string   `json:"visuals"`
	Animations  []string `json:"animations"`
	KeyPoints   []string `json:"key_points"`
}

func parseStoryboard(raw string) []storyboardSection {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var sections []storyboardSection
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		return nil
	}
	return sections
}

// FormatSummary renders a scenario, its storyboard and the generated
// code as a markdown report.
func FormatSummary(sc *scenario.Scenario, storyboard, code string) string {
	if sc == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Animation Scenario\n\n")
	fmt.Fprintf(&b, "**Title:** %s\n\n", sc.Title)

	if sections := parseStoryboard(storyboard); len(sections) > 0 {
		b.WriteString("## Animation Storyboard\n\n")
		for i, section := range sections {
			name := section.SectionName
			if name == "" {
				name = "Section"
			}
			timeRange := section.TimeRange
			if timeRange == "" {
				timeRange = "N/A"
			}
			fmt.Fprintf(&b, "### %d. %s\n", i+1, name)
			fmt.Fprintf(&b, "**Time:** %s\n\n", timeRange)
			fmt.Fprintf(&b, "**Narration:** %s\n\n", section.Narration)
			fmt.Fprintf(&b, "**Visuals:** %s\n\n", section.Visuals)
			fmt.Fprintf(&b, "**Animations:** %s\n\n", strings.Join(section.Animations, ", "))
			if len(section.KeyPoints) > 0 {
				b.WriteString("**Key Points:**\n")
				for _, point := range section.KeyPoints {
					fmt.Fprintf(&b, "- %s\n", point)
				}
			}
			b.WriteString("---\n\n")
		}
	}

	b.WriteString("**Mathematical Objects:**\n")
	for _, obj := range sc.Objects {
		fmt.Fprintf(&b, "- %s\n", obj)
	}

	b.WriteString("\n**Transformations:**\n")
	for _, transformation := range sc.Transformations {
		fmt.Fprintf(&b, "- %s\n", transformation)
	}

	if len(sc.Equations) > 0 {
		b.WriteString("\n**Equations:**\n")
		for _, eq := range sc.Equations {
			fmt.Fprintf(&b, "- %s\n", eq)
		}
	}

	fmt.Fprintf(&b, "\n## Generated Manim Code\n\n```python\n%s\n```", code)

	return b.String()
}
