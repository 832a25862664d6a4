package codegen

import (
	"fmt"
	"strings"
)

// FormatEvaluation renders an evaluation as a markdown report.
func FormatEvaluation(ev Evaluation) string {
	var b strings.Builder
	b.WriteString("## Code Evaluation Results\n\n")

	if !ev.HasErrors {
		b.WriteString("✅ No errors or positioning issues detected. Code looks good!\n\n")
		return b.String()
	}

	writeSection(&b, "Syntax Errors", ev.SyntaxErrors)
	writeSection(&b, "Positioning Issues", ev.PositioningIssues)
	writeSection(&b, "Potential Element Overlaps", ev.OverlapIssues)
	writeSection(&b, "Suggestions for Improvement", ev.Suggestions)

	if ev.FixedCode != "" {
		b.WriteString("✅ These issues have been automatically fixed in the updated code.\n")
	} else {
		b.WriteString("❌ Could not automatically fix all issues. Please review the code manually.\n")
	}
	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("### " + title + "\n\n")
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
	b.WriteString("\n")
}
