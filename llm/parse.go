package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ExtractJSONObject pulls the JSON object out of a model reply that may
// be wrapped in prose or fences. Greedy slice from the first "{" to the
// last "}"; anything that does not parse is malformed.
func ExtractJSONObject(s string) ([]byte, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return nil, &MalformedResponseError{Reason: "no JSON object in response", Raw: s}
	}
	raw := []byte(s[start : end+1])
	if !json.Valid(raw) {
		return nil, &MalformedResponseError{Reason: "response JSON does not parse", Raw: s}
	}
	return raw, nil
}

// StripCodeFence removes a leading markdown fence (with or without a
// language tag) and the trailing fence.
func StripCodeFence(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```") {
		if idx := strings.Index(out, "\n"); idx != -1 {
			out = out[idx+1:]
		} else {
			out = strings.TrimPrefix(out, "```")
		}
	}
	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

var (
	issueMarkers = []string{"Error", "Issue", "Problem", "Bug", "Line"}
	numberedLine = regexp.MustCompile(`^\d+\.\s`)
	bulletLine   = regexp.MustCompile(`^(-\s|\*\s|\d+\.\s)`)
)

// SegmentIssues splits a free-text review into individual issues. A
// line opens a new issue when it starts with a marker token or a
// numbered-list prefix; other lines continue the open issue. Text
// before the first marker is discarded.
func SegmentIssues(text string) []string {
	var issues []string
	current := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if startsNewIssue(trimmed) {
			if current != "" {
				issues = append(issues, current)
			}
			current = trimmed
		} else if current != "" {
			current += " " + trimmed
		}
	}
	if current != "" {
		issues = append(issues, current)
	}
	return issues
}

func startsNewIssue(line string) bool {
	for _, marker := range issueMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return numberedLine.MatchString(line)
}

// ReviewNotes buckets the bullet points of a positioning review.
type ReviewNotes struct {
	Positioning []string
	Overlaps    []string
	Suggestions []string
}

// ParseReviewNotes scans bullet and numbered lines, routing each to the
// buckets its keywords match. A line can land in more than one bucket.
func ParseReviewNotes(text string) ReviewNotes {
	var notes ReviewNotes
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		loc := bulletLine.FindStringIndex(trimmed)
		if loc == nil {
			continue
		}
		item := strings.TrimSpace(trimmed[loc[1]:])
		if item == "" {
			continue
		}
		lower := strings.ToLower(item)
		if strings.Contains(lower, "position") || strings.Contains(lower, "coordinate") || strings.Contains(lower, "overlap") {
			notes.Positioning = append(notes.Positioning, item)
		}
		if strings.Contains(lower, "overlap") {
			notes.Overlaps = append(notes.Overlaps, item)
		}
		if strings.Contains(lower, "suggest") || strings.Contains(lower, "should") || strings.Contains(lower, "could") {
			notes.Suggestions = append(notes.Suggestions, item)
		}
	}
	return notes
}
