package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	raw, err := ExtractJSONObject(`{"title": "Circle Motion"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Circle Motion"}`, string(raw))

	raw, err = ExtractJSONObject("Here is the scenario you asked for:\n{\"title\": \"Waves\", \"elements\": [\"sine\"]}\nLet me know if you need changes.")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Waves", "elements": ["sine"]}`, string(raw))

	raw, err = ExtractJSONObject("```json\n{\"outer\": {\"inner\": 2}}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"outer": {"inner": 2}}`, string(raw))
}

func TestExtractJSONObject_Malformed(t *testing.T) {
	_, err := ExtractJSONObject("the model refused to produce JSON")
	require.Error(t, err)
	var malformed *MalformedResponseError
	assert.True(t, errors.As(err, &malformed))

	_, err = ExtractJSONObject("{this is not json}")
	require.Error(t, err)
	assert.True(t, errors.As(err, &malformed))
	assert.Equal(t, "{this is not json}", malformed.Raw)
}

func TestStripCodeFence(t *testing.T) {
	code := "from manim import *\n\nclass ManimScene(Scene):\n    pass"

	assert.Equal(t, code, StripCodeFence("```python\n"+code+"\n```"))
	assert.Equal(t, code, StripCodeFence("```\n"+code+"\n```"))
	assert.Equal(t, code, StripCodeFence(code))
	assert.Equal(t, code, StripCodeFence("\n  ```python\n"+code+"\n```  \n"))
}

func TestSegmentIssues(t *testing.T) {
	review := `The code has a few problems worth fixing.

1. Missing import for numpy
   which the array call on line 4 needs
2. The scene class name is wrong
Error: unexpected indent on line 12
Line 15 references an undefined variable`

	issues := SegmentIssues(review)
	require.Len(t, issues, 4)
	assert.Equal(t, "1. Missing import for numpy which the array call on line 4 needs", issues[0])
	assert.Equal(t, "2. The scene class name is wrong", issues[1])
	assert.Equal(t, "Error: unexpected indent on line 12", issues[2])
	assert.Equal(t, "Line 15 references an undefined variable", issues[3])
}

func TestSegmentIssues_NoMarkers(t *testing.T) {
	assert.Empty(t, SegmentIssues("Everything looks fine here.\nNo changes needed."))
	assert.Empty(t, SegmentIssues(""))
}

func TestParseReviewNotes(t *testing.T) {
	review := `Here is my review of the layout:

- The title position is too close to the top edge
- Circle and square overlap in the center
- You should add more spacing between steps
* Could use explicit coordinates for the label
This line has no bullet and is ignored`

	notes := ParseReviewNotes(review)

	assert.Equal(t, []string{
		"The title position is too close to the top edge",
		"Circle and square overlap in the center",
		"Could use explicit coordinates for the label",
	}, notes.Positioning)
	assert.Equal(t, []string{
		"Circle and square overlap in the center",
	}, notes.Overlaps)
	assert.Equal(t, []string{
		"You should add more spacing between steps",
		"Could use explicit coordinates for the label",
	}, notes.Suggestions)
}

func TestParseReviewNotes_MultiBucket(t *testing.T) {
	notes := ParseReviewNotes("1. Elements overlap, so you should reposition them")

	require.Len(t, notes.Positioning, 1)
	require.Len(t, notes.Overlaps, 1)
	require.Len(t, notes.Suggestions, 1)
	assert.Equal(t, notes.Positioning[0], notes.Overlaps[0])
}
