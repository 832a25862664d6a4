package codegen

import (
	"fmt"
	"strings"

	"github.com/manimation/manimation/scenario"
)

const manimCodeSystemPrompt = `You are an expert in creating mathematical and physics visualizations using Manim (Mathematical Animation Engine).
Your task is to convert a text prompt into valid, executable Manim Python code.

IMPORTANT RULES FOR COMPILATION SUCCESS:
1. Only return valid Python code that works with the latest version of Manim Community edition
2. Do NOT include any explanations outside of code comments
3. Use ONLY the Scene class as the base class
4. Include ALL necessary imports at the top (from manim import *)
5. Use descriptive variable names that follow Python conventions
6. Include helpful comments for complex parts of the visualization
7. The class name MUST be "ManimScene" - always use this exact name
8. Always implement the construct method correctly
9. Ensure all objects are properly added to the scene with self.play() or self.add()
10. Do not create custom classes other than the main Scene class
11. Include proper self.wait() calls after animations for better viewing
12. Check all mathematical expressions are valid LaTeX syntax
13. Avoid advanced or experimental Manim features that might not be widely available
14. Keep animations under 20 seconds total for better performance
15. Ensure all coordinates and dimensions are appropriate for the default canvas size

VISUAL STRUCTURE AND LAYOUT:
1. Structure the animation as a narrative with clear sections (introduction, explanation, conclusion)
2. Position ALL elements with EXPLICIT coordinates using shift() or move_to() methods
3. Ensure AT LEAST 1.0 units of space between separate visual elements
4. Keep no more than 3-4 elements on screen at the same time
5. Fade out finished elements with FadeOut before introducing the next section
6. Group related objects using VGroup and arrange them with arrange() method
7. For graphs, set explicit x_range and y_range with generous padding around functions
8. Use colors consistently and meaningfully (BLUE for emphasis, RED for important points)

ANIMATION TECHNIQUES:
1. Use FadeIn for introductions of new elements
2. Use Create for drawing geometric objects
3. Apply Transform or ReplacementTransform when evolving equations
4. Highlight important parts with Indicate or Circumscribe
5. Add pauses (self.wait()) after important points for comprehension

REQUIRED CODE FORMAT:
` + "```python" + `
from manim import *

class ManimScene(Scene):
    def construct(self):
        # Your animation code here
        # ...
        # Final wait
        self.wait(1)
` + "```" + `

RESPOND WITH ONLY THE EXECUTABLE PYTHON CODE, NO INTRODUCTION OR EXPLANATION.`

const simpleComplexityPrompt = `Create simple, beginner-friendly Manim code with minimal elements. Focus on:
- Basic shapes and transformations
- Clear, readable labels
- Simple animations with few elements
- Step-by-step visualization of the concept
- No more than 2-3 different objects on screen
- Linear progression of concepts`

const mediumComplexityPrompt = `Create balanced Manim code that is both clear and somewhat detailed. Include:
- Multiple related shapes and transformations
- Clear mathematical labeling
- Moderate level of animation complexity
- Both visualization and mathematical notation
- Appropriate use of color and positioning
- A logical flow that builds understanding`

const complexComplexityPrompt = `Create sophisticated Manim animations with detailed mathematical elements. Include:
- Multiple related mathematical objects and their interactions
- Precise mathematical notation and labeling
- Advanced transformations and animations
- Detailed visualization of the mathematical concept
- Professional use of color, positioning and timing
- Build from simple to complex understanding`

func getManimSystemPrompt(complexity string) string {
	switch complexity {
	case "simple":
		return manimCodeSystemPrompt + "\n\n" + simpleComplexityPrompt
	case "complex":
		return manimCodeSystemPrompt + "\n\n" + complexComplexityPrompt
	default:
		return manimCodeSystemPrompt + "\n\n" + mediumComplexityPrompt
	}
}

func getGenerateUserPrompt(description string, s scenario.Scenario, complexity, storyboard string) string {
	equations := "No equations"
	if len(s.Equations) > 0 {
		equations = strings.Join(s.Equations, ", ")
	}

	prompt := fmt.Sprintf("Create a comprehensive Manim animation for '%s' that teaches this concept: '%s'. \n\n"+
		"Use these mathematical objects: %s. \nImplement these transformations/animations: %s. \nFeature these equations: %s. \n\n"+
		"Complexity level: %s. \n\n"+
		"Ensure all elements are properly spaced and positioned to prevent overlap. "+
		"Structure the animation with a clear introduction, step-by-step explanation, and conclusion.",
		s.Title, description, strings.Join(s.Objects, ", "), strings.Join(s.Transformations, ", "), equations, complexity)

	if storyboard != "" {
		prompt += fmt.Sprintf("\n\nFollow this narrative structure in your animation:\n%s", storyboard)
	}
	return prompt
}

func getRefineSystemPrompt() string {
	return `You are a Manim code expert. Your task is to refine animation code based on user feedback.
Keep the overall structure and purpose of the animation, but implement the changes requested.
Make sure the code remains valid and follows Manim best practices.

IMPORTANT REQUIREMENTS:
1. Only return the complete, corrected Manim code
2. Ensure class name and structure remains consistent
3. All changes must be compatible with Manim Community edition
4. Do not explain your changes in comments outside of helpful inline comments`
}

func getRefineUserPrompt(code, context, feedback string) string {
	return fmt.Sprintf("Here is the current Manim animation code:\n\n```python\n%s\n```\n\n%s\nPlease refine this code based on this feedback: \"%s\"\n\nReturn only the improved code.",
		code, context, feedback)
}

func getLayoutAnalysisSystemPrompt() string {
	return `Analyze Manim code for layout issues and element positioning. Look for:
1. Overlapping elements or text
2. Elements positioned too close to each other
3. Elements positioned off-screen or at extreme edges
4. Poor use of screen space
5. Too many elements appearing simultaneously
6. Lack of clear positioning commands

Respond with a JSON object containing:
- issues: List of detected layout issues
- suggestions: List of positioning improvements
- animation_flow: List of animation sequence improvements
- spacing: Suggested minimum spacing between elements
- regions: Suggested screen regions to use for key elements`
}

func getLayoutAnalysisUserPrompt(code, description, complexity string) string {
	return fmt.Sprintf("Analyze this Manim code for layout issues:\n\n```python\n%s\n```\n\nPrompt: %s, Complexity: %s",
		code, description, complexity)
}

func getLayoutOptimizeSystemPrompt() string {
	return `Optimize the layout and animation flow in Manim code. Follow these rules:
1. Explicitly position ALL elements with coordinates (e.g., .move_to(), .shift(), .to_edge())
2. Ensure minimum spacing (1.0 units) between all elements
3. Use screen regions effectively (UP, DOWN, LEFT, RIGHT, UL, UR, DL, DR)
4. Group related elements using VGroup and arrange them logically
5. Break complex animations into steps with self.wait() between them
6. Use sequential animations for clarity (one concept at a time)
7. Use consistent positioning and transitions throughout the animation
8. Add comments explaining positioning choices

Preserve all mathematical content and educational purpose of the animation.
Only make changes to improve layout, positioning, and animation flow.`
}

func getLayoutOptimizeUserPrompt(code, analysis, description, complexity string) string {
	return fmt.Sprintf("Original code:\n\n```python\n%s\n```\n\nOptimize the layout based on this analysis:\n%s\n\nPrompt: %s, Complexity: %s\n\nReturn the optimized code that fixes all layout issues.",
		code, analysis, description, complexity)
}

func getSyntaxReviewSystemPrompt() string {
	return `Analyze this Manim code for syntax errors and logical mistakes. Look for:

1. Python syntax errors (missing colons, parentheses, indentation problems)
2. Manim-specific errors (incorrect class usage, invalid animation methods)
3. Undefined variables or objects that are used before definition
4. Incorrect parameter types or values
5. Missing imports or misused Manim classes
6. LaTeX syntax errors in MathTex objects
7. Animation errors (using wrong objects in animations, incorrect method calls)

For each error found, provide:
1. The line number or code region with the error
2. A description of what's wrong
3. A suggested fix

Be thorough but only focus on actual errors, not style issues.`
}

func getSyntaxReviewUserPrompt(code, description, complexity string) string {
	return fmt.Sprintf("Check this Manim code for syntax errors:\n\n```python\n%s\n```\n\nPrompt: %s, Complexity: %s",
		code, description, complexity)
}

func getPositioningReviewSystemPrompt() string {
	return `Analyze this Manim code specifically for positioning and spacing issues. Look for:

1. Objects without explicit position commands (move_to, shift, to_edge, etc.)
2. Elements that might overlap based on their coordinates
3. Text or equations positioned too close to each other
4. Elements positioned too close to the edge of the screen
5. Improper grouping of related elements
6. Elements with undefined positioning that might appear at origin (0,0)
7. Animations where multiple elements move to the same location

Analyze the coordinates and create a mental map of where objects are positioned.
Flag any positions where elements might overlap or be too close (less than 1.0 units apart).

Respond with a JSON object containing:
- positioning_issues: List of positioning problems found
- overlap_issues: List of specific coordinates or elements that might overlap
- suggestions: Specific suggestions to improve positioning`
}

func getPositioningReviewUserPrompt(code, description, complexity string) string {
	return fmt.Sprintf("Analyze this Manim code for positioning and spacing issues:\n\n```python\n%s\n```\n\nPrompt: %s, Complexity: %s",
		code, description, complexity)
}

func getFixSystemPrompt() string {
	return `Fix the provided Manim code by addressing all identified issues. Follow these guidelines:

1. Fix all syntax errors and logical mistakes first
2. Fix positioning issues by adding explicit positioning commands
3. Resolve element overlaps by repositioning elements with adequate spacing
4. Implement all positioning suggestions to improve clarity
5. Maintain the original educational intent and mathematical content
6. Ensure all animations follow a logical step-by-step flow
7. Add comments explaining your fixes for complex changes

Return the complete, corrected code ready for rendering.`
}

func getFixUserPrompt(code string, ev Evaluation, description, complexity string) string {
	var issues strings.Builder
	if len(ev.PositioningIssues) > 0 {
		issues.WriteString("\nPositioning Issues:\n" + bulletList(ev.PositioningIssues))
	}
	if len(ev.OverlapIssues) > 0 {
		issues.WriteString("\nOverlap Issues:\n" + bulletList(ev.OverlapIssues))
	}
	if len(ev.Suggestions) > 0 {
		issues.WriteString("\nSuggestions:\n" + bulletList(ev.Suggestions))
	}

	return fmt.Sprintf("Fix the following Manim code by addressing these issues:\n\n"+
		"Syntax Errors:\n%s\n\n"+
		"Positioning Issues:%s\n\n"+
		"Original Code:\n```python\n%s\n```\n\n"+
		"Original Prompt: %s, Complexity: %s\n\n"+
		"Return the complete fixed code.",
		bulletList(ev.SyntaxErrors), issues.String(), code, description, complexity)
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}
