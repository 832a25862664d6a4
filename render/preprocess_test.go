package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess_PadsTwoArgColors(t *testing.T) {
	assert.Equal(t, "c = RGB(0.5, 0.3, 0)", Preprocess("c = RGB(0.5, 0.3)", true))
	assert.Equal(t, "c = RGB(r, g, 0)", Preprocess("c = RGB( r , g )", true))

	// Already three components, left alone.
	assert.Equal(t, "c = RGB(1, 2, 3)", Preprocess("c = RGB(1, 2, 3)", true))
}

func TestPreprocess_PadsTwoElementArrays(t *testing.T) {
	assert.Equal(t, "p = np.array([1, 2, 0])", Preprocess("p = np.array([1, 2])", true))
	assert.Equal(t, "p = np.array([x, y, 0])", Preprocess("p = np.array([ x , y ])", true))

	assert.Equal(t, "p = np.array([1, 2, 0])", Preprocess("p = np.array([1, 2, 0])", true))
	assert.Equal(t, "m = np.array([[1, 2], [3, 4]])", Preprocess("m = np.array([[1, 2], [3, 4]])", true))
}

func TestPreprocess_LatexFallback(t *testing.T) {
	code := `eq = MathTex(r"a^2 + b^2 = c^2")
label = Tex(r"hypotenuse")`

	withLatex := Preprocess(code, true)
	assert.Equal(t, code, withLatex)

	withoutLatex := Preprocess(code, false)
	assert.Contains(t, withoutLatex, `eq = Text("a^2 + b^2 = c^2")`)
	assert.Contains(t, withoutLatex, `label = Text("hypotenuse")`)
	assert.NotContains(t, withoutLatex, "MathText")
}

func TestPreprocess_Idempotent(t *testing.T) {
	code := `from manim import *

class ManimScene(Scene):
    def construct(self):
        c = RGB(0.1, 0.9)
        p = np.array([3, 4])
        eq = MathTex(r"x^2")
        self.wait(1)`

	for _, latexOK := range []bool{true, false} {
		once := Preprocess(code, latexOK)
		twice := Preprocess(once, latexOK)
		assert.Equal(t, once, twice)
	}
}
