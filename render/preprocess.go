package render

import (
	"context"
	"os/exec"
	"regexp"
	"sync"
	"time"
)

var (
	// Argument arms exclude commas and parens so the rewritten 3-arg
	// forms never match again.
	rgbTwoArgRe    = regexp.MustCompile(`RGB\s*\(\s*([^,()]+?)\s*,\s*([^,()]+?)\s*\)`)
	arrayTwoElemRe = regexp.MustCompile(`np\.array\(\[\s*([^,\[\]]+?)\s*,\s*([^,\[\]]+?)\s*\]\)`)

	// \b keeps the Tex pattern from matching the tail of MathTex.
	mathTexRe = regexp.MustCompile(`MathTex\(r"([^"]+)"\)`)
	texRe     = regexp.MustCompile(`\bTex\(r"([^"]+)"\)`)
)

// Preprocess applies the known textual repairs to generated scene
// code: pads 2-argument color constructors and 2-element array
// literals to three components, and rewrites LaTeX constructs to plain
// Text when no LaTeX toolchain is available. It is pure and
// idempotent.
func Preprocess(code string, latexOK bool) string {
	code = rgbTwoArgRe.ReplaceAllString(code, "RGB($1, $2, 0)")
	code = arrayTwoElemRe.ReplaceAllString(code, "np.array([$1, $2, 0])")
	if !latexOK {
		code = mathTexRe.ReplaceAllString(code, `Text("$1")`)
		code = texRe.ReplaceAllString(code, `Text("$1")`)
	}
	return code
}

var latexProbe struct {
	once      sync.Once
	available bool
}

// latexAvailable probes for a working latex binary once per process.
// Absence is never fatal, it only switches the preprocessing branch.
func latexAvailable() bool {
	latexProbe.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		latexProbe.available = exec.CommandContext(ctx, "latex", "--version").Run() == nil
	})
	return latexProbe.available
}
