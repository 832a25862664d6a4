package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manimation/manimation/logger"
	"github.com/spf13/afero"
)

const (
	sceneFileName = "scene.py"
	maxStderrTail = 4096
)

// Failure taxonomy. Rendering reports these as plain error values and
// types; nothing panics across this boundary.
var (
	ErrNoEntryPoint = errors.New("no scene class found in the provided code")
	ErrNoOutputDir  = errors.New("renderer produced no media output directory")
	ErrNoArtifact   = errors.New("no video file found after rendering")
)

// LaunchError reports a renderer subprocess that could not start.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string { return fmt.Sprintf("starting renderer: %v", e.Err) }
func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError reports a renderer run that exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("renderer exited with code %d: %s", e.Code, e.Stderr)
}

type runResult struct {
	exitCode int
	stdout   string
	stderr   string
}

// commandRunner executes the render tool; tests stub it.
type commandRunner func(ctx context.Context, dir, name string, args ...string) (runResult, error)

func execRunner(ctx context.Context, dir, name string, args ...string) (runResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "MIKTEX_ADMIN_NO_UPDATE_CHECK=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := runResult{stdout: stdout.String(), stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// A context timeout lands here too: the kill shows up as a
			// non-zero exit with whatever stderr was captured.
			res.exitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, &LaunchError{Err: err}
	}
	return res, nil
}

type Config struct {
	ToolPath  string
	TempDir   string
	OutputDir string
	SceneBase string
	Timeout   time.Duration
	Logger    logger.Logger
}

// Renderer converts generated scene code into published video files,
// never leaking its private workspaces regardless of outcome.
type Renderer struct {
	fs        afero.Fs
	tool      string
	tempDir   string
	outputDir string
	entryRe   *regexp.Regexp
	timeout   time.Duration
	logger    logger.Logger

	run     commandRunner
	latexOK func() bool
}

func NewRenderer(cfg Config) *Renderer {
	if cfg.ToolPath == "" {
		cfg.ToolPath = "manim"
	}
	if cfg.SceneBase == "" {
		cfg.SceneBase = "Scene"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Renderer{
		fs:        afero.NewOsFs(),
		tool:      cfg.ToolPath,
		tempDir:   cfg.TempDir,
		outputDir: cfg.OutputDir,
		entryRe:   regexp.MustCompile(`class\s+(\w+)\s*\(\s*` + regexp.QuoteMeta(cfg.SceneBase) + `\s*\)`),
		timeout:   cfg.Timeout,
		logger:    log,
		run:       execRunner,
		latexOK:   latexAvailable,
	}
}

// EntryPoint returns the name of the first scene class declared in
// code.
func (r *Renderer) EntryPoint(code string) (string, error) {
	m := r.entryRe.FindStringSubmatch(code)
	if m == nil {
		return "", ErrNoEntryPoint
	}
	return m[1], nil
}

// Render preprocesses code, renders it in a private workspace and
// publishes the produced video into the output directory. The
// workspace lives exactly as long as this call: it is removed on every
// exit path.
func (r *Renderer) Render(ctx context.Context, code string, quality Quality) (string, error) {
	processed := Preprocess(code, r.latexOK())

	entry, err := r.EntryPoint(processed)
	if err != nil {
		return "", err
	}

	renderID := uuid.New().String()[:8]
	workspace := filepath.Join(r.tempDir, renderID)
	if err := r.fs.MkdirAll(workspace, 0755); err != nil {
		return "", fmt.Errorf("error creating render workspace: %w", err)
	}
	defer func() {
		if err := r.fs.RemoveAll(workspace); err != nil {
			r.logger.WithField("workspace", workspace).Warn("failed to remove render workspace")
		}
	}()

	scriptPath := filepath.Join(workspace, sceneFileName)
	if err := afero.WriteFile(r.fs, scriptPath, []byte(processed), 0644); err != nil {
		return "", fmt.Errorf("error writing scene script: %w", err)
	}

	profile := quality.profile()
	artifactName := renderID + ".mp4"

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{profile.flag, "-o", artifactName, scriptPath, entry}
	r.logger.WithField("command", r.tool+" "+strings.Join(args, " ")).Info("rendering animation")

	res, err := r.run(ctx, workspace, r.tool, args...)
	if err != nil {
		return "", err
	}
	if res.exitCode != 0 {
		return "", &ExitError{Code: res.exitCode, Stderr: tail(res.stderr, maxStderrTail)}
	}

	located, err := r.locateArtifact(workspace, entry, profile.dir, artifactName)
	if err != nil {
		return "", err
	}
	r.logger.WithField("video", located).Info("located rendered video")

	return r.publish(located)
}

// locateArtifact finds the video the tool produced. Output layout
// varies by tool version, so the search is layered: the direct -o
// target, then the plausible media directories, then a full workspace
// walk.
func (r *Renderer) locateArtifact(workspace, entry, qualityDir, artifactName string) (string, error) {
	direct := filepath.Join(workspace, artifactName)
	if ok, _ := afero.Exists(r.fs, direct); ok {
		return direct, nil
	}

	scriptBase := strings.TrimSuffix(sceneFileName, ".py")
	candidates := []string{
		filepath.Join(workspace, "media", "videos", scriptBase, qualityDir),
		filepath.Join(workspace, "media", "videos", entry, qualityDir),
		filepath.Join(workspace, "media", "videos", qualityDir),
		filepath.Join(workspace, "videos", qualityDir),
		filepath.Join(workspace, "media"),
	}
	for _, dir := range candidates {
		if video := r.newestVideo(dir); video != "" {
			return video, nil
		}
	}

	if video := r.walkForVideo(workspace); video != "" {
		return video, nil
	}

	if ok, _ := afero.DirExists(r.fs, filepath.Join(workspace, "media")); !ok {
		return "", ErrNoOutputDir
	}
	return "", ErrNoArtifact
}

func (r *Renderer) newestVideo(dir string) string {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return ""
	}

	var newest string
	var newestMod time.Time
	for _, info := range entries {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".mp4") {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, info.Name())
			newestMod = info.ModTime()
		}
	}
	return newest
}

var errVideoFound = errors.New("video found")

func (r *Renderer) walkForVideo(root string) string {
	var found string
	afero.Walk(r.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".mp4") {
			found = path
			return errVideoFound
		}
		return nil
	})
	return found
}

// publish copies (never moves) the located video into the output
// directory. Copying keeps the workspace self-contained so cleanup can
// be unconditional.
func (r *Renderer) publish(source string) (string, error) {
	if err := r.fs.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}

	name := fmt.Sprintf("animation_%d_%s.mp4", time.Now().Unix(), uuid.New().String()[:8])
	dest := filepath.Join(r.outputDir, name)

	src, err := r.fs.Open(source)
	if err != nil {
		return "", fmt.Errorf("error reading rendered video: %w", err)
	}
	defer src.Close()

	dst, err := r.fs.Create(dest)
	if err != nil {
		return "", fmt.Errorf("error publishing video: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("error publishing video: %w", err)
	}

	r.logger.WithField("video", dest).Info("published rendered video")
	return dest, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
