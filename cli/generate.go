package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/list"
	"github.com/manimation/manimation/core"
	"github.com/manimation/manimation/logger"
	"github.com/manimation/manimation/render"
)

type state int

const (
	Input state = iota
	Initializing
	Processing
	Questions
	Finished
)

type genFlags struct {
	quality    string
	complexity string
	provider   string
	model      string
	config     string
}

// resultMsg delivers the finished animation to the UI loop.
type resultMsg *core.Result

type generateCmdModel struct {
	textInput       textinput.Model
	spinner         spinner.Model
	state           state
	request         *core.Request
	currentQuestion int
	completedSteps  []core.StepType
	engine          *Engine
	engineCtx       context.Context
	engineCancel    context.CancelFunc
	answers         []string
	publisher       *CliStepPublisher
	logger          logger.Logger
	result          *core.Result
	doneSeen        bool
}

func newGenerateModel(f genFlags) (generateCmdModel, error) {
	ti := textinput.New()
	ti.Placeholder = "Describe the animation..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 80

	logger.InitLogger()
	log := logger.GetLogger()
	log.Debug("Initializing Manimation CLI")
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("202"))

	app, err := buildApp(f.config, log)
	if err != nil {
		return generateCmdModel{}, err
	}

	req := core.DefaultRequest()
	quality := f.quality
	if quality == "" {
		quality = app.cfg.Quality
	}
	if req.Quality, err = render.ParseQuality(quality); err != nil {
		return generateCmdModel{}, err
	}
	complexity := f.complexity
	if complexity == "" {
		complexity = app.cfg.Complexity
	}
	if req.Complexity, err = core.ParseComplexity(complexity); err != nil {
		return generateCmdModel{}, err
	}
	req.Provider = f.provider
	req.Model = f.model
	if req.Model == "" {
		req.Model = app.cfg.DefaultModel
	}

	publisher := NewCliStepPublisher(log)
	engine, err := NewAnimationEngine(app.service, publisher, log, 1)
	if err != nil {
		return generateCmdModel{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := generateCmdModel{
		textInput:       ti,
		spinner:         s,
		state:           Input,
		logger:          log,
		request:         req,
		engine:          engine,
		engineCtx:       ctx,
		engineCancel:    cancel,
		publisher:       publisher,
		currentQuestion: 0,
	}
	engine.Start(ctx)
	return m, nil
}

func (m generateCmdModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m generateCmdModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Check for Finished or Initializing states
	switch m.state {
	case Finished:
		return m, tea.Quit
	case Initializing:
		m.state = Processing
		return m, tea.Batch(m.spinner.Tick, m.handleAnimationGeneration())
	}

	// Read the message and update the model
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m, cmd := m.handleKeyPress(msg)
		if cmd != nil {
			return m, cmd
		}
	case core.StepType:
		return m.handleStep(msg)
	case resultMsg:
		return m.handleResult(msg)
	case error:
		return m, tea.Sequence(tea.Printf("Error: %s", msg), tea.Quit)
	default:
		if m.state == Processing {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	// Update the text input
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m generateCmdModel) View() string {
	switch m.state {
	case Input:
		return fmt.Sprintf(
			"%s\n\n%s",
			m.textInput.View(),
			"(press enter to generate the animation or esc to quit)",
		)
	case Initializing:
		return fmt.Sprintf("%s Initializing", m.spinner.View())
	case Processing:
		steps := []struct {
			present string
			past    string
		}{
			{"Extracting animation scenario.", "Extracted animation scenario."},
			{"Generating Manim code.", "Generated Manim code."},
			{"Optimizing element layout.", "Optimized element layout."},
			{"Rendering animation video.", "Rendered animation video."},
			{"Recording interaction.", "Recorded interaction."},
			{"Done.", "Done."},
		}

		enumerator := func(l list.Items, i int) string {
			var e string
			if i < len(m.completedSteps) {
				checkStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
				check := checkStyle.Render("✓")
				e = check
			} else if i == len(m.completedSteps) {
				e = m.spinner.View()
			}
			return e
		}

		l := list.New().Enumerator(enumerator)
		for i, step := range steps {
			if i < len(m.completedSteps) {
				l.Item(step.past)
			} else if i == len(m.completedSteps) {
				l.Item(step.present)
			}
		}
		return fmt.Sprint(l)
	case Questions:
		questions := []string{
			"Video quality? (low/medium/high)",
			"Animation complexity? (simple/medium/complex)",
		}
		var output strings.Builder
		for i, q := range questions {
			if i < m.currentQuestion {
				output.WriteString(fmt.Sprintf("%s (%s)\n", q, m.answers[i]))
			} else if i == m.currentQuestion {
				output.WriteString(fmt.Sprintf("%s: \n%s", q, m.textInput.View()))
			}
		}
		output.WriteString("\n(Press enter to keep the default, 'b' to go back, or 'esc' to quit)")
		return output.String()
	case Finished:
		return "Animation generated successfully!"
	default:
		m.logger.Error("An error occurred")
		return "An error occurred."
	}
}

func (m *generateCmdModel) Shutdown() {
	m.engineCancel()                   // Cancel the engine context
	m.engine.Shutdown(5 * time.Second) // Give 5 seconds for graceful shutdown
}

// handleKeyPress handles key presses for the application.
func (m *generateCmdModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case Input:
		return m.handleInputState(msg)
	case Questions:
		return m.handleQuestionsState(msg)
	default:
		return m.handleQuit(msg)
	}
}

// handleInputState handles the input state of the application on key press.
func (m *generateCmdModel) handleInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m.handleKeyEnter()
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	}
	return m, nil
}

// handleQuestionsState handles the questions state of the application on key press.
func (m *generateCmdModel) handleQuestionsState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m.handleQuestionAnswer(m.textInput.Value())
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	}
	return m, nil
}

// handleKeyEnter handles the enter key press for the application.
func (m *generateCmdModel) handleKeyEnter() (tea.Model, tea.Cmd) {
	if m.state != Input {
		return m, nil
	}
	v := m.textInput.Value()

	// No input, quit.
	if v == "" {
		placeholderStyle := lipgloss.NewStyle().Faint(true)
		message := "No animation description entered. Exiting..."
		message = placeholderStyle.Render(message)
		return m, tea.Sequence(tea.Printf("%s", message), tea.Quit)
	}
	// Input, run query.
	m.textInput.SetValue("")
	m.request.Prompt = v
	m.state = Questions
	placeholderStyle := lipgloss.NewStyle().Faint(true).Width(80)
	message := placeholderStyle.Render(fmt.Sprintf("> %s", v))
	return m, tea.Printf("%s", message)
}

// handleQuestionAnswer handles the question answer for the application.
// An empty answer keeps the value taken from flags or the config file.
func (m *generateCmdModel) handleQuestionAnswer(answer string) (tea.Model, tea.Cmd) {
	answer = strings.ToLower(strings.TrimSpace(answer))

	if answer == "b" {
		if m.currentQuestion > 0 {
			m.currentQuestion--
			m.answers = m.answers[:len(m.answers)-1]
		}
		return m, nil
	}

	switch m.currentQuestion {
	case 0:
		q, err := render.ParseQuality(answer)
		if err != nil {
			return m, nil
		}
		if answer != "" {
			m.request.Quality = q
		}
	case 1:
		c, err := core.ParseComplexity(answer)
		if err != nil {
			return m, nil
		}
		if answer != "" {
			m.request.Complexity = c
		}
	}

	if answer == "" {
		answer = "default"
	}
	m.answers = append(m.answers, answer)
	m.currentQuestion++
	m.textInput.SetValue("")
	if m.currentQuestion >= 2 {
		m.state = Initializing
		return m, func() tea.Msg { return nil }
	}

	return m, tea.Batch(textinput.Blink, func() tea.Msg { return nil })
}

func (m *generateCmdModel) listenForNextStep() tea.Msg {
	select {
	case step := <-m.publisher.stepChan:
		return step
	case err := <-m.publisher.errorChan:
		m.logger.Error(fmt.Sprintf("Error received during animation generation: %v", err))
		return err
	}
}

func (m *generateCmdModel) handleAnimationGeneration() tea.Cmd {
	resultChan := m.engine.AddRequest(m.request)
	listenForResult := func() tea.Msg {
		select {
		case res := <-resultChan:
			if res.Err != nil {
				return res.Err
			}
			return resultMsg(res.Result)
		case <-time.After(10 * time.Minute):
			m.logger.Error("Animation generation timed out")
			return errors.New("animation generation timed out")
		}
	}
	return tea.Batch(m.listenForNextStep, listenForResult)
}

func (m *generateCmdModel) handleStep(step core.StepType) (tea.Model, tea.Cmd) {
	m.logger.Debug(fmt.Sprintf("Received step: %v", step))
	m.completedSteps = append(m.completedSteps, step)
	if step == core.Done {
		m.doneSeen = true
		if m.result != nil {
			return m.handleFinalization()
		}
		// The result message is still in flight.
		return m, m.spinner.Tick
	}
	return m, tea.Batch(m.spinner.Tick, m.listenForNextStep)
}

func (m *generateCmdModel) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	m.result = (*core.Result)(msg)
	if m.doneSeen {
		return m.handleFinalization()
	}
	return m, nil
}

func (m *generateCmdModel) handleFinalization() (tea.Model, tea.Cmd) {
	m.logger.Info("Finalizing animation.")
	m.state = Finished

	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	outPath := pathStyle.Render(m.result.VideoPath)
	finalMsg := fmt.Sprintf("Animation rendered to: %s", outPath)

	return m, tea.Printf("%s", finalMsg)
}

// handleQuit handles the quit state of the application on key press.
func (m *generateCmdModel) handleQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
		m.logger.Debug("User exited the application")
		style := lipgloss.NewStyle().Faint(true)
		message := "Interrupted. Exiting application..."
		message = style.Render(message)
		return m, tea.Sequence(tea.Printf("%s", message), tea.Quit)
	}
	return m, nil
}
