package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type progressMsg float64

type progressErrMsg struct{ err error }

type downloadCompleteMsg struct{}

type getFlags struct {
	server string
}

const (
	downloading = iota
	prompting
)

type getCmdModel struct {
	pw        *progressWriter
	progress  progress.Model
	path      string
	filename  string
	textinput textinput.Model
	state     int
	err       error
}

func newGetCmdModel(pw *progressWriter, path, filename string) getCmdModel {
	textinput := textinput.New()
	textinput.Placeholder = filename
	textinput.Focus()
	textinput.CharLimit = 156
	textinput.Width = 40

	return getCmdModel{
		pw:        pw,
		progress:  progress.New(progress.WithGradient("#FFBA08", "#F48C06")),
		textinput: textinput,
		path:      path,
		filename:  filename,
		state:     downloading,
	}
}

func (m getCmdModel) Init() tea.Cmd {
	return nil
}

func (m getCmdModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter {
			name := m.textinput.Value()
			if name == "" {
				return m.handleSaveVideo(m.filename)
			}
			return m.handleSaveVideo(name)
		} else if msg.Type == tea.KeyEscape || msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}
		return m, nil

	case progressErrMsg:
		m.err = msg.err
		return m, tea.Quit

	case progressMsg:
		var cmds []tea.Cmd

		if msg >= 1.0 {
			cmds = append(cmds, tea.Sequence(finalPause(), func() tea.Msg {
				return downloadCompleteMsg{}
			}))
		}

		cmds = append(cmds, m.progress.SetPercent(float64(msg)))
		return m, tea.Batch(cmds...)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	case downloadCompleteMsg:
		m.state = prompting
		return m, textinput.Blink
	}
	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

func (m getCmdModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v", m.err)
	}
	if m.state == prompting {
		return fmt.Sprintf("\nSave video as: %s", m.textinput.View())
	}
	pad := strings.Repeat(" ", padding)
	return "\n" +
		pad + m.progress.View() + "\n\n" +
		pad + helpStyle("Press any key to quit")
}

func finalPause() tea.Cmd {
	return tea.Tick(time.Millisecond*750, func(_ time.Time) tea.Msg {
		return nil
	})
}

func (m getCmdModel) handleSaveVideo(name string) (tea.Model, tea.Cmd) {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBA08"))
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Error getting current working directory: %v", err)))
		m.err = err
		return m, tea.Quit
	}
	dest := filepath.Join(cwd, name)
	if err := moveFile(m.path, dest); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Error saving video: %v", err)))
		m.err = err
		return m, tea.Quit
	}
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	successName := successStyle.Render(name)
	check := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	fmt.Printf("%s Video saved to %s\n", check, successName)
	return m, tea.Quit
}

func downloadFile(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Add("Accept", "video/mp4")

	// Rendered videos can be large, give the download plenty of time.
	client := &http.Client{
		Timeout: 30 * time.Minute,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("no such video on the server")
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "video/mp4" && contentType != "application/octet-stream" {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected content type: %s", contentType)
	}

	return resp, nil
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render

const (
	padding  = 2
	maxWidth = 80
)

type progressWriter struct {
	total      int
	downloaded int
	file       *os.File
	reader     io.Reader
	onProgress func(float64)
}

func (pw *progressWriter) Start(p *tea.Program) {
	// TeeReader calls pw.Write() each time a new response is received
	_, err := io.Copy(pw.file, io.TeeReader(pw.reader, pw))
	if err != nil {
		p.Send(progressErrMsg{err})
	}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.downloaded += len(p)
	if pw.total > 0 && pw.onProgress != nil {
		pw.onProgress(float64(pw.downloaded) / float64(pw.total))
	}
	return len(p), nil
}

// moveFile renames when it can. Renames fail across filesystems, so
// fall back to a copy.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
