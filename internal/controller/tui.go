package controller

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "github.com/mouse-blink/typecov/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display. In check mode
// a progress bar runs while files are analyzed; finished files are printed
// above it.
type TUI struct {
	output io.Writer
	config StartConfig

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
	started bool
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output, config: newStartConfig(nil)}
}

// Start initializes the UI. Only check mode runs a Bubble Tea program.
func (t *TUI) Start(options ...StartOption) error {
	t.config = newStartConfig(options)
	if t.config.mode != ModeCheck {
		return nil
	}

	return t.startWithModel(newCheckModel(t.terminalWidth()))
}

func (t *TUI) startWithModel(model tea.Model) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithInput(nil))
	done := make(chan struct{})

	t.program = program
	t.done = done
	t.started = true

	go func() {
		defer close(done)

		_, _ = program.Run()
	}()

	return nil
}

func (t *TUI) ensureStarted() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if !started {
		_ = t.startWithModel(newCheckModel(t.terminalWidth()))
	}
}

// send forwards msg to the running program. It is a no-op before Start.
func (t *TUI) send(msg tea.Msg) {
	if program := t.currentProgram(); program != nil {
		program.Send(msg)
	}
}

// println prints above the program. Lines and messages share one channel,
// so they are handled in the order they were sent.
func (t *TUI) println(line string) {
	if program := t.currentProgram(); program != nil {
		program.Println(line)
	}
}

func (t *TUI) currentProgram() *tea.Program {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.program
}

// Wait blocks until the program has exited.
func (t *TUI) Wait() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Close stops the program and waits for it to restore the terminal.
func (t *TUI) Close() {
	t.mu.Lock()
	program, done := t.program, t.done
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// DisplaySources prints the discovered files.
func (t *TUI) DisplaySources(sources []m.SourceFile) error {
	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	footerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	for _, source := range sources {
		b.WriteString(pathStyle.Render(string(source.ShortPath)))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(fmt.Sprintf("%d file(s)", len(sources))))
	b.WriteString("\n")

	_, err := fmt.Fprint(t.output, b.String())

	return err
}

// DisplayStartInfo sets the progress bar total.
func (t *TUI) DisplayStartInfo(files int, threads int) {
	if t.config.mode != ModeCheck {
		return
	}

	t.ensureStarted()
	t.send(startInfoMsg{files: files, threads: threads})
}

// DisplayFileResult advances the progress bar and prints the file line.
func (t *TUI) DisplayFileResult(result m.FileCoverage) {
	if t.config.mode != ModeCheck {
		if t.config.hideComplete && result.Complete() {
			return
		}

		_, _ = fmt.Fprintln(t.output, renderResultLine(result, t.terminalWidth()))

		return
	}

	t.ensureStarted()

	if !t.config.hideComplete || !result.Complete() {
		t.println(renderResultLine(result, t.terminalWidth()))
	}

	t.send(fileResultMsg{result: result})
}

// DisplaySummary shows the verdict and ends the program.
func (t *TUI) DisplaySummary(summary m.Summary) {
	if t.config.mode != ModeCheck {
		_, _ = fmt.Fprintln(t.output, renderSummary(summary))
		return
	}

	t.ensureStarted()
	t.send(summaryMsg{summary: summary})
}

func (t *TUI) terminalWidth() int {
	if f, ok := t.output.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}

	return defaultLineWidth
}
