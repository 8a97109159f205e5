package controller

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/mouse-blink/typecov/internal/model"
)

var (
	completeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	partialStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	suppressedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // Gray
	failedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	passedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	accentStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
)

// checkModel is the Bubble Tea model of a running check. File lines are
// printed by the TUI itself; the model only tracks progress.
type checkModel struct {
	width       int
	progressBar progress.Model
	total       int
	threads     int
	completed   int
	summary     *m.Summary
}

func newCheckModel(width int) checkModel {
	prog := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(progressWidth(width)),
		progress.WithoutPercentage(),
	)

	return checkModel{
		width:       width,
		progressBar: prog,
	}
}

func (cm checkModel) Init() tea.Cmd {
	return nil
}

func (cm checkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cm.width = msg.Width
		cm.progressBar.Width = progressWidth(msg.Width)

	case startInfoMsg:
		cm.total = msg.files
		cm.threads = msg.threads
		cm.completed = 0

	case fileResultMsg:
		cm.completed++

	case summaryMsg:
		summary := msg.summary
		cm.summary = &summary

		return cm, tea.Quit
	}

	return cm, nil
}

func (cm checkModel) View() string {
	if cm.summary != nil {
		return renderSummary(*cm.summary) + "\n"
	}

	percent := 0.0
	if cm.total > 0 {
		percent = float64(cm.completed) / float64(cm.total)
	}

	status := labelStyle.Render(fmt.Sprintf("%s / %s files  •  %s worker(s)",
		accentStyle.Render(fmt.Sprintf("%d", cm.completed)),
		accentStyle.Render(fmt.Sprintf("%d", cm.total)),
		accentStyle.Render(fmt.Sprintf("%d", cm.threads)),
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		cm.progressBar.ViewAs(percent),
		status,
	) + "\n"
}

func progressWidth(termWidth int) int {
	const maxWidth, minWidth = 40, 10

	return max(minWidth, min(maxWidth, termWidth-4))
}

// renderResultLine is the coloured counterpart of the SimpleUI dotted line.
func renderResultLine(result m.FileCoverage, width int) string {
	detail := resultDetail(result)
	line := dottedLine(string(result.Source.ShortPath), detail, width)
	head := strings.TrimSuffix(line, detail)

	var b strings.Builder
	b.WriteString(head)

	if codes := result.UncoveredCodes(); len(codes) > 0 {
		b.WriteString(partialStyle.Render(strings.Join(codes, ", ")))
		b.WriteString(" ")
	}

	if codes := result.SuppressedCodes(); len(codes) > 0 {
		b.WriteString(suppressedStyle.Render("(" + strings.Join(codes, ", ") + ")"))
		b.WriteString(" ")
	}

	percentage := fmt.Sprintf("%d%%", result.TotalCoverage)
	if result.Complete() {
		b.WriteString(completeStyle.Render(percentage))
	} else {
		b.WriteString(partialStyle.Render(percentage))
	}

	return b.String()
}

func renderSummary(summary m.Summary) string {
	var lines []string

	if summary.Categorized {
		for _, row := range categoryRows(summary) {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("  %-10s %s", row[0], accentStyle.Render(row[1]))))
		}

		lines = append(lines, "")
	}

	if summary.Passed {
		lines = append(lines, passedStyle.Render(verdictLine(summary)))
	} else {
		lines = append(lines, failedStyle.Render(verdictLine(summary)))
	}

	return "\n" + strings.Join(lines, "\n")
}
