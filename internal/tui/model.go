package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ddsconv/internal/convert"
)

const tickInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model shows a spinner while a batch runs and its outcome once the future
// resolves. It never blocks on the future.
type Model struct {
	future   *convert.Future
	progress *convert.Progress
	cancel   context.CancelFunc
	title    string
	started  time.Time
	width    int
	frame    int
	report   convert.Report
	finished bool
	stopping bool
}

type tickMsg time.Time

func NewModel(title string, future *convert.Future, progress *convert.Progress, cancel context.CancelFunc) Model {
	return Model{
		future:   future,
		progress: progress,
		cancel:   cancel,
		title:    title,
		started:  time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if report, ok := m.future.TryGet(); ok {
			m.report = report
			m.finished = true
			return m, tea.Quit
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.stopping {
			// files already started still finish
			m.stopping = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.finished {
		if m.report.OK() {
			return successStyle.Render("Success!") + "\n"
		}
		return failureStyle.Render("Failed!") + "\n"
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	var snap convert.ProgressSnapshot
	if m.progress != nil {
		snap = m.progress.Snapshot()
	}
	ratio := 0.0
	if snap.Total > 0 {
		ratio = math.Min(1, float64(snap.Done)/float64(snap.Total))
	}

	status := "Converting..."
	if m.stopping {
		status = "Stopping..."
	}
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render(m.title),
		spinnerStyle.Render(spinnerFrames[m.frame]) + " " + labelStyle.Render(status),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", snap.Done, snap.Total)) + dimStyle.Render(fmt.Sprintf("  errors:%d", snap.Failed)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(renderBar(barWidth, ratio)),
	}

	return strings.Join(lines, "\n")
}

// Report returns the batch report once the future has resolved.
func (m Model) Report() (convert.Report, bool) {
	return m.report, m.finished
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle     = lipgloss.NewStyle().Foreground(ColorInk)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorDim)
	spinnerStyle = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
)
