package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Messages sent by the BarReporter into the program.
type (
	beginMsg    struct{ label string }
	totalMsg    struct{ total int }
	describeMsg struct{ desc string }
	completeMsg struct{ done int }
	endMsg      struct{}
	tickMsg     time.Time
)

var (
	descStyle    = lipgloss.NewStyle().Bold(true)
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
)

// model is the bubbletea model for the run progress display.
type model struct {
	desc     string
	total    int
	done     int
	start    time.Time
	bar      progress.Model
	quitting bool
}

func newModel() model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30
	return model{
		start: time.Now(),
		bar:   bar,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case beginMsg:
		m.desc = msg.label
		m.start = time.Now()
		return m, nil
	case totalMsg:
		m.total = msg.total
		return m, nil
	case describeMsg:
		m.desc = msg.desc
		return m, nil
	case completeMsg:
		m.done = msg.done
		return m, nil
	case endMsg:
		m.quitting = true
		return m, tea.Quit
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tick()
	case tea.KeyMsg:
		// The display is purely observational; ignore input.
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	elapsed := time.Since(m.start).Round(time.Second)

	return fmt.Sprintf("%s %s %s %s\n",
		descStyle.Render(m.desc),
		m.bar.ViewAs(percent),
		counterStyle.Render(fmt.Sprintf("%d/%d", m.done, m.total)),
		elapsedStyle.Render(elapsed.String()),
	)
}
