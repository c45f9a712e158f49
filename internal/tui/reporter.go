package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// BarReporter implements progress.Reporter on top of a bubbletea program.
// Updates arrive on the flow's scheduling goroutine and are forwarded as
// messages; only the program's own goroutine renders.
type BarReporter struct {
	prog *tea.Program
}

// NewBarReporter creates a reporter rendering to out (normally stdout).
func NewBarReporter(out io.Writer) *BarReporter {
	prog := tea.NewProgram(newModel(),
		tea.WithOutput(out),
		tea.WithInput(nil),
	)
	return &BarReporter{prog: prog}
}

// Begin implements progress.Reporter. It starts the render loop.
func (r *BarReporter) Begin(label string) {
	go func() {
		// Run's error (e.g. a terminal teardown failure) has nowhere
		// useful to go; the display is purely observational.
		_, _ = r.prog.Run()
	}()
	r.prog.Send(beginMsg{label: label})
}

// SetTotal implements progress.Reporter.
func (r *BarReporter) SetTotal(total int) {
	r.prog.Send(totalMsg{total: total})
}

// Describe implements progress.Reporter.
func (r *BarReporter) Describe(desc string) {
	r.prog.Send(describeMsg{desc: desc})
}

// Complete implements progress.Reporter.
func (r *BarReporter) Complete(done int) {
	r.prog.Send(completeMsg{done: done})
}

// End implements progress.Reporter. It stops the render loop and waits for
// the final frame to flush.
func (r *BarReporter) End() {
	r.prog.Send(endMsg{})
	r.prog.Wait()
}
