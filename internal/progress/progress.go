// Package progress defines the observation surface for flow stage
// transitions. The scheduling core talks only to the Reporter interface, so
// it carries no dependency on any particular display technology; the
// interactive bar lives in internal/tui and tests use Nop or a recording
// fake.
//
// Reporter calls are only ever issued by the goroutine driving a flow's
// run; implementations do not need to be safe for concurrent use by steps.
package progress

// Reporter observes the stage transitions of one run.
type Reporter interface {
	// Begin starts tracking a run with the given display label.
	Begin(label string)

	// SetTotal records the expected number of stages.
	SetTotal(total int)

	// Describe updates the current stage description.
	Describe(desc string)

	// Complete records how many stages have finished.
	Complete(done int)

	// End stops tracking. No further calls are made after End.
	End()
}

// Nop is a Reporter that ignores all updates. It is the default for flows
// constructed without an explicit reporter.
type Nop struct{}

// Begin implements Reporter.
func (Nop) Begin(string) {}

// SetTotal implements Reporter.
func (Nop) SetTotal(int) {}

// Describe implements Reporter.
func (Nop) Describe(string) {}

// Complete implements Reporter.
func (Nop) Complete(int) {}

// End implements Reporter.
func (Nop) End() {}
