package progress

import "github.com/stagehand-io/stagehand/internal/logging"

// LogReporter renders stage transitions as structured log records. It is
// the non-interactive fallback used when stdout is not a terminal.
type LogReporter struct {
	log   *logging.Logger
	label string
	total int
}

// NewLogReporter returns a LogReporter writing to log.
func NewLogReporter(log *logging.Logger) *LogReporter {
	return &LogReporter{log: log}
}

// Begin implements Reporter.
func (r *LogReporter) Begin(label string) {
	r.label = label
	r.log.Info("run started", "flow", label)
}

// SetTotal implements Reporter.
func (r *LogReporter) SetTotal(total int) {
	r.total = total
}

// Describe implements Reporter.
func (r *LogReporter) Describe(desc string) {
	r.log.Info(desc, "total", r.total)
}

// Complete implements Reporter.
func (r *LogReporter) Complete(done int) {
	r.log.Info("stage complete", "done", done, "total", r.total)
}

// End implements Reporter.
func (r *LogReporter) End() {
	r.log.Info("run finished", "flow", r.label)
}
