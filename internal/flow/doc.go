// Package flow implements the multi-stage execution engine.
//
// A Flow is the run driver: it owns the run lifecycle — workspace layout
// under <design-dir>/runs/<tag>, the resolved configuration snapshot,
// progress tracking, stage bookkeeping, and a bounded async step
// dispatcher — and delegates step sequencing to a pluggable Runner
// strategy. Start is the sealed entry point; strategies implement only Run.
//
// Sequential is the default strategy: it executes a declared list of step
// factories one at a time, in order, stopping at the first handled failure.
//
// The package also hosts the process-wide registry mapping flow names to
// builders, populated explicitly via RegisterBuiltins rather than through
// import side effects.
package flow
