// Package tui renders the interactive progress display for a run: the
// current stage description, a progress bar, an M/N stage counter, and
// elapsed time. It implements progress.Reporter by forwarding updates as
// messages into a bubbletea program, so the flow's scheduling goroutine
// never touches the terminal directly.
package tui
