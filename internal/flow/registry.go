package flow

import (
	"sort"
	"sync"

	"github.com/stagehand-io/stagehand/internal/config"
	"github.com/stagehand-io/stagehand/internal/step"
)

// Builder constructs a Flow of a particular kind over a design directory.
type Builder func(cfg *config.Config, designDir string, opts ...Option) (*Flow, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Builder)
)

// Register adds a builder to the process-wide registry under name,
// silently overwriting any previous entry with the same name.
func Register(name string, builder Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = builder
}

// Lookup returns the builder registered under name. Unknown names return
// (nil, false), never an error.
func Lookup(name string) (Builder, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	builder, ok := registry[name]
	return builder, ok
}

// List returns all registered flow names, sorted, without duplicates.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins registers the builtin flows. Called explicitly during
// process initialization rather than from an import side effect.
func RegisterBuiltins() {
	Register("Sequential", sequentialBuilder)
}

// sequentialBuilder builds a Sequential flow from the config's declared
// step list, each declaration backed by a command step.
func sequentialBuilder(cfg *config.Config, designDir string, opts ...Option) (*Flow, error) {
	factories := make([]step.Factory, 0, len(cfg.Steps))
	for _, sc := range cfg.Steps {
		factories = append(factories, step.NewCommand(sc))
	}
	return New(cfg, designDir, NewSequential(factories...), opts...)
}
