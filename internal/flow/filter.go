package flow

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/stagehand-io/stagehand/internal/config"
)

// FilterSteps gates a declared step list by ID before a flow is built.
// Steps must match at least one pattern in only (when only is non-empty)
// and no pattern in skip. Patterns use glob syntax (`synth*`, `sta-*`).
// Declared order is preserved.
func FilterSteps(steps []config.StepConfig, only, skip []string) ([]config.StepConfig, error) {
	onlyGlobs, err := compileGlobs(only)
	if err != nil {
		return nil, fmt.Errorf("flow: invalid --only pattern: %w", err)
	}
	skipGlobs, err := compileGlobs(skip)
	if err != nil {
		return nil, fmt.Errorf("flow: invalid --skip pattern: %w", err)
	}

	out := make([]config.StepConfig, 0, len(steps))
	for _, sc := range steps {
		if len(onlyGlobs) > 0 && !anyMatch(onlyGlobs, sc.ID) {
			continue
		}
		if anyMatch(skipGlobs, sc.ID) {
			continue
		}
		out = append(out, sc)
	}
	return out, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func anyMatch(globs []glob.Glob, id string) bool {
	for _, g := range globs {
		if g.Match(id) {
			return true
		}
	}
	return false
}
