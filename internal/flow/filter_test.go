package flow

import (
	"testing"

	"github.com/stagehand-io/stagehand/internal/config"
)

func declaredSteps(ids ...string) []config.StepConfig {
	steps := make([]config.StepConfig, 0, len(ids))
	for _, id := range ids {
		steps = append(steps, config.StepConfig{ID: id, Command: []string{"true"}})
	}
	return steps
}

func ids(steps []config.StepConfig) []string {
	out := make([]string, 0, len(steps))
	for _, sc := range steps {
		out = append(out, sc.ID)
	}
	return out
}

func TestFilterSteps(t *testing.T) {
	declared := declaredSteps("synth", "floorplan", "sta-pre", "route", "sta-post")

	tests := []struct {
		name string
		only []string
		skip []string
		want []string
	}{
		{"no patterns keeps all", nil, nil, []string{"synth", "floorplan", "sta-pre", "route", "sta-post"}},
		{"only exact", []string{"route"}, nil, []string{"route"}},
		{"only glob", []string{"sta-*"}, nil, []string{"sta-pre", "sta-post"}},
		{"skip glob", nil, []string{"sta-*"}, []string{"synth", "floorplan", "route"}},
		{"skip wins over only", []string{"sta-*"}, []string{"sta-post"}, []string{"sta-pre"}},
		{"only with no matches", []string{"nothing-*"}, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterSteps(declared, tt.only, tt.skip)
			if err != nil {
				t.Fatalf("FilterSteps: %v", err)
			}
			gotIDs := ids(got)
			if len(gotIDs) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", gotIDs, tt.want)
			}
			for i := range tt.want {
				if gotIDs[i] != tt.want[i] {
					t.Errorf("ids[%d] = %q, want %q", i, gotIDs[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilterSteps_InvalidPattern(t *testing.T) {
	if _, err := FilterSteps(declaredSteps("a"), []string{"[bad"}, nil); err == nil {
		t.Error("expected error for invalid only pattern")
	}
	if _, err := FilterSteps(declaredSteps("a"), nil, []string{"[bad"}); err == nil {
		t.Error("expected error for invalid skip pattern")
	}
}
