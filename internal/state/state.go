// Package state defines the immutable pipeline snapshot passed between steps.
//
// A State records the artifacts a pipeline has produced so far (name →
// filesystem path) together with any metrics steps have reported. States are
// value-like: mutation happens only through With* methods, which return a
// copy and leave the receiver untouched. A run accumulates States into a
// lineage — an ordered history starting with the initial state, where entry
// i is the output of the i-th executed step.
package state

import (
	"encoding/json"
	"fmt"
	"os"
)

// State is an immutable snapshot of pipeline output.
// The zero value is not usable; construct with New.
type State struct {
	artifacts map[string]string
	metrics   map[string]any
}

// New returns an empty State.
func New() *State {
	return &State{
		artifacts: make(map[string]string),
		metrics:   make(map[string]any),
	}
}

// Artifact returns the path registered under name.
func (s *State) Artifact(name string) (string, bool) {
	path, ok := s.artifacts[name]
	return path, ok
}

// Artifacts returns a copy of the artifact map.
func (s *State) Artifacts() map[string]string {
	out := make(map[string]string, len(s.artifacts))
	for k, v := range s.artifacts {
		out[k] = v
	}
	return out
}

// Metric returns the metric registered under name.
func (s *State) Metric(name string) (any, bool) {
	v, ok := s.metrics[name]
	return v, ok
}

// Metrics returns a copy of the metrics map.
func (s *State) Metrics() map[string]any {
	out := make(map[string]any, len(s.metrics))
	for k, v := range s.metrics {
		out[k] = v
	}
	return out
}

// WithArtifact returns a copy of s with the artifact registered.
// Registering an existing name replaces it in the copy only.
func (s *State) WithArtifact(name, path string) *State {
	next := s.clone()
	next.artifacts[name] = path
	return next
}

// WithArtifacts returns a copy of s with all given artifacts registered.
func (s *State) WithArtifacts(artifacts map[string]string) *State {
	next := s.clone()
	for k, v := range artifacts {
		next.artifacts[k] = v
	}
	return next
}

// WithMetric returns a copy of s with the metric recorded.
func (s *State) WithMetric(name string, value any) *State {
	next := s.clone()
	next.metrics[name] = value
	return next
}

func (s *State) clone() *State {
	next := &State{
		artifacts: make(map[string]string, len(s.artifacts)+1),
		metrics:   make(map[string]any, len(s.metrics)+1),
	}
	for k, v := range s.artifacts {
		next.artifacts[k] = v
	}
	for k, v := range s.metrics {
		next.metrics[k] = v
	}
	return next
}

// stateJSON is the serialized form of a State.
type stateJSON struct {
	Artifacts map[string]string `json:"artifacts"`
	Metrics   map[string]any    `json:"metrics"`
}

// MarshalJSON implements json.Marshaler.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Artifacts: s.artifacts,
		Metrics:   s.metrics,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.artifacts = raw.Artifacts
	s.metrics = raw.Metrics
	if s.artifacts == nil {
		s.artifacts = make(map[string]string)
	}
	if s.metrics == nil {
		s.metrics = make(map[string]any)
	}
	return nil
}

// WriteTo persists the snapshot as indented JSON at path.
func (s *State) WriteTo(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("state: writing snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot previously written with WriteTo.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("state: reading snapshot: %w", err)
	}
	st := New()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("state: parsing snapshot: %w", err)
	}
	return st, nil
}
