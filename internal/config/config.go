// Package config defines the resolved pipeline configuration.
//
// Configuration is loaded through viper (config file plus STAGEHAND_*
// environment overrides) into an immutable Config value. The engine never
// mutates a Config; its only obligation is to persist the resolved snapshot
// verbatim to <run-dir>/resolved.json at the start of every run.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the complete resolved configuration for a design.
type Config struct {
	// Design is the name of the design this pipeline operates on.
	Design string `mapstructure:"design" json:"design"`

	// Flow is the name of the flow to run when none is given explicitly.
	Flow string `mapstructure:"flow" json:"flow"`

	// Steps declares the pipeline's step sequence for config-driven flows.
	Steps []StepConfig `mapstructure:"steps" json:"steps"`

	// Workers bounds the flow's async step dispatcher.
	Workers int `mapstructure:"workers" json:"workers"`

	// Logging controls log output.
	Logging LoggingConfig `mapstructure:"logging" json:"logging"`

	// Progress controls the interactive progress display.
	Progress ProgressConfig `mapstructure:"progress" json:"progress"`
}

// StepConfig declares one step of a config-driven pipeline.
type StepConfig struct {
	// ID is the step's stable identifier, used for stage directory names.
	ID string `mapstructure:"id" json:"id"`
	// Name is the display name shown in progress descriptions.
	// Defaults to ID when empty.
	Name string `mapstructure:"name" json:"name,omitempty"`
	// Command is the argv to execute, run with the stage directory as
	// working directory.
	Command []string `mapstructure:"command" json:"command"`
	// Env holds extra environment variables for the command.
	Env map[string]string `mapstructure:"env" json:"env,omitempty"`
	// Inputs lists artifact names that must exist in the previous state.
	Inputs []string `mapstructure:"inputs" json:"inputs,omitempty"`
	// Outputs maps artifact names to paths (relative to the stage
	// directory) registered in the new state on success.
	Outputs map[string]string `mapstructure:"outputs" json:"outputs,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" json:"level"`
}

// ProgressConfig controls the interactive progress display.
type ProgressConfig struct {
	// Enabled turns the progress bar on when stdout is a terminal.
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// SetDefaults registers default values with viper. Call before reading the
// config file so defaults apply even when no file exists.
func SetDefaults() {
	viper.SetDefault("flow", "Sequential")
	viper.SetDefault("workers", 4)
	viper.SetDefault("logging.level", "INFO")
	viper.SetDefault("progress.enabled", true)
}

// Load materializes the Config from viper's current settings.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	for i := range cfg.Steps {
		if cfg.Steps[i].Name == "" {
			cfg.Steps[i].Name = cfg.Steps[i].ID
		}
	}
	return &cfg, nil
}

// Validate checks the config for structural problems a run cannot recover
// from: steps without IDs, duplicate IDs, or commands missing an argv.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Steps))
	for i, sc := range c.Steps {
		if sc.ID == "" {
			return fmt.Errorf("config: step %d has no id", i)
		}
		if seen[sc.ID] {
			return fmt.Errorf("config: duplicate step id %q", sc.ID)
		}
		seen[sc.ID] = true
		if len(sc.Command) == 0 {
			return fmt.Errorf("config: step %q has no command", sc.ID)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// Dumps serializes the resolved configuration to indented JSON. The
// returned text is written verbatim to <run-dir>/resolved.json.
func (c *Config) Dumps() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("config: serializing: %w", err)
	}
	return string(data), nil
}
