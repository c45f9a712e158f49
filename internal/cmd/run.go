package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/stagehand-io/stagehand/internal/config"
	"github.com/stagehand-io/stagehand/internal/flow"
	"github.com/stagehand-io/stagehand/internal/logging"
	"github.com/stagehand-io/stagehand/internal/progress"
	"github.com/stagehand-io/stagehand/internal/state"
	"github.com/stagehand-io/stagehand/internal/tui"
)

var (
	runFlowName   string
	runTag        string
	runInitial    string
	runOnly       []string
	runSkip       []string
	runWorkers    int
	runNoProgress bool
)

var runCmd = &cobra.Command{
	Use:   "run [design-dir]",
	Short: "Run a flow against a design directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runFlowName, "flow", "f", "", "flow to run (default from config)")
	runCmd.Flags().StringVarP(&runTag, "tag", "t", "", "name for this run (default: timestamp)")
	runCmd.Flags().StringVar(&runInitial, "initial-state", "", "JSON state snapshot to start from")
	runCmd.Flags().StringSliceVar(&runOnly, "only", nil, "glob patterns of step IDs to run")
	runCmd.Flags().StringSliceVar(&runSkip, "skip", nil, "glob patterns of step IDs to skip")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "bound for the async step dispatcher")
	runCmd.Flags().BoolVar(&runNoProgress, "no-progress", false, "disable the interactive progress bar")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	designDir := "."
	if len(args) == 1 {
		designDir = args[0]
	}

	cfg, err := loadRunConfig(designDir)
	if err != nil {
		return err
	}

	name := runFlowName
	if name == "" {
		name = cfg.Flow
	}
	builder, ok := flow.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown flow %q (registered: %s)", name, strings.Join(flow.List(), ", "))
	}

	filtered, err := flow.FilterSteps(cfg.Steps, runOnly, runSkip)
	if err != nil {
		return err
	}
	runCfg := *cfg
	runCfg.Steps = filtered

	logger, err := logging.NewLogger("", runCfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Close()

	var reporter progress.Reporter = progress.NewLogReporter(logger)
	if !runNoProgress && runCfg.Progress.Enabled && term.IsTerminal(int(os.Stdout.Fd())) {
		reporter = tui.NewBarReporter(os.Stdout)
	}

	opts := []flow.Option{
		flow.WithLogger(logger),
		flow.WithReporter(reporter),
	}
	if runWorkers > 0 {
		opts = append(opts, flow.WithMaxWorkers(runWorkers))
	}

	f, err := builder(&runCfg, designDir, opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	var initial *state.State
	if runInitial != "" {
		initial, err = state.Load(runInitial)
		if err != nil {
			return err
		}
	}

	ok, lineage, err := f.Start(cmd.Context(), initial, runTag)
	if err != nil {
		return fmt.Errorf("flow %s: %w", name, err)
	}

	// A runner is free to return an empty lineage.
	completed := 0
	if len(lineage) > 0 {
		completed = len(lineage) - 1
		final := lineage[len(lineage)-1]
		if err := final.WriteTo(filepath.Join(f.RunDir(), "state_out.json")); err != nil {
			logger.Warn("could not write final state snapshot", "error", err)
		}
	}

	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Flow %s failed after %d of %d stages. See %s\n",
			f.Name(), completed, len(runCfg.Steps), f.RunDir())
		return fmt.Errorf("flow %s failed", f.Name())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Flow %s complete. Results in %s\n", f.Name(), f.RunDir())
	return nil
}

// loadRunConfig reads the design's config file (or the --config override)
// into a validated Config. A missing config file is not an error: the flow
// then runs with defaults and zero declared steps.
func loadRunConfig(designDir string) (*config.Config, error) {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("json")
		viper.AddConfigPath(designDir)
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config in %s: %w", designDir, err)
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
