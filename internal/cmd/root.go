package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stagehand-io/stagehand/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Multi-stage execution engine",
	Long: `Stagehand runs an ordered pipeline of steps against a design
directory. Each step consumes the accumulated output of the previous ones
and produces a new versioned state snapshot; every run gets its own
workspace under <design-dir>/runs/<tag> with a resolved configuration
snapshot and per-stage working directories.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is <design-dir>/config.json)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Defaults first so they apply even without a config file.
	config.SetDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("STAGEHAND")
	// STAGEHAND_LOGGING_LEVEL overrides logging.level, and so on.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}
