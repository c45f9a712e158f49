package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagehand-io/stagehand/internal/flow"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "List registered flows",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range flow.List() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
}
