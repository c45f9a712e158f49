package main

import (
	"os"

	"github.com/stagehand-io/stagehand/internal/cmd"
	"github.com/stagehand-io/stagehand/internal/flow"
)

func main() {
	flow.RegisterBuiltins()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
