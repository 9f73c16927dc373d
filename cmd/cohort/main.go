package main

import (
	"fmt"
	"os"

	"github.com/seminarlabs/cohort/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands silence cobra's own error printing; report here once.
		fmt.Fprintln(os.Stderr, "cohort:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
