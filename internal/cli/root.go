package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentsight",
	Short: "Session analytics for AI agent platforms",
	Long: `agentsight ingests lifecycle events emitted by AI agent runtimes and
derives per-tenant session analytics from them.

Run the HTTP API with "agentsight serve", manage the schema with
"agentsight migrate", and inspect a tenant from the terminal with
"agentsight stats".`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
