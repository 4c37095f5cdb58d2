package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "boardstack-api",
	Short: "BoardStack API - Multi-tenant project management backend",
	Long:  `A Go API serving the workspace/space/board/task hierarchy with role-based access control, JWT auth, rate limiting and observability.`,
	// Runtime failures (bad config, unreachable database) are not usage
	// errors; keep the help text out of the output.
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
