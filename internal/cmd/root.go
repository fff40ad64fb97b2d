// Package cmd wires the command-line interface.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ci-overview",
	Short: "Show an overview of what CI checks are failing or succeeding",
	Long: `ci-overview aggregates CI check results for open pull requests across the
repositories named in a check definitions tree, and shows them as a compact
colour-coded table.

Check results are read from GitHub, so a GITHUB_TOKEN environment variable
is required.

Key to the output: each cell is one pull request, coloured by check state
(grey "expected": not picked up yet; yellow "pending": running; green:
success; red: error; bold red: failure). Results from inside the recency
window are shown in reverse video. Draft pull requests and those titled
"[WIP]" are not shown. Read tables left to right, then down.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the CLI with the given base context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
