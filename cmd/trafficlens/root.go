// Package main provides the entry point for the trafficlens CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for trafficlens.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trafficlens",
		Short: "Client for the traffic-video analysis backend",
		Long: `trafficlens drives a traffic-video analysis backend from the terminal.
It starts analysis jobs, polls them to completion, renders the aggregated
statistics, shows visualization panels, and downloads result artifacts.

The backend address defaults to http://127.0.0.1:3015 and can be changed
with --server or a .trafficlens configuration file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewDownloadCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
