package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/log"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the backend's current job status",
		Long: `Status performs a single status request against the backend and prints
whether an analysis job is running, finished, or failed.

Examples:
  # Check the default backend
  trafficlens status

  # Check a different backend
  trafficlens status --server http://10.0.0.5:3015`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	addClientFlags(cmd)

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	backend, err := newBackendClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := backend.EstablishSession(ctx); err != nil {
		return fmt.Errorf("failed to establish backend session: %w", err)
	}

	status, err := backend.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case status.Error != "":
		fmt.Fprintf(out, "Status: failed\nError:  %s\n", status.Error)
	case status.Running:
		fmt.Fprintln(out, "Status: running")
	case status.Done:
		fmt.Fprintln(out, "Status: done")
	default:
		fmt.Fprintln(out, "Status: idle")
	}

	return nil
}
