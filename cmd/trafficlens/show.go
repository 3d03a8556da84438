package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/config"
	"github.com/trafficlens/trafficlens/internal/log"
	"github.com/trafficlens/trafficlens/internal/report"
	"github.com/trafficlens/trafficlens/internal/visual"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <panel>",
		Short: "Show one visualization panel of the latest analysis",
		Long: `Show fetches one visualization panel from the backend.

Panels are mutually exclusive: heatmap, infographic, and speed are images
saved to a file; stats is rendered as text.

Examples:
  # Render the statistics panel
  trafficlens show stats

  # Save the heatmap image
  trafficlens show heatmap --output heatmap.png`,
		Args: cobra.ExactArgs(1),
		RunE: runShowCmd,
	}

	addClientFlags(cmd)

	cmd.Flags().StringP("output", "o", "",
		"Output file for image panels (default: <panel>.png)")

	return cmd
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, args []string) error {
	panel, err := visual.ParsePanel(args[0])
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = string(panel) + ".png"
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

	switcher := visual.NewSwitcher(backend, config.XDGCacheDir(),
		visual.WithSwitcherLogger(logger),
	)
	defer switcher.Close()

	view, err := switcher.Show(ctx, panel)
	if err != nil {
		return fmt.Errorf("failed to show %s panel: %w", panel, err)
	}

	if view.Statistics != nil {
		writer := report.NewTextWriter(cmd.OutOrStdout())
		_, err := writer.WriteStatistics(view.Statistics)
		return err
	}

	// Image panels: copy the materialized file to the requested output.
	// The switcher owns the cached copy and removes it on Close.
	if err := copyFile(view.ImagePath, outputPath); err != nil {
		return fmt.Errorf("failed to save %s panel: %w", panel, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s panel to %s\n", panel, outputPath)
	return nil
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // src is a file the switcher just created
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
