package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/config"
	"github.com/trafficlens/trafficlens/internal/history"
	"github.com/trafficlens/trafficlens/internal/log"
	"github.com/trafficlens/trafficlens/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past analysis runs",
		Long: `History lists analysis runs recorded in the local database.

Without arguments it prints the most recent runs. With a run ID it shows
the full report for that run, including saved artifact paths.

Examples:
  # List the last 10 runs
  trafficlens history

  # Show one run in detail
  trafficlens history 2f1c9e88-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to list (0 = all)")
	cmd.Flags().BoolP("json", "j", false, "Output runs as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	db, err := history.Open(config.XDGDataDir(), history.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No analysis history recorded yet")
		return nil
	}
	defer db.Close()

	ctx := context.Background()

	if len(args) == 1 {
		return showHistoryRun(ctx, cmd, db, args[0], asJSON)
	}

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No analysis history recorded yet")
		return nil
	}

	if asJSON {
		writer := report.NewJSONWriter(cmd.OutOrStdout())
		for _, run := range runs {
			if _, err := writer.Write(run); err != nil {
				return err
			}
		}
		return nil
	}

	out := cmd.OutOrStdout()
	for _, run := range runs {
		vehicles := "-"
		if run.Statistics != nil {
			vehicles = fmt.Sprintf("%d vehicles", run.Statistics.TotalVehicles)
		}
		fmt.Fprintf(out, "%s  %-11s  %-8s  %s  %s\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			run.Outcome(),
			run.Duration.Round(time.Second),
			vehicles,
			run.ID,
		)
	}

	return nil
}

// showHistoryRun renders one recorded run in detail.
func showHistoryRun(ctx context.Context, cmd *cobra.Command, db *history.HistoryDB, runID string, asJSON bool) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found in history", runID)
	}

	var writer report.Writer
	if asJSON {
		writer = report.NewJSONWriter(cmd.OutOrStdout())
	} else {
		writer = report.NewTextWriter(cmd.OutOrStdout())
	}
	if _, err := writer.Write(run); err != nil {
		return err
	}

	artifacts, err := db.RunArtifacts(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}
	if len(artifacts) > 0 && !asJSON {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Saved artifacts:")
		for _, artifact := range []string{"tracks", "report", "bundle"} {
			if path, ok := artifacts[artifact]; ok {
				fmt.Fprintf(out, "  [+] %s: %s\n", artifact, path)
			}
		}
	}

	return nil
}
