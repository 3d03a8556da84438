package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/download"
	"github.com/trafficlens/trafficlens/internal/log"
	"github.com/trafficlens/trafficlens/internal/model"
	"github.com/trafficlens/trafficlens/internal/notify"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download [artifact...]",
		Short: "Download result artifacts of the latest analysis",
		Long: `Download saves result artifacts of the most recent completed analysis.

Known artifacts:
  tracks  - raw track list with per-vehicle points (traffic_tracks.json)
  report  - plain-text statistics report (statistics_report.txt)
  bundle  - zip archive of all result files (traffic_analysis_results.zip)

When an artifact is fetched but cannot be written locally, trafficlens
prints the direct backend URL so it can be downloaded manually.

Examples:
  # Download everything
  trafficlens download --all

  # Download specific artifacts into a directory
  trafficlens download tracks report --dir ./results`,
		Args: cobra.ArbitraryArgs,
		RunE: runDownloadCmd,
	}

	addClientFlags(cmd)

	cmd.Flags().BoolP("all", "a", false, "Download all known artifacts")
	cmd.Flags().StringP("dir", "D", ".", "Directory to save artifacts into")

	return cmd
}

// runDownloadCmd executes the download command.
func runDownloadCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}

	artifacts, err := resolveArtifacts(args, all)
	if err != nil {
		return err
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

	notifier := notify.NewNotifier(os.Stderr, cfg.NoticeTTL)
	d := download.NewDownloader(backend, dir,
		download.WithDownloadLogger(logger),
	)

	results, err := d.FetchAll(ctx, artifacts)
	reportDownloads(cmd.OutOrStdout(), notifier, results)
	if err != nil {
		return fmt.Errorf("some artifacts could not be downloaded: %w", err)
	}
	return nil
}

// reportDownloads prints the saved path for each successful download and
// raises a notice for each failure: the manual fallback for artifacts that
// were fetched but could not be written, an error notice otherwise.
// It returns the successful results.
func reportDownloads(out io.Writer, notifier *notify.Notifier, results []download.Saved) []download.Saved {
	saved := make([]download.Saved, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			var fallback *download.FallbackError
			if errors.As(r.Err, &fallback) {
				notifier.Show(notify.Notice{
					Kind:     notify.KindDownload,
					Message:  fmt.Sprintf("failed to save %s automatically", fallback.Manual.Filename),
					Link:     fallback.Manual.URL,
					Filename: fallback.Manual.Filename,
				})
			} else {
				notifier.Show(notify.Notice{Kind: notify.KindError, Message: r.Err.Error()})
			}
			continue
		}
		fmt.Fprintf(out, "Saved %s\n", r.Path)
		saved = append(saved, r)
	}
	return saved
}

// resolveArtifacts converts command-line artifact names into the known
// artifact set.
func resolveArtifacts(names []string, all bool) ([]model.Artifact, error) {
	if all {
		return model.KnownArtifacts(), nil
	}
	if len(names) == 0 {
		known := make([]string, 0, len(model.KnownArtifacts()))
		for _, a := range model.KnownArtifacts() {
			known = append(known, a.Name)
		}
		return nil, fmt.Errorf("no artifacts specified (use --all or one of: %s)",
			strings.Join(known, ", "))
	}

	artifacts := make([]model.Artifact, 0, len(names))
	for _, name := range names {
		artifact, ok := model.ArtifactByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown artifact %q (known: tracks, report, bundle)", name)
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}
