package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/client"
	"github.com/trafficlens/trafficlens/internal/config"
	"github.com/trafficlens/trafficlens/internal/download"
	"github.com/trafficlens/trafficlens/internal/history"
	"github.com/trafficlens/trafficlens/internal/job"
	"github.com/trafficlens/trafficlens/internal/log"
	"github.com/trafficlens/trafficlens/internal/model"
	"github.com/trafficlens/trafficlens/internal/notify"
	"github.com/trafficlens/trafficlens/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a traffic analysis job and report the results",
		Long: `Analyze starts an analysis job on the backend, polls it until it
finishes, and renders the aggregated statistics.

The backend analyzes a pre-configured traffic video; trafficlens does not
upload footage. Only one job can run per backend session at a time.

Examples:
  # Run an analysis against the default backend
  trafficlens analyze

  # Run against a different backend and save artifacts afterwards
  trafficlens analyze --server http://10.0.0.5:3015 --download

  # Output a Markdown report to a file
  trafficlens analyze --markdown --output report.md

Configuration file (.trafficlens) example:
  servers:
    http://10.0.0.5:3015:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      pollIntervalSeconds: 5`,
		Args: cobra.NoArgs,
		RunE: runAnalyzeCmd,
	}

	addClientFlags(cmd)

	// Polling flags
	cmd.Flags().DurationP("poll-interval", "i", config.DefaultPollInterval,
		"Delay between status polls")
	cmd.Flags().Duration("poll-timeout", config.DefaultPollTimeout,
		"Maximum total time to poll a job before giving up")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryDelay,
		"Lock-out period after a failed job before a new start is accepted")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Artifact flags
	cmd.Flags().BoolP("download", "d", false,
		"Download all result artifacts after a successful run")
	cmd.Flags().StringP("download-dir", "D", ".",
		"Directory to save downloaded artifacts into")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the local history database")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// addClientFlags registers the flags shared by every command that talks to
// the backend.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("server", "s", config.DefaultBaseURL,
		"Backend base URL")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .trafficlens in current or home directory)")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
// Flags a command does not define keep their defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.BaseURL, err = cmd.Flags().GetString("server")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("poll-interval"); f != nil {
		cfg.PollInterval, err = cmd.Flags().GetDuration("poll-interval")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("poll-timeout"); f != nil {
		cfg.PollTimeout, err = cmd.Flags().GetDuration("poll-timeout")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("retry-delay"); f != nil {
		cfg.RetryDelay, err = cmd.Flags().GetDuration("retry-delay")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("json"); f != nil {
		cfg.JSONReport, err = cmd.Flags().GetBool("json")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("markdown"); f != nil {
		cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("output"); f != nil {
		cfg.ReportFile, err = cmd.Flags().GetString("output")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("download"); f != nil {
		cfg.DownloadAll, err = cmd.Flags().GetBool("download")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("download-dir"); f != nil {
		cfg.DownloadDir, err = cmd.Flags().GetString("download-dir")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("no-history"); f != nil {
		noHistory, err := cmd.Flags().GetBool("no-history")
		if err != nil {
			return nil, err
		}
		cfg.SaveHistory = !noHistory
	}

	// Load server-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.ServerConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.ServerConfigs = &config.File{
			Servers: make(map[string]config.ServerConfig),
		}
	}

	// History always lives in the XDG data directory
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// newBackendClient creates an API client honoring the server-specific
// configuration (cookie, headers) for cfg.BaseURL.
func newBackendClient(cfg *config.Config, logger *slog.Logger) (*client.Client, error) {
	opts := []client.Option{
		client.WithUserAgent(cfg.UserAgent),
		client.WithMaxBodySize(cfg.MaxBodySize),
		client.WithLogger(logger),
	}

	serverConfig := cfg.ServerConfigs.GetServerConfig(cfg.BaseURL)
	if serverConfig.Cookie != "" {
		opts = append(opts, client.WithCookie(serverConfig.Cookie))
	}
	if len(serverConfig.Headers) > 0 {
		opts = append(opts, client.WithHeaders(serverConfig.Headers))
	}
	if serverConfig.PollIntervalSeconds > 0 {
		cfg.PollInterval = time.Duration(serverConfig.PollIntervalSeconds) * time.Second
	}

	c, err := client.New(cfg.BaseURL, cfg.Timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return c, nil
}

// runAnalyze executes the analysis job end to end.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"server", cfg.BaseURL,
		"pollInterval", cfg.PollInterval,
		"pollTimeout", cfg.PollTimeout,
		"saveHistory", cfg.SaveHistory,
	)

	backend, err := newBackendClient(cfg, logger)
	if err != nil {
		return err
	}

	// Open the history database early so a failed run is recorded too
	var db *history.HistoryDB
	if cfg.SaveHistory {
		db, err = history.Open(cfg.DBDir, history.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	notifier := notify.NewNotifier(os.Stderr, cfg.NoticeTTL)

	if err := backend.EstablishSession(ctx); err != nil {
		return fmt.Errorf("failed to establish backend session: %w", err)
	}

	runner := job.NewRunner(backend,
		job.WithPollInterval(cfg.PollInterval),
		job.WithPollTimeout(cfg.PollTimeout),
		job.WithRetryDelay(cfg.RetryDelay),
		job.WithLogger(logger),
		job.WithProgress(func(status model.Status) {
			logger.Debug("job status", "running", status.Running, "done", status.Done)
		}),
	)

	run := model.NewRun(cfg.BaseURL)

	fmt.Printf("Starting analysis on %s...\n", cfg.BaseURL)
	result, err := runner.Run(ctx)
	run.Duration = time.Since(run.StartedAt)

	if err != nil {
		var analysisErr *job.AnalysisError
		if errors.As(err, &analysisErr) {
			run.Error = analysisErr.Message
		} else {
			run.Error = err.Error()
		}
		notifier.Show(notify.Notice{Kind: notify.KindError, Message: run.Error})
		saveRun(ctx, db, run, logger)
		return err
	}

	run.Done = true
	run.Duration = result.Elapsed
	fmt.Printf("Analysis completed in %s (%d polls)\n\n",
		result.Elapsed.Round(time.Millisecond), result.Polls)

	// Fetch results. Neither fetch failing should discard the completed run.
	reportText, err := backend.Report(ctx)
	if err != nil {
		logger.Warn("failed to fetch text report", "error", err)
	}

	run.Statistics, err = backend.Statistics(ctx)
	if err != nil {
		logger.Warn("failed to fetch statistics", "error", err)
		notifier.Show(notify.Notice{Kind: notify.KindError, Message: err.Error()})
	}

	if err := outputReport(cfg, run, reportText); err != nil {
		logger.Error("failed to output report", "error", err)
	}

	saveRun(ctx, db, run, logger)

	if shouldDownload(cfg) {
		if err := downloadArtifacts(ctx, cfg, backend, db, run.ID, notifier, logger); err != nil {
			return err
		}
	}

	return nil
}

// shouldDownload reports whether the analyze command should save artifacts.
func shouldDownload(cfg *config.Config) bool {
	return cfg.DownloadAll
}

// downloadArtifacts saves all known artifacts concurrently, offering the
// manual fallback for artifacts that were fetched but could not be written
// locally, and records the saved ones in the history database.
func downloadArtifacts(ctx context.Context, cfg *config.Config, backend *client.Client, db *history.HistoryDB, runID string, notifier *notify.Notifier, logger *slog.Logger) error {
	d := download.NewDownloader(backend, cfg.DownloadDir,
		download.WithDownloadLogger(logger),
	)

	results, err := d.FetchAll(ctx, model.KnownArtifacts())
	saved := reportDownloads(os.Stdout, notifier, results)

	if db != nil {
		for _, r := range saved {
			if dbErr := db.SaveArtifact(ctx, runID, r.Artifact, r.Path); dbErr != nil {
				logger.Warn("failed to record artifact", "artifact", r.Artifact.Name, "error", dbErr)
			}
		}
	}

	if err != nil {
		return fmt.Errorf("some artifacts could not be downloaded: %w", err)
	}
	return nil
}

// outputReport renders the run report in the requested format.
func outputReport(cfg *config.Config, run *model.Run, reportText string) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output, report.WithReportText(reportText))
	}

	_, err := writer.Write(run)
	return err
}

// saveRun records the run in the history database. If db is nil, this
// function is a no-op.
func saveRun(ctx context.Context, db *history.HistoryDB, run *model.Run, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.SaveRun(ctx, run); err != nil {
		logger.Error("failed to save run to history", "run", run.ID, "error", err)
		return
	}
	logger.Info("run saved to history", "run", run.ID, "outcome", run.Outcome())
}
