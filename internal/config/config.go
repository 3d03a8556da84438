package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values match the reference deployment of the analysis backend where
// applicable (host port, session behavior) and conservative client defaults
// elsewhere.
const (
	// DefaultBaseURL is the address the analysis backend listens on in the
	// reference deployment. Overridable via the --server flag or config file.
	DefaultBaseURL = "http://127.0.0.1:3015"

	// DefaultTimeout is the per-request timeout. Most backend endpoints
	// answer quickly; the generous value covers visualization endpoints
	// that render images on demand.
	DefaultTimeout = 60 * time.Second

	// DefaultPollInterval is the fixed delay between /status polls while an
	// analysis job is running. The backend holds no per-poll state, so a
	// short interval is cheap, but sub-second polling buys nothing because
	// analysis progress is coarse.
	DefaultPollInterval = 2 * time.Second

	// DefaultPollTimeout caps the total time spent polling a single job.
	// Analysis of a full recording takes minutes, not hours; a job still
	// not terminal after this long is treated as failed.
	DefaultPollTimeout = 30 * time.Minute

	// DefaultRetryDelay is how long the runner stays locked after a failed
	// job before a new one may be started. This mirrors the backend's own
	// recovery window and stops tight retry loops against a broken backend.
	DefaultRetryDelay = 3 * time.Second

	// DefaultNoticeTTL is how long a transient notice stays active before
	// auto-dismissing.
	DefaultNoticeTTL = 15 * time.Second

	// DefaultUserAgent identifies trafficlens in HTTP requests.
	DefaultUserAgent = "trafficlens/1.0 (+https://github.com/trafficlens/trafficlens)"

	// DefaultMaxBodySize limits the maximum response body size to read for
	// JSON and text endpoints. Artifact downloads stream to disk and are
	// not subject to this limit. 16MB covers base64-encoded heatmaps.
	DefaultMaxBodySize = 16 * 1024 * 1024 // 16MB

	// AppName is the application name used for XDG directory paths.
	AppName = "trafficlens"
)

// Config holds all configuration options for trafficlens.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., PollConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// BaseURL is the analysis backend address in "scheme://host:port" form.
	// All endpoint paths are resolved against it.
	BaseURL string

	// Timeout is the per-request timeout for backend calls.
	// It applies to individual requests, not the overall job duration.
	Timeout time.Duration

	// PollInterval is the fixed delay between consecutive /status polls.
	PollInterval time.Duration

	// PollTimeout is the maximum total time to poll a single job before
	// giving up. Zero means poll until cancelled.
	PollTimeout time.Duration

	// RetryDelay is how long the job runner stays locked after a failure
	// before accepting a new start request.
	RetryDelay time.Duration

	// NoticeTTL is the auto-dismiss timeout for transient notices.
	NoticeTTL time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .trafficlens in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// ServerConfigs holds per-server settings loaded from the config file.
	ServerConfigs *File

	// JSONReport enables JSON report output instead of the human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the rendered report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DownloadDir is the directory artifact downloads are saved to.
	// Defaults to the current working directory.
	DownloadDir string

	// DownloadAll indicates whether all result artifacts are saved after a
	// successful analysis run.
	DownloadAll bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read for
	// JSON and text endpoints. Set to 0 to use the default.
	MaxBodySize int64

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveHistory indicates whether completed runs are recorded in the
	// history database.
	SaveHistory bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work against the
// reference backend deployment. Users can override specific values after
// creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., base URL, timeouts).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		PollTimeout:  DefaultPollTimeout,
		RetryDelay:   DefaultRetryDelay,
		NoticeTTL:    DefaultNoticeTTL,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		DownloadDir:  ".",
	}
}

// XDGDataDir returns the XDG data directory for trafficlens.
// On Linux: ~/.local/share/trafficlens
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for trafficlens.
// On Linux: ~/.config/trafficlens
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for trafficlens.
// On Linux: ~/.cache/trafficlens
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any backend calls.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// PollInterval must be positive; zero would spin against the backend
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	// PollTimeout of zero means "until cancelled", but it must not be
	// shorter than a single poll interval when set
	if c.PollTimeout < 0 || (c.PollTimeout > 0 && c.PollTimeout < c.PollInterval) {
		return ErrInvalidPollTimeout
	}

	if c.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
