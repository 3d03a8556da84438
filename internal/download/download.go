package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trafficlens/trafficlens/internal/model"
)

// Fetcher is the subset of the API client the downloader needs.
type Fetcher interface {
	// OpenArtifact opens a streaming reader for a result file.
	OpenArtifact(ctx context.Context, path string) (io.ReadCloser, int64, error)

	// BaseURL returns the backend address, used to build manual URLs.
	BaseURL() string
}

// ManualDownload describes the fallback offered when a local save fails:
// the direct URL the user can open themselves, and the filename to save as.
type ManualDownload struct {
	// URL is the absolute artifact URL on the backend.
	URL string

	// Filename is the suggested local file name.
	Filename string
}

// FallbackError reports a download that was fetched but could not be saved
// locally. It carries the manual fallback alongside the underlying cause.
type FallbackError struct {
	// Manual is the fallback the user can follow by hand.
	Manual ManualDownload

	// Err is the underlying save failure.
	Err error
}

// Error implements the error interface.
func (e *FallbackError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Manual.Filename, e.Err)
}

// Unwrap returns the underlying save failure.
func (e *FallbackError) Unwrap() error {
	return e.Err
}

// Downloader saves artifacts from the backend into a target directory.
type Downloader struct {
	// fetcher performs the backend reads.
	fetcher Fetcher

	// dir is the target directory for saved artifacts.
	dir string

	// concurrency caps parallel downloads in FetchAll.
	concurrency int

	// logger is used for structured logging.
	logger *slog.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithConcurrency caps parallel downloads in FetchAll. Default is 3, one
// per known artifact.
func WithConcurrency(n int) DownloaderOption {
	return func(d *Downloader) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithDownloadLogger sets a custom logger. Defaults to slog.Default().
func WithDownloadLogger(logger *slog.Logger) DownloaderOption {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// NewDownloader creates a Downloader saving into dir.
func NewDownloader(fetcher Fetcher, dir string, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		fetcher:     fetcher,
		dir:         dir,
		concurrency: 3,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = slog.Default()
	}

	return d
}

// Fetch downloads one artifact and returns the saved file's path.
//
// A fetch failure (backend unreachable, artifact missing) is returned as a
// plain error. A save failure after a successful fetch is returned as
// *FallbackError so the caller can offer the manual URL instead; the temp
// file is always removed on failure.
func (d *Downloader) Fetch(ctx context.Context, artifact model.Artifact) (string, error) {
	body, size, err := d.fetcher.OpenArtifact(ctx, artifact.Path)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", artifact.Name, err)
	}
	defer body.Close()

	d.logger.Debug("downloading artifact",
		"artifact", artifact.Name,
		"filename", artifact.Filename,
		"size", size,
	)

	path, err := d.save(body, artifact.Filename)
	if err != nil {
		return "", &FallbackError{
			Manual: ManualDownload{
				URL:      d.manualURL(artifact.Path),
				Filename: artifact.Filename,
			},
			Err: err,
		}
	}

	d.logger.Info("artifact saved", "artifact", artifact.Name, "path", path)
	return path, nil
}

// Saved is the outcome of one artifact in a batch download.
type Saved struct {
	// Artifact identifies what was requested.
	Artifact model.Artifact

	// Path is where the artifact landed. Empty when Err is set.
	Path string

	// Err is the per-artifact failure, if any. A *FallbackError means the
	// fetch succeeded but the local save did not.
	Err error
}

// FetchAll downloads several artifacts concurrently. It always returns one
// result per requested artifact, in artifact order, so the caller can offer
// the manual fallback for each failed save individually. The error is
// non-nil when any artifact failed.
func (d *Downloader) FetchAll(ctx context.Context, artifacts []model.Artifact) ([]Saved, error) {
	results := make([]Saved, len(artifacts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, artifact := range artifacts {
		i, artifact := i, artifact
		g.Go(func() error {
			path, err := d.Fetch(ctx, artifact)
			results[i] = Saved{Artifact: artifact, Path: path, Err: err}
			// Failures are recorded per result, not returned, so one
			// broken artifact does not cancel its siblings.
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("failed to download %d of %d artifacts", failed, len(artifacts))
	}
	return results, nil
}

// save streams body into a temp file and renames it into place.
func (d *Downloader) save(body io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(d.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	tempName := fmt.Sprintf(".%s.%s.part", filename, shortID())
	tempPath := filepath.Join(d.dir, tempName)

	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		d.discard(tempPath)
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		d.discard(tempPath)
		return "", fmt.Errorf("failed to flush artifact: %w", err)
	}

	if err := f.Close(); err != nil {
		d.discard(tempPath)
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}

	finalPath := filepath.Join(d.dir, filename)
	if err := os.Rename(tempPath, finalPath); err != nil {
		d.discard(tempPath)
		return "", fmt.Errorf("failed to finalize artifact: %w", err)
	}

	return finalPath, nil
}

// discard removes a temp file, logging when removal itself fails.
func (d *Downloader) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}

// manualURL builds the absolute URL for the manual fallback.
func (d *Downloader) manualURL(path string) string {
	return strings.TrimSuffix(d.fetcher.BaseURL(), "/") + path
}

// shortID returns a short unique suffix for temp file names.
func shortID() string {
	return uuid.NewString()[:8]
}
