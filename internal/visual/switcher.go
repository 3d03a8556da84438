package visual

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/trafficlens/trafficlens/internal/model"
)

// Source is the subset of the API client the switcher needs.
type Source interface {
	// Heatmap fetches the traffic heatmap image.
	Heatmap(ctx context.Context) ([]byte, error)

	// Infographic fetches the comprehensive infographic image.
	Infographic(ctx context.Context) ([]byte, error)

	// SpeedDistribution fetches the speed distribution chart image.
	SpeedDistribution(ctx context.Context) ([]byte, error)

	// Statistics fetches the detailed statistics payload.
	Statistics(ctx context.Context) (*model.Statistics, error)
}

// View is the materialized form of an active panel.
// Image panels carry a file path; the stats panel carries the payload.
type View struct {
	// Panel identifies which panel this view belongs to.
	Panel Panel

	// ImagePath is the materialized image file for image panels.
	// Empty for the stats panel.
	ImagePath string

	// Statistics is the payload for the stats panel. Nil for image panels.
	Statistics *model.Statistics
}

// Switcher manages the four mutually exclusive visualization panels.
//
// Design decision: Releasing the previous panel happens before fetching the
// next one, so even a failed switch leaves at most one panel active. The
// dashboard this replaces leaked one object URL per switch; here the
// materialized file is an owned resource with an explicit release.
type Switcher struct {
	// source performs the backend fetches.
	source Source

	// cacheDir is where image panels are materialized.
	cacheDir string

	// logger is used for structured logging.
	logger *slog.Logger

	// mu guards the active view.
	mu     sync.Mutex
	active *View
}

// SwitcherOption configures a Switcher.
type SwitcherOption func(*Switcher)

// WithSwitcherLogger sets a custom logger. Defaults to slog.Default().
func WithSwitcherLogger(logger *slog.Logger) SwitcherOption {
	return func(s *Switcher) {
		s.logger = logger
	}
}

// NewSwitcher creates a Switcher that materializes image panels under
// cacheDir. The directory is created on first use.
func NewSwitcher(source Source, cacheDir string, opts ...SwitcherOption) *Switcher {
	s := &Switcher{
		source:   source,
		cacheDir: cacheDir,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Active returns the currently active panel, or "" when none is shown.
func (s *Switcher) Active() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return ""
	}
	return s.active.Panel
}

// Show fetches the requested panel, makes it the single active one, and
// returns its view. The previously active panel is released first.
func (s *Switcher) Show(ctx context.Context, panel Panel) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()

	view, err := s.fetch(ctx, panel)
	if err != nil {
		return nil, err
	}

	s.active = view
	s.logger.Debug("panel shown", "panel", panel, "imagePath", view.ImagePath)
	return view, nil
}

// Close releases the active panel, if any.
func (s *Switcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
}

// fetch retrieves a panel's content from the backend.
func (s *Switcher) fetch(ctx context.Context, panel Panel) (*View, error) {
	switch panel {
	case PanelStats:
		stats, err := s.source.Statistics(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load statistics panel: %w", err)
		}
		return &View{Panel: panel, Statistics: stats}, nil

	case PanelHeatmap, PanelInfographic, PanelSpeed:
		var (
			data []byte
			err  error
		)
		switch panel {
		case PanelHeatmap:
			data, err = s.source.Heatmap(ctx)
		case PanelInfographic:
			data, err = s.source.Infographic(ctx)
		default:
			data, err = s.source.SpeedDistribution(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s panel: %w", panel, err)
		}

		path, err := s.materialize(panel, data)
		if err != nil {
			return nil, err
		}
		return &View{Panel: panel, ImagePath: path}, nil

	default:
		return nil, fmt.Errorf("unknown panel %q", panel)
	}
}

// materialize writes image bytes to a uniquely named file in the cache dir.
func (s *Switcher) materialize(panel Panel, data []byte) (string, error) {
	if err := os.MkdirAll(s.cacheDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.png", panel, uuid.NewString())
	path := filepath.Join(s.cacheDir, name)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to materialize %s panel: %w", panel, err)
	}

	return path, nil
}

// releaseLocked frees the active view's resources. Callers must hold mu.
func (s *Switcher) releaseLocked() {
	if s.active == nil {
		return
	}

	if s.active.ImagePath != "" {
		if err := os.Remove(s.active.ImagePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove panel image", "path", s.active.ImagePath, "error", err)
		}
	}

	s.active = nil
}
