package visual

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/trafficlens/trafficlens/internal/model"
)

// fakeSource serves canned panel content for switcher tests.
type fakeSource struct {
	heatmapErr error
	statsErr   error
}

func (f *fakeSource) Heatmap(_ context.Context) ([]byte, error) {
	if f.heatmapErr != nil {
		return nil, f.heatmapErr
	}
	return []byte("heatmap-bytes"), nil
}

func (f *fakeSource) Infographic(_ context.Context) ([]byte, error) {
	return []byte("infographic-bytes"), nil
}

func (f *fakeSource) SpeedDistribution(_ context.Context) ([]byte, error) {
	return []byte("speed-bytes"), nil
}

func (f *fakeSource) Statistics(_ context.Context) (*model.Statistics, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &model.Statistics{TotalVehicles: 42, AvgSpeedKmh: 35.2}, nil
}

// cacheFileCount counts files currently materialized in the cache dir.
func cacheFileCount(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	return len(entries)
}

// TestSwitcherSingleActivePanel verifies that any sequence of panel switches
// leaves at most one panel active and at most one materialized file.
func TestSwitcherSingleActivePanel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewSwitcher(&fakeSource{}, dir)
	defer s.Close()
	ctx := context.Background()

	sequence := []Panel{PanelHeatmap, PanelInfographic, PanelSpeed, PanelHeatmap, PanelStats, PanelSpeed}
	for _, panel := range sequence {
		view, err := s.Show(ctx, panel)
		if err != nil {
			t.Fatalf("Show(%s): %v", panel, err)
		}
		if view.Panel != panel {
			t.Errorf("view.Panel = %s, want %s", view.Panel, panel)
		}
		if got := s.Active(); got != panel {
			t.Errorf("Active() = %s, want %s", got, panel)
		}
		if n := cacheFileCount(t, dir); n > 1 {
			t.Errorf("after Show(%s): %d materialized files, want at most 1", panel, n)
		}
	}
}

// TestSwitcherReleasesPreviousImage verifies that switching removes the
// previous panel's materialized file.
func TestSwitcherReleasesPreviousImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewSwitcher(&fakeSource{}, dir)
	defer s.Close()
	ctx := context.Background()

	first, err := s.Show(ctx, PanelHeatmap)
	if err != nil {
		t.Fatalf("Show(heatmap): %v", err)
	}
	if _, err := os.Stat(first.ImagePath); err != nil {
		t.Fatalf("expected materialized heatmap file: %v", err)
	}

	if _, err := s.Show(ctx, PanelInfographic); err != nil {
		t.Fatalf("Show(infographic): %v", err)
	}

	if _, err := os.Stat(first.ImagePath); !os.IsNotExist(err) {
		t.Errorf("previous panel file still exists after switch: %v", err)
	}
}

// TestSwitcherStatsPanel verifies the stats panel carries the payload and no
// image file.
func TestSwitcherStatsPanel(t *testing.T) {
	t.Parallel()

	s := NewSwitcher(&fakeSource{}, t.TempDir())
	defer s.Close()

	view, err := s.Show(context.Background(), PanelStats)
	if err != nil {
		t.Fatalf("Show(stats): %v", err)
	}
	if view.ImagePath != "" {
		t.Errorf("stats panel has ImagePath %q, want empty", view.ImagePath)
	}
	if view.Statistics == nil || view.Statistics.TotalVehicles != 42 {
		t.Errorf("stats panel payload = %+v, want 42 vehicles", view.Statistics)
	}
}

// TestSwitcherFailedSwitchLeavesNoPanel verifies that a failed fetch leaves
// no active panel and keeps the rest of the switcher usable.
func TestSwitcherFailedSwitchLeavesNoPanel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := &fakeSource{heatmapErr: errors.New("Не удалось создать heatmap")}
	s := NewSwitcher(source, dir)
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Show(ctx, PanelInfographic); err != nil {
		t.Fatalf("Show(infographic): %v", err)
	}

	if _, err := s.Show(ctx, PanelHeatmap); err == nil {
		t.Fatal("expected heatmap fetch failure")
	}

	if got := s.Active(); got != "" {
		t.Errorf("Active() = %s, want none after failed switch", got)
	}
	if n := cacheFileCount(t, dir); n != 0 {
		t.Errorf("%d materialized files after failed switch, want 0", n)
	}

	// Other panels remain usable.
	if _, err := s.Show(ctx, PanelSpeed); err != nil {
		t.Errorf("Show(speed) after failure: %v", err)
	}
}

// TestParsePanel verifies panel name parsing.
func TestParsePanel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    Panel
		wantErr bool
	}{
		{name: "heatmap", want: PanelHeatmap},
		{name: "infographic", want: PanelInfographic},
		{name: "speed", want: PanelSpeed},
		{name: "stats", want: PanelStats},
		{name: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePanel(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParsePanel(%q) expected error", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePanel(%q): %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParsePanel(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}
