package model

import "testing"

// TestKnownArtifacts verifies the fixed artifact set exposed by the backend.
func TestKnownArtifacts(t *testing.T) {
	t.Parallel()

	artifacts := KnownArtifacts()
	if len(artifacts) != 3 {
		t.Fatalf("expected 3 known artifacts, got %d", len(artifacts))
	}

	tests := []struct {
		name         string
		wantPath     string
		wantFilename string
	}{
		{name: ArtifactTracks, wantPath: "/results/tracks.json", wantFilename: "traffic_tracks.json"},
		{name: ArtifactReport, wantPath: "/results/statistics_report.txt", wantFilename: "statistics_report.txt"},
		{name: ArtifactBundle, wantPath: "/download-all", wantFilename: "traffic_analysis_results.zip"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, ok := ArtifactByName(tt.name)
			if !ok {
				t.Fatalf("ArtifactByName(%q) not found", tt.name)
			}
			if a.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", a.Path, tt.wantPath)
			}
			if a.Filename != tt.wantFilename {
				t.Errorf("Filename = %q, want %q", a.Filename, tt.wantFilename)
			}
		})
	}
}

// TestArtifactByNameUnknown verifies lookup failure for unknown names.
func TestArtifactByNameUnknown(t *testing.T) {
	t.Parallel()

	if _, ok := ArtifactByName("heatmap"); ok {
		t.Error("expected lookup to fail for unknown artifact name")
	}
}
