package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newVisualsBackend starts a backend serving the visualization endpoints.
func newVisualsBackend(t *testing.T) *httptest.Server {
	t.Helper()

	imageBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/visualizations/stats", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"total_vehicles": 42,
				"avg_speed_kmh":  35.2,
				"peak_hour":      "08:00-09:00",
				"vehicle_types":  map[string]int{"light": 30, "heavy": 12},
			},
		})
	})
	mux.HandleFunc("/visualizations/heatmap", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"image":   "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageBytes),
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// TestShowCommandStats renders the statistics panel as text.
func TestShowCommandStats(t *testing.T) {
	server := newVisualsBackend(t)

	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"show", "stats", "--server", server.URL})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"42", "35.2", "08:00-09:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

// TestShowCommandHeatmap saves the heatmap image to the output path.
func TestShowCommandHeatmap(t *testing.T) {
	server := newVisualsBackend(t)
	output := filepath.Join(t.TempDir(), "heatmap.png")

	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{
		"show", "heatmap",
		"--server", server.URL,
		"--output", output,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("image not saved: %v", err)
	}
	if len(data) == 0 || data[1] != 'P' {
		t.Errorf("saved image content = %v", data)
	}
}

// TestShowCommandUnknownPanel rejects panel names the backend does not have.
func TestShowCommandUnknownPanel(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetArgs([]string{"show", "sparkline"})

	if err := root.Execute(); err == nil {
		t.Error("expected error for unknown panel")
	}
}
