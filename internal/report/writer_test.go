package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/trafficlens/trafficlens/internal/model"
)

// sampleStatistics returns a statistics payload matching a typical backend
// response.
func sampleStatistics() *model.Statistics {
	return &model.Statistics{
		TotalVehicles:      42,
		AvgSpeedKmh:        35.2,
		CongestionVehicles: 7,
		CongestionPercent:  16.7,
		PeakHour:           "08:00-09:00",
		TrafficIntensity:   126.5,
		VehicleTypes:       model.VehicleTypes{Light: 30, Heavy: 12},
		ProcessingTime:     94.3,
	}
}

// sampleRun returns a completed run with statistics attached.
func sampleRun() *model.Run {
	return &model.Run{
		ID:         "test-run",
		BaseURL:    "http://127.0.0.1:3015",
		StartedAt:  time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC),
		Duration:   95 * time.Second,
		Done:       true,
		Statistics: sampleStatistics(),
	}
}

// TestTextWriterRendersMetricValues verifies the metric values appear in the
// text output exactly as the backend reported them.
func TestTextWriterRendersMetricValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewTextWriter(&buf)

	if _, err := w.WriteStatistics(sampleStatistics()); err != nil {
		t.Fatalf("WriteStatistics: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"42", "35.2", "08:00-09:00", "light: 30", "heavy: 12"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

// TestTextWriterRunReport verifies the run header and status rendering.
func TestTextWriterRunReport(t *testing.T) {
	t.Parallel()

	t.Run("completed run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		if _, err := w.Write(sampleRun()); err != nil {
			t.Fatalf("Write: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "TRAFFIC ANALYSIS REPORT") {
			t.Error("missing report header")
		}
		if !strings.Contains(out, "Status:     Complete") {
			t.Errorf("missing completed status:\n%s", out)
		}
		if !strings.Contains(out, "http://127.0.0.1:3015") {
			t.Error("missing backend URL")
		}
	})

	t.Run("failed run surfaces backend error verbatim", func(t *testing.T) {
		t.Parallel()

		run := sampleRun()
		run.Done = false
		run.Error = "Не удалось обработать видео"
		run.Statistics = nil

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		if _, err := w.Write(run); err != nil {
			t.Fatalf("Write: %v", err)
		}

		if !strings.Contains(buf.String(), "ERROR - Не удалось обработать видео") {
			t.Errorf("backend error not surfaced verbatim:\n%s", buf.String())
		}
	})
}

// TestTextWriterEmptyStatistics verifies the zero-vehicle placeholder.
func TestTextWriterEmptyStatistics(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewTextWriter(&buf)

	if _, err := w.WriteStatistics(&model.Statistics{}); err != nil {
		t.Fatalf("WriteStatistics: %v", err)
	}

	if !strings.Contains(buf.String(), "No vehicles detected") {
		t.Errorf("missing empty placeholder:\n%s", buf.String())
	}
}

// TestTextWriterReportText verifies the backend report is appended verbatim
// and replaced by a placeholder when absent.
func TestTextWriterReportText(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf, WithReportText("ОТЧЕТ ПО АНАЛИЗУ ТРАФИКА\nВсего ТС: 42\n"))

		if _, err := w.WriteStatistics(sampleStatistics()); err != nil {
			t.Fatalf("WriteStatistics: %v", err)
		}

		if !strings.Contains(buf.String(), "ОТЧЕТ ПО АНАЛИЗУ ТРАФИКА") {
			t.Errorf("backend report not appended:\n%s", buf.String())
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		if _, err := w.WriteStatistics(sampleStatistics()); err != nil {
			t.Fatalf("WriteStatistics: %v", err)
		}

		if !strings.Contains(buf.String(), "Text report not available") {
			t.Errorf("missing report placeholder:\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter verifies the Markdown structure: info table, metrics,
// and the vehicle-type pie chart.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(sampleRun()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Traffic Analysis Report",
		"## Statistics",
		"Total vehicles",
		"35.2 km/h",
		"```mermaid",
		"Vehicle Type Distribution",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

// TestMarkdownWriterCongestionAlerts verifies the alert level tracks the
// congestion percentage.
func TestMarkdownWriterCongestionAlerts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		percent float64
		want    string
	}{
		{name: "severe", percent: 62.0, want: "[!CAUTION]"},
		{name: "elevated", percent: 30.0, want: "[!WARNING]"},
		{name: "light", percent: 10.0, want: "[!NOTE]"},
		{name: "free flowing", percent: 0, want: "[!TIP]"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stats := sampleStatistics()
			stats.CongestionPercent = tt.percent

			var buf bytes.Buffer
			w := NewMarkdownWriter(&buf)

			if _, err := w.WriteStatistics(stats); err != nil {
				t.Fatalf("WriteStatistics: %v", err)
			}

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("markdown output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

// TestJSONWriter verifies the JSON output parses back into the same values.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf)

	if _, err := w.WriteStatistics(sampleStatistics()); err != nil {
		t.Fatalf("WriteStatistics: %v", err)
	}

	var got model.Statistics
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.TotalVehicles != 42 {
		t.Errorf("TotalVehicles = %d, want 42", got.TotalVehicles)
	}
	if got.AvgSpeedKmh != 35.2 {
		t.Errorf("AvgSpeedKmh = %v, want 35.2", got.AvgSpeedKmh)
	}
}

// TestMultiWriter verifies fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewTextWriter(&text), NewJSONWriter(&jsonBuf))

	n, err := mw.WriteStatistics(sampleStatistics())
	if err != nil {
		t.Fatalf("WriteStatistics: %v", err)
	}
	if n != text.Len()+jsonBuf.Len() {
		t.Errorf("total = %d, want %d", n, text.Len()+jsonBuf.Len())
	}
	if text.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("one of the writers received no output")
	}
}
