package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/trafficlens/trafficlens/internal/model"
)

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// reportText is the backend's plain-text report, appended verbatim
	// when present.
	reportText string

	// showEmpty controls whether optional sections without data are shown.
	showEmpty bool

	// printer formats numbers with locale-aware separators.
	printer *message.Printer
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithReportText attaches the backend's plain-text report so it is
// appended after the statistics section.
func WithReportText(text string) TextWriterOption {
	return func(w *TextWriter) {
		w.reportText = text
	}
}

// WithShowEmpty configures the writer to show optional sections even when
// the backend omitted their data.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full run report in human-readable format.
func (w *TextWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)

	if run.Statistics != nil {
		w.writeStatistics(&sb, run.Statistics)
	} else if run.Error == "" {
		sb.WriteString("  Statistics not available for this run\n\n")
	}

	w.writeReportText(&sb)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteStatistics outputs only the statistics in human-readable format.
func (w *TextWriter) WriteStatistics(stats *model.Statistics) (int, error) {
	var sb strings.Builder

	w.writeStatistics(&sb, stats)
	w.writeReportText(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *TextWriter) writeHeader(sb *strings.Builder, run *model.Run) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      TRAFFIC ANALYSIS REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Backend:    %s\n", run.BaseURL))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", run.Duration.Round(time.Second)))

	switch {
	case run.Error != "":
		sb.WriteString(fmt.Sprintf("Status:     ERROR - %s\n", run.Error))
	case run.Done:
		sb.WriteString("Status:     Complete\n")
	default:
		sb.WriteString("Status:     INTERRUPTED (no terminal status)\n")
	}

	sb.WriteString("\n")
}

// writeStatistics writes the aggregated traffic metrics section.
func (w *TextWriter) writeStatistics(sb *strings.Builder, stats *model.Statistics) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("STATISTICS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if stats.Empty() {
		sb.WriteString("  No vehicles detected in the analyzed video\n\n")
		return
	}

	sb.WriteString(w.printer.Sprintf("  Total vehicles:    %d\n", stats.TotalVehicles))
	sb.WriteString(w.printer.Sprintf("  Average speed:     %.1f km/h\n", stats.AvgSpeedKmh))
	sb.WriteString(w.printer.Sprintf("  Congestion:        %d vehicles (%.1f%%)\n",
		stats.CongestionVehicles, stats.CongestionPercent))
	sb.WriteString(fmt.Sprintf("  Peak hour:         %s\n", stats.PeakHour))
	sb.WriteString(w.printer.Sprintf("  Intensity:         %.1f vehicles/hour\n", stats.TrafficIntensity))
	sb.WriteString(w.printer.Sprintf("  Processing time:   %.1f s\n", stats.ProcessingTime))
	sb.WriteString("\n")

	w.writeVehicleTypes(sb, stats)
	w.writeDirections(sb, stats)
	w.writeTrackAggregates(sb, stats)
}

// writeVehicleTypes writes the light/heavy classification breakdown.
func (w *TextWriter) writeVehicleTypes(sb *strings.Builder, stats *model.Statistics) {
	if stats.Classified() == 0 && !w.showEmpty {
		return
	}

	sb.WriteString("  Vehicle types:\n")
	sb.WriteString(w.printer.Sprintf("    [+] light: %d\n", stats.VehicleTypes.Light))
	sb.WriteString(w.printer.Sprintf("    [+] heavy: %d\n", stats.VehicleTypes.Heavy))
	sb.WriteString("\n")
}

// writeDirections writes the optional per-direction counts.
func (w *TextWriter) writeDirections(sb *strings.Builder, stats *model.Statistics) {
	if len(stats.Directions) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString("  Directions:\n")
	if len(stats.Directions) == 0 {
		sb.WriteString("    No direction data\n")
	} else {
		for _, direction := range sortedKeys(stats.Directions) {
			sb.WriteString(w.printer.Sprintf("    [+] %s: %d\n", direction, stats.Directions[direction]))
		}
	}
	sb.WriteString("\n")
}

// writeTrackAggregates writes the optional length and duration aggregates.
func (w *TextWriter) writeTrackAggregates(sb *strings.Builder, stats *model.Statistics) {
	if stats.AvgLengthM == 0 && stats.AvgDurationS == 0 && !w.showEmpty {
		return
	}

	if stats.AvgLengthM > 0 || w.showEmpty {
		sb.WriteString(w.printer.Sprintf("  Average length:    %.1f m\n", stats.AvgLengthM))
	}
	if stats.AvgDurationS > 0 || w.showEmpty {
		sb.WriteString(w.printer.Sprintf("  Average duration:  %.1f s\n", stats.AvgDurationS))
	}
	sb.WriteString("\n")
}

// writeReportText appends the backend's plain-text report, or a placeholder
// when it was not fetched.
func (w *TextWriter) writeReportText(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("BACKEND REPORT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if strings.TrimSpace(w.reportText) == "" {
		sb.WriteString("  Text report not available\n")
	} else {
		sb.WriteString(w.reportText)
		if !strings.HasSuffix(w.reportText, "\n") {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

// sortedKeys returns map keys in stable alphabetical order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by trafficlens\n")
	sb.WriteString("https://github.com/trafficlens/trafficlens\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
