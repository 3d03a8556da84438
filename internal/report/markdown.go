package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/trafficlens/trafficlens/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full run report in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)

	if run.Statistics != nil {
		w.writeStatistics(md, run.Statistics)
	} else if run.Error == "" {
		md.PlainText("Statistics not available for this run.")
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteStatistics outputs only the statistics in Markdown format.
func (w *MarkdownWriter) WriteStatistics(stats *model.Statistics) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Traffic Statistics")
	md.PlainText("")
	w.writeStatistics(md, stats)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("Traffic Analysis Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Backend", "`" + run.BaseURL + "`"},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", run.Duration.Round(time.Second).String()},
			{"Status", w.getStatusText(run)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on run state.
func (w *MarkdownWriter) getStatusText(run *model.Run) string {
	if run.Error != "" {
		return "❌ Error - " + run.Error
	}
	if !run.Done {
		return "⚠️ Interrupted (no terminal status)"
	}
	return "✅ Complete"
}

// writeStatistics writes the metrics section with a table and charts.
func (w *MarkdownWriter) writeStatistics(md *markdown.Markdown, stats *model.Statistics) {
	md.H2("Statistics")
	md.PlainText("")

	if stats.Empty() {
		md.Note("No vehicles detected in the analyzed video.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total vehicles", strconv.Itoa(stats.TotalVehicles)},
			{"Average speed", formatFloat(stats.AvgSpeedKmh) + " km/h"},
			{"Congestion", strconv.Itoa(stats.CongestionVehicles) + " vehicles (" + formatFloat(stats.CongestionPercent) + "%)"},
			{"Peak hour", stats.PeakHour},
			{"Intensity", formatFloat(stats.TrafficIntensity) + " vehicles/hour"},
			{"Processing time", formatFloat(stats.ProcessingTime) + " s"},
		},
	})
	md.PlainText("")

	if stats.Classified() > 0 {
		w.writeVehicleTypesChart(md, stats)
	}

	w.writeCongestionAlert(md, stats)
	w.writeDirections(md, stats)
}

// writeVehicleTypesChart writes a mermaid pie chart for the classification
// breakdown.
func (w *MarkdownWriter) writeVehicleTypesChart(md *markdown.Markdown, stats *model.Statistics) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Vehicle Type Distribution"),
		piechart.WithShowData(true),
	)

	if stats.VehicleTypes.Light > 0 {
		chart.LabelAndIntValue("Light", uint64(stats.VehicleTypes.Light))
	}
	if stats.VehicleTypes.Heavy > 0 {
		chart.LabelAndIntValue("Heavy", uint64(stats.VehicleTypes.Heavy))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeCongestionAlert writes an alert matched to the congestion level.
func (w *MarkdownWriter) writeCongestionAlert(md *markdown.Markdown, stats *model.Statistics) {
	switch {
	case stats.CongestionPercent >= 50:
		md.Cautionf(
			"Severe congestion: %.1f%% of vehicles below the congestion speed threshold.",
			stats.CongestionPercent,
		)
	case stats.CongestionPercent >= 25:
		md.Warningf(
			"Elevated congestion: %.1f%% of vehicles below the congestion speed threshold.",
			stats.CongestionPercent,
		)
	case stats.CongestionPercent > 0:
		md.Notef(
			"Light congestion: %.1f%% of vehicles below the congestion speed threshold.",
			stats.CongestionPercent,
		)
	default:
		md.Tip("Free-flowing traffic, no congestion detected.")
	}
	md.PlainText("")
}

// writeDirections writes the optional per-direction breakdown.
func (w *MarkdownWriter) writeDirections(md *markdown.Markdown, stats *model.Statistics) {
	if len(stats.Directions) == 0 {
		return
	}

	md.H2("Directions")
	md.PlainText("")

	rows := make([][]string, 0, len(stats.Directions))
	for _, direction := range sortedKeys(stats.Directions) {
		rows = append(rows, []string{direction, strconv.Itoa(stats.Directions[direction])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Direction", "Vehicles"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [trafficlens](https://github.com/trafficlens/trafficlens)*")
}

// formatFloat renders a metric value with one decimal place, the same
// precision the backend uses in its own report.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
