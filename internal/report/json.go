package report

import (
	"encoding/json"
	"io"

	"github.com/trafficlens/trafficlens/internal/model"
)

// JSONWriter outputs reports as indented JSON.
// This format is designed for scripting and tool integration.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full run report as JSON.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	return w.writeJSON(run)
}

// WriteStatistics outputs only the statistics as JSON.
func (w *JSONWriter) WriteStatistics(stats *model.Statistics) (int, error) {
	return w.writeJSON(stats)
}

// writeJSON marshals v with indentation and a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
