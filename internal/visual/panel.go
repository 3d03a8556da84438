package visual

import "fmt"

// Panel identifies one of the mutually exclusive visualization panels.
type Panel string

// The four panels the backend exposes.
const (
	// PanelHeatmap is the traffic heatmap rendered by the backend.
	PanelHeatmap Panel = "heatmap"

	// PanelInfographic is the comprehensive infographic image.
	PanelInfographic Panel = "infographic"

	// PanelSpeed is the speed distribution chart image.
	PanelSpeed Panel = "speed"

	// PanelStats is the detailed statistics view.
	PanelStats Panel = "stats"
)

// Panels returns all panels in display order.
func Panels() []Panel {
	return []Panel{PanelHeatmap, PanelInfographic, PanelSpeed, PanelStats}
}

// ParsePanel converts a user-supplied name into a Panel.
func ParsePanel(name string) (Panel, error) {
	for _, p := range Panels() {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown panel %q (known: heatmap, infographic, speed, stats)", name)
}
