// Package visual implements the visualization panel switcher.
//
// The backend exposes four result views: the traffic heatmap, the
// comprehensive infographic, the speed distribution chart, and the detailed
// statistics. Panels are fetched on demand, image panels are materialized as
// files in a cache directory, and at most one panel is active at a time.
// Switching releases the previous panel's file so long sessions do not
// accumulate stale images.
package visual
