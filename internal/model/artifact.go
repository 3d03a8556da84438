package model

// Artifact names accepted by ArtifactByName and the download command.
const (
	// ArtifactTracks is the raw track list with per-vehicle points.
	ArtifactTracks = "tracks"

	// ArtifactReport is the plain-text statistics report.
	ArtifactReport = "report"

	// ArtifactBundle is the zip archive of all result files.
	ArtifactBundle = "bundle"
)

// Artifact describes one downloadable result file exposed by the backend.
// Path is relative to the backend base URL; Filename is the name the file
// is saved under locally.
type Artifact struct {
	// Name is the short identifier used on the command line.
	Name string `json:"name"`

	// Path is the backend URL path serving the file.
	Path string `json:"path"`

	// Filename is the local target file name.
	Filename string `json:"filename"`
}

// KnownArtifacts returns the artifacts the backend exposes for a completed
// analysis, in display order.
//
// Design decision: The set is fixed by the backend contract rather than
// discovered at runtime. Hardcoding it keeps the download command usable
// without an extra round trip and gives each artifact a stable local name.
func KnownArtifacts() []Artifact {
	return []Artifact{
		{Name: ArtifactTracks, Path: "/results/tracks.json", Filename: "traffic_tracks.json"},
		{Name: ArtifactReport, Path: "/results/statistics_report.txt", Filename: "statistics_report.txt"},
		{Name: ArtifactBundle, Path: "/download-all", Filename: "traffic_analysis_results.zip"},
	}
}

// ArtifactByName looks up a known artifact by its short name.
// The second return value reports whether the name is known.
func ArtifactByName(name string) (Artifact, bool) {
	for _, a := range KnownArtifacts() {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}
