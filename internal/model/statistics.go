package model

// Statistics holds the aggregated traffic metrics returned by the backend's
// /visualizations/stats endpoint. The values are consumed read-only for
// display; trafficlens never recomputes them.
//
// Field names mirror the backend's JSON keys exactly. Optional breakdowns
// (directions, length and duration aggregates) are omitted by older backend
// versions, so they carry omitempty and renderers must tolerate their absence.
type Statistics struct {
	// TotalVehicles is the number of vehicle tracks detected in the video.
	TotalVehicles int `json:"total_vehicles"`

	// AvgSpeedKmh is the mean vehicle speed in kilometers per hour.
	AvgSpeedKmh float64 `json:"avg_speed_kmh"`

	// CongestionVehicles is the number of vehicles below the congestion
	// speed threshold.
	CongestionVehicles int `json:"congestion_vehicles"`

	// CongestionPercent is CongestionVehicles as a percentage of
	// TotalVehicles, already rounded by the backend.
	CongestionPercent float64 `json:"congestion_percent"`

	// PeakHour is the busiest hour window, formatted "08:00-09:00".
	PeakHour string `json:"peak_hour"`

	// TrafficIntensity is the vehicle throughput in vehicles per hour.
	TrafficIntensity float64 `json:"traffic_intensity"`

	// VehicleTypes is the light/heavy classification breakdown.
	VehicleTypes VehicleTypes `json:"vehicle_types"`

	// ProcessingTime is the backend's analysis wall time in seconds.
	ProcessingTime float64 `json:"processing_time"`

	// Directions is the optional per-direction vehicle count breakdown.
	Directions map[string]int `json:"directions,omitempty"`

	// AvgLengthM is the optional mean vehicle length in meters.
	AvgLengthM float64 `json:"avg_length_m,omitempty"`

	// AvgDurationS is the optional mean track duration in seconds.
	AvgDurationS float64 `json:"avg_duration_s,omitempty"`
}

// VehicleTypes is the vehicle classification breakdown.
type VehicleTypes struct {
	// Light is the number of light vehicles (passenger cars).
	Light int `json:"light"`

	// Heavy is the number of heavy vehicles (trucks, buses).
	Heavy int `json:"heavy"`
}

// Classified returns the number of vehicles with a type assigned.
// This can be lower than TotalVehicles when classification was inconclusive
// for some tracks.
func (s *Statistics) Classified() int {
	return s.VehicleTypes.Light + s.VehicleTypes.Heavy
}

// Empty reports whether the statistics describe an analysis that found
// no vehicles at all. The backend returns a zeroed payload rather than an
// error in that case.
func (s *Statistics) Empty() bool {
	return s.TotalVehicles == 0
}
