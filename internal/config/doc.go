// Package config provides configuration structures and utilities for trafficlens.
// It defines the main options for talking to the analysis backend, polling
// behavior, download destinations, and report generation preferences.
package config
