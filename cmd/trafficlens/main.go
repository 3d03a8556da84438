// Package main provides the entry point for the trafficlens CLI.
//
// trafficlens is a client for the traffic-video analysis backend.
// It starts analysis jobs, polls them to completion, renders the resulting
// statistics, and downloads result artifacts.
//
// Usage:
//
//	trafficlens analyze
//	trafficlens show stats
//	trafficlens download --all
//
// See --help for all available options.
package main

// main is the entry point for trafficlens.
func main() {
	Execute()
}
