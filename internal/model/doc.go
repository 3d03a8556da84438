// Package model defines the core data structures used throughout trafficlens.
//
// This package contains the following main types:
//   - Status: The analysis job state polled from the backend
//   - Statistics: Aggregated traffic metrics produced by a completed analysis
//   - Artifact: A downloadable result file exposed by the backend
//   - Run: A record of one analysis run kept in the local history
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (client, job, report, history) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
