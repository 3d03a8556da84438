// Package log provides structured logging helpers for trafficlens.
//
// The backend authenticates clients with a session cookie, and per-server
// configuration may carry auth headers. This package wraps slog handlers so
// those values are masked before any record reaches the underlying handler.
package log
